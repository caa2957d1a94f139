// Package store 定义审计日志存储的核心接口。
//
// 审计日志以 (auditable.Type, auditable.ID) 为维度组织，只追加、
// 多次读取。Append 与 ID 分配对同一审计对象的并发追加是原子的，
// 由具体实现保证（内存实现用互斥锁，SQL 实现用事务 + 自增主键）。
package store

import (
	"context"
	"time"

	"auditrail/audit"
)

// Order 条目排序方向（按 ID）
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// LoadOptions 条目查询选项
//
// 所有条件可自由组合；零值字段表示不过滤。查询是全函数：
// 条件不命中任何条目时返回空切片而非错误。
type LoadOptions struct {
	Order         Order          // 默认升序
	Actions       []audit.Action // 按动作过滤
	CreatedBefore time.Time      // created_at <= 该时间（含）
	MinID         int64          // id >= MinID（0 表示无下界）
	MaxID         int64          // id <= MaxID（0 表示无上界）
	Limit         int            // 0 表示不限制
}

// IAuditStore 审计日志存储接口
type IAuditStore interface {
	// Append 追加一条审计条目
	//
	// 分配 ID 与 CreatedAt 并持久化，返回持久化后的条目。
	// 结构合法的条目不会被拒绝；要么完整持久化，要么返回错误，
	// 绝不部分写入。传入的条目不被修改。
	Append(ctx context.Context, entry *audit.Entry) (*audit.Entry, error)

	// Load 按选项加载一个审计对象的条目
	//
	// 返回按 ID 排序（方向见 opts.Order）的条目切片。
	// opts 为 nil 时等价于加载完整升序历史。
	Load(ctx context.Context, auditable audit.Ref, opts *LoadOptions) ([]audit.Entry, error)
}

// AncestorsOf 返回与 entry 同一审计对象、ID 不大于 entry.ID 的
// 全部条目（升序）。重建历史状态时使用。
func AncestorsOf(ctx context.Context, s IAuditStore, entry *audit.Entry) ([]audit.Entry, error) {
	return s.Load(ctx, entry.Auditable, &LoadOptions{Order: OrderAsc, MaxID: entry.ID})
}

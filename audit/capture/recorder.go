// Package capture 实现变更捕获：在审计条目追加前，从执行作用域
// 补全操作者、父实体、请求ID与远端地址。
//
// 补全各字段互相独立且永不失败：环境值缺失只会让对应字段留空，
// 绝不会因此阻断触发变更的业务操作。存储追加失败则原样向上
// 传播（fail-closed：追加失败的变更不得视为已审计）。
package capture

import (
	"context"

	"github.com/google/uuid"

	"auditrail/audit"
	"auditrail/audit/scope"
	"auditrail/audit/store"
	"auditrail/logging"
)

// Option 捕获时的可选字段
type Option func(*audit.Entry)

// WithComment 附加说明文本
func WithComment(comment string) Option {
	return func(e *audit.Entry) { e.Comment = comment }
}

// WithAssociated 关联次要实体
func WithAssociated(ref audit.Ref) Option {
	return func(e *audit.Entry) { e.Associated = &ref }
}

// WithActor 显式指定操作者（跳过环境解析）
func WithActor(actor audit.Actor) Option {
	return func(e *audit.Entry) { e.Actor = actor }
}

// WithRequestID 显式指定请求ID（跳过环境解析与生成）
func WithRequestID(id string) Option {
	return func(e *audit.Entry) { e.RequestID = id }
}

// Recorder 变更捕获器，审计日志的唯一写入口
type Recorder struct {
	store  store.IAuditStore
	logger logging.Logger
}

// NewRecorder 创建变更捕获器
func NewRecorder(s store.IAuditStore) *Recorder {
	return &Recorder{
		store:  s,
		logger: logging.GetLogger().WithFields(logging.String("component", "audit.recorder")),
	}
}

// SetLogger 替换日志器（默认使用全局Logger）
func (r *Recorder) SetLogger(logger logging.Logger) { r.logger = logger }

// Capture 构造并追加一条审计条目。
//
// changes 由集成层计算：create 为属性新值，update/destroy 为
// [旧值, 新值] 二元组（见 audit.Pair）。补全顺序：
//  1. 操作者：RunAs 覆盖 > 环境供给函数 > 留空
//  2. 父实体：环境值 > 留空
//  3. 请求ID：环境值 > 随机生成（保证条目总是可关联）
//  4. 远端地址：仅取环境值，绝不合成
func (r *Recorder) Capture(ctx context.Context, action audit.Action, auditable audit.Ref, changes audit.Changes, opts ...Option) (*audit.Entry, error) {
	entry := &audit.Entry{
		Auditable: auditable,
		Action:    action,
		Changes:   changes,
	}
	for _, opt := range opts {
		opt(entry)
	}

	r.enrich(ctx, entry)

	stored, err := r.store.Append(ctx, entry)
	if err != nil {
		// 不重试不包装，审计失败必须让触发方看到
		return nil, err
	}

	r.logger.Debug(ctx, "audit entry captured",
		logging.String("auditable", stored.Auditable.String()),
		logging.String("action", string(stored.Action)),
		logging.Int64("entry_id", stored.ID),
		logging.String("request_id", stored.RequestID))
	return stored, nil
}

func (r *Recorder) enrich(ctx context.Context, entry *audit.Entry) {
	sc := scope.FromContext(ctx)

	if entry.Actor.IsZero() && sc != nil {
		if actor := sc.CurrentActor(); actor != nil {
			entry.Actor = *actor
		}
	}

	if entry.Parent == nil && sc != nil {
		entry.Parent = sc.Parent()
	}

	if entry.RequestID == "" && sc != nil {
		entry.RequestID = sc.RequestID()
	}
	if entry.RequestID == "" {
		entry.RequestID = uuid.NewString()
	}

	if entry.RemoteAddress == "" && sc != nil {
		entry.RemoteAddress = sc.RemoteAddress()
	}
}

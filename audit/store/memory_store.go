package store

import (
	"context"
	"sync"
	"time"

	"auditrail/audit"
	"auditrail/idgen/snowflake"
)

// MemoryAuditStore 内存实现，用于测试、示例与小规模嵌入场景
//
// 条目按 auditable.Type:auditable.ID 维度组织。ID 在追加锁内由
// 雪花生成器分配，因此 ID 顺序即追加顺序；同一审计对象的并发
// 追加被互斥锁串行化。
type MemoryAuditStore struct {
	mu      sync.RWMutex
	entries map[string][]audit.Entry // auditableType:auditableID -> ordered entries
	gen     *snowflake.Generator
}

func NewMemoryAuditStore() *MemoryAuditStore {
	gen, _ := snowflake.NewGenerator(snowflake.DefaultWorkerID)
	return &MemoryAuditStore{
		entries: make(map[string][]audit.Entry),
		gen:     gen,
	}
}

func (m *MemoryAuditStore) Append(ctx context.Context, entry *audit.Entry) (*audit.Entry, error) {
	if err := entry.Validate(); err != nil {
		return nil, audit.NewInvalidEntryError(err.Error(), err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := entry.Clone()
	stored.ID = m.gen.Generate()
	stored.CreatedAt = time.Now()

	key := stored.Auditable.String()
	m.entries[key] = append(m.entries[key], *stored)
	return stored, nil
}

func (m *MemoryAuditStore) Load(ctx context.Context, auditable audit.Ref, opts *LoadOptions) ([]audit.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := m.entries[auditable.String()]
	if len(entries) == 0 {
		return []audit.Entry{}, nil
	}
	return FilterWithOptions(entries, opts), nil
}

// Count 返回某审计对象的条目总数（辅助方法）
func (m *MemoryAuditStore) Count(auditable audit.Ref) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries[auditable.String()])
}

// 确认实现接口
var _ IAuditStore = (*MemoryAuditStore)(nil)

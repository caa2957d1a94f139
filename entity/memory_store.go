package entity

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"auditrail/idgen/snowflake"
)

// MemoryEntityStore 内存实体存储，用于测试与示例。
//
// 按类型名注册可写属性白名单（可选），实体以 Record 形式保存。
type MemoryEntityStore struct {
	mu       sync.RWMutex
	records  map[string]*Record  // typeName:id -> record
	declared map[string][]string // typeName -> attribute whitelist
}

func NewMemoryEntityStore() *MemoryEntityStore {
	return &MemoryEntityStore{
		records:  make(map[string]*Record),
		declared: make(map[string][]string),
	}
}

// DefineType 为类型注册可写属性白名单；未注册的类型不限制属性
func (m *MemoryEntityStore) DefineType(typeName string, attrNames ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.declared[typeName] = attrNames
}

func (m *MemoryEntityStore) Lookup(ctx context.Context, typeName, id string) (IEntity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[entityKey(typeName, id)]
	if !ok {
		return nil, nil
	}
	return rec, nil
}

func (m *MemoryEntityStore) NewInstance(typeName string) (IEntity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return NewRecord(typeName, "", m.declared[typeName]...), nil
}

func (m *MemoryEntityStore) Create(ctx context.Context, typeName string, attributes map[string]any) (IEntity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := NewRecord(typeName, "", m.declared[typeName]...)
	for k, v := range attributes {
		// 白名单外的属性静默跳过
		rec.SetAttribute(k, v)
	}

	id := strconv.FormatInt(snowflake.Generate(), 10)
	if raw, ok := attributes["id"]; ok {
		id = fmt.Sprint(raw)
	}
	rec.SetID(id)

	m.records[entityKey(typeName, id)] = rec
	return rec, nil
}

func (m *MemoryEntityStore) Save(ctx context.Context, e IEntity) error {
	rec, ok := e.(*Record)
	if !ok {
		return fmt.Errorf("unsupported entity type: %T, expected *entity.Record", e)
	}
	if rec.EntityID() == "" {
		return fmt.Errorf("cannot save entity without id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[entityKey(rec.EntityType(), rec.EntityID())] = rec
	return nil
}

func (m *MemoryEntityStore) Delete(ctx context.Context, e IEntity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := entityKey(e.EntityType(), e.EntityID())
	if _, ok := m.records[key]; !ok {
		return fmt.Errorf("entity %s not found", key)
	}
	delete(m.records, key)
	return nil
}

func entityKey(typeName, id string) string {
	return fmt.Sprintf("%s:%s", typeName, id)
}

// 确认实现接口
var _ IEntityStore = (*MemoryEntityStore)(nil)

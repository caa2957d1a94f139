package revision

import (
	"context"
	"time"

	"auditrail/audit"
	"auditrail/audit/store"
	"auditrail/entity"
)

// ReconstructAttributes 按升序合并各条目的新值视图，得到该历史
// 前缀末尾时刻的属性快照。纯函数，幂等。
func ReconstructAttributes(entries []audit.Entry) map[string]any {
	attrs := make(map[string]any)
	for _, e := range entries {
		for k, v := range e.Changes.NewValues() {
			attrs[k] = v
		}
	}
	return attrs
}

// AssignAttributes 把属性快照逐个写入实体。
// 实体没有对应可写属性时静默跳过：历史条目可能记录了当前实体
// 定义中已不存在的属性（模式漂移），重建不因此失败。
func AssignAttributes(instance entity.IEntity, attrs map[string]any) {
	for k, v := range attrs {
		_ = instance.SetAttribute(k, v)
	}
}

// Reconstructor 历史状态重建器
type Reconstructor struct {
	store    store.IAuditStore
	entities entity.IEntityStore
}

// NewReconstructor 创建历史状态重建器
func NewReconstructor(s store.IAuditStore, entities entity.IEntityStore) *Reconstructor {
	return &Reconstructor{store: s, entities: entities}
}

// RevisionAt 重建实体在 entry 时刻（含）的状态。
//
// 活动实体存在时在其之上赋值（被冻结时先克隆，绝不修改原实例）；
// 实体已删除时在一个未持久化的空白实例上赋值。返回的实体从未
// 被自动持久化，调用方自行决定是否保存。
func (r *Reconstructor) RevisionAt(ctx context.Context, entry *audit.Entry) (entity.IEntity, error) {
	ancestors, err := store.AncestorsOf(ctx, r.store, entry)
	if err != nil {
		return nil, err
	}
	attrs := ReconstructAttributes(ancestors)

	instance, err := r.entities.Lookup(ctx, entry.Auditable.Type, entry.Auditable.ID)
	if err != nil {
		return nil, err
	}
	if instance == nil {
		instance, err = r.entities.NewInstance(entry.Auditable.Type)
		if err != nil {
			return nil, err
		}
	} else if freezable, ok := instance.(entity.IFreezable); ok && freezable.IsFrozen() {
		instance = freezable.Clone()
	}

	AssignAttributes(instance, attrs)
	return instance, nil
}

// RevisionAtVersion 重建实体在指定版本（1 基）的状态。
// 版本未解析时返回 (nil, nil)。
func (r *Reconstructor) RevisionAtVersion(ctx context.Context, auditable audit.Ref, version int) (entity.IEntity, error) {
	resolved, err := ResolveVersion(ctx, r.store, auditable, version)
	if err != nil || resolved == nil {
		return nil, err
	}
	return r.RevisionAt(ctx, resolved)
}

// RevisionAtTime 重建实体在指定时刻（含）最后一条条目对应的状态。
// 该时刻之前没有任何条目时返回 (nil, nil)。
func (r *Reconstructor) RevisionAtTime(ctx context.Context, auditable audit.Ref, at time.Time) (entity.IEntity, error) {
	entries, err := r.store.Load(ctx, auditable, &store.LoadOptions{
		Order:         store.OrderDesc,
		CreatedBefore: at,
		Limit:         1,
	})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return r.RevisionAt(ctx, &entries[0])
}

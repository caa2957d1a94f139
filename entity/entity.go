// Package entity 定义审计引擎对实体层的最小依赖边界。
//
// 审计引擎按 (类型名, ID) 多态地查找/创建/保存/删除实体，
// 不关心实体的具体定义；集成层实现这些接口并负责真正的持久化。
package entity

import "context"

// IEntity 可被审计引擎读写的实体
type IEntity interface {
	// EntityType 实体类型名（与审计条目的 auditable.Type 对应）
	EntityType() string

	// EntityID 实体标识符（空串表示尚未持久化）
	EntityID() string

	// Attributes 当前属性快照（副本，修改不影响实体）
	Attributes() map[string]any

	// SetAttribute 设置属性。实体没有对应可写属性时返回 false，
	// 调用方据此静默跳过（容忍历史记录与当前实体定义间的模式漂移）
	SetAttribute(name string, value any) bool
}

// IFreezable 可冻结实体（可选扩展）
//
// 历史重建遇到被冻结的实体时在脱离副本上赋值，不修改原实例。
type IFreezable interface {
	IsFrozen() bool
	Clone() IEntity
}

// IEntityStore 实体层的通用 CRUD 能力
type IEntityStore interface {
	// Lookup 按类型名与 ID 查找活动实体；不存在时返回 (nil, nil)
	Lookup(ctx context.Context, typeName, id string) (IEntity, error)

	// NewInstance 构造一个未持久化的空白实体
	NewInstance(typeName string) (IEntity, error)

	// Create 以给定属性创建并持久化一个新实体
	Create(ctx context.Context, typeName string, attributes map[string]any) (IEntity, error)

	// Save 持久化实体的当前状态
	Save(ctx context.Context, e IEntity) error

	// Delete 永久删除实体
	Delete(ctx context.Context, e IEntity) error
}

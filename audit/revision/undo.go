package revision

import (
	"context"
	"fmt"

	"auditrail/audit"
	"auditrail/entity"
)

// Undoer 单条目撤销引擎
//
// 撤销只依据条目自身记录的变更，不读取其他条目；失败时实体层
// 保持原状（查找/持久化错误原样向上传播）。
type Undoer struct {
	entities entity.IEntityStore
}

// NewUndoer 创建撤销引擎
func NewUndoer(entities entity.IEntityStore) *Undoer {
	return &Undoer{entities: entities}
}

// Undo 撤销一条审计条目对实体层的影响。
//
//   - create：删除对应的活动实体；实体不存在时返回 EntityNotFoundError
//   - destroy：以旧值属性集重新创建实体
//   - update：把每个变更属性写回二元组中的旧值并保存
func (u *Undoer) Undo(ctx context.Context, entry *audit.Entry) (entity.IEntity, error) {
	switch entry.Action {
	case audit.ActionCreate:
		instance, err := u.entities.Lookup(ctx, entry.Auditable.Type, entry.Auditable.ID)
		if err != nil {
			return nil, err
		}
		if instance == nil {
			return nil, audit.NewEntityNotFoundError(entry.Auditable.Type, entry.Auditable.ID)
		}
		if err := u.entities.Delete(ctx, instance); err != nil {
			return nil, err
		}
		return instance, nil

	case audit.ActionDestroy:
		return u.entities.Create(ctx, entry.Auditable.Type, entry.Changes.OldValues())

	case audit.ActionUpdate:
		instance, err := u.entities.Lookup(ctx, entry.Auditable.Type, entry.Auditable.ID)
		if err != nil {
			return nil, err
		}
		if instance == nil {
			return nil, audit.NewEntityNotFoundError(entry.Auditable.Type, entry.Auditable.ID)
		}
		AssignAttributes(instance, entry.Changes.OldValues())
		if err := u.entities.Save(ctx, instance); err != nil {
			return nil, err
		}
		return instance, nil

	default:
		return nil, fmt.Errorf("无法撤销未知动作 %q", entry.Action)
	}
}

package sql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"auditrail/audit"
	log "auditrail/logging"
)

// createdAtLayout created_at 列的存储格式。
// 固定宽度的小数位保证字典序与时间序一致，created_at 上的
// 比较条件可以直接下推为字符串比较。
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

func (s *SQLAuditStore) Append(ctx context.Context, entry *audit.Entry) (*audit.Entry, error) {
	if err := entry.Validate(); err != nil {
		return nil, audit.NewInvalidEntryError(err.Error(), err)
	}

	changesJSON, err := json.Marshal(entry.Changes)
	if err != nil {
		return nil, audit.NewStoreFailedError("serialize changes failed", err)
	}

	stored := entry.Clone()
	stored.CreatedAt = time.Now().UTC()

	// 事务内插入：ID 分配与持久化原子，要么整条写入要么失败
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, audit.NewStoreFailedError("begin transaction failed", err)
	}
	defer tx.Rollback()

	insertSQL := fmt.Sprintf(`INSERT INTO %s
		(auditable_type, auditable_id, associated_type, associated_id,
		 actor_type, actor_id, username, parent_type, parent_id,
		 action, audited_changes, comment, remote_address, request_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.tableName)

	var (
		associatedType, associatedID any
		actorType, actorID, username any
		parentType, parentID         any
		comment, remoteAddress       any
	)
	if stored.Associated != nil {
		associatedType, associatedID = stored.Associated.Type, stored.Associated.ID
	}
	if stored.Actor.Ref != nil {
		actorType, actorID = stored.Actor.Ref.Type, stored.Actor.Ref.ID
	} else if stored.Actor.Name != "" {
		username = stored.Actor.Name
	}
	if stored.Parent != nil {
		parentType, parentID = stored.Parent.Type, stored.Parent.ID
	}
	if stored.Comment != "" {
		comment = stored.Comment
	}
	if stored.RemoteAddress != "" {
		remoteAddress = stored.RemoteAddress
	}

	res, err := tx.Exec(ctx, insertSQL,
		stored.Auditable.Type, stored.Auditable.ID,
		associatedType, associatedID,
		actorType, actorID, username,
		parentType, parentID,
		string(stored.Action), string(changesJSON),
		comment, remoteAddress,
		stored.RequestID, stored.CreatedAt.Format(createdAtLayout),
	)
	if err != nil {
		return nil, audit.NewStoreFailedError("insert audit entry failed", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, audit.NewStoreFailedError("read inserted id failed", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, audit.NewStoreFailedError("commit transaction failed", err)
	}

	stored.ID = id
	log.GetLogger().Debug(ctx, "audit entry appended",
		log.String("auditable", stored.Auditable.String()),
		log.Int64("entry_id", stored.ID),
		log.String("action", string(stored.Action)))
	return stored, nil
}

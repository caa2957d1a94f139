package sql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"auditrail/audit"
	"auditrail/audit/store"
)

func (s *SQLAuditStore) Load(ctx context.Context, auditable audit.Ref, opts *store.LoadOptions) ([]audit.Entry, error) {
	if opts == nil {
		opts = &store.LoadOptions{}
	}

	var (
		conds = []string{"auditable_type = ?", "auditable_id = ?"}
		args  = []any{auditable.Type, auditable.ID}
	)
	if opts.MinID > 0 {
		conds = append(conds, "id >= ?")
		args = append(args, opts.MinID)
	}
	if opts.MaxID > 0 {
		conds = append(conds, "id <= ?")
		args = append(args, opts.MaxID)
	}
	if !opts.CreatedBefore.IsZero() {
		conds = append(conds, "created_at <= ?")
		args = append(args, opts.CreatedBefore.UTC().Format(createdAtLayout))
	}
	if len(opts.Actions) > 0 {
		placeholders := make([]string, len(opts.Actions))
		for i, a := range opts.Actions {
			placeholders[i] = "?"
			args = append(args, string(a))
		}
		conds = append(conds, fmt.Sprintf("action IN (%s)", strings.Join(placeholders, ",")))
	}

	direction := "ASC"
	if opts.Order == store.OrderDesc {
		direction = "DESC"
	}

	query := fmt.Sprintf(
		`SELECT id, auditable_type, auditable_id, associated_type, associated_id,
		        actor_type, actor_id, username, parent_type, parent_id,
		        action, audited_changes, comment, remote_address, request_id, created_at
		 FROM %s WHERE %s ORDER BY id %s`,
		s.tableName, strings.Join(conds, " AND "), direction)
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, audit.NewStoreFailedError("query audit entries failed", err)
	}
	defer rows.Close()

	entries := make([]audit.Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, audit.NewStoreFailedError("scan audit entry failed", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, audit.NewStoreFailedError("iterate audit entries failed", err)
	}
	return entries, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*audit.Entry, error) {
	var (
		entry          audit.Entry
		associatedType sql.NullString
		associatedID   sql.NullString
		actorType      sql.NullString
		actorID        sql.NullString
		username       sql.NullString
		parentType     sql.NullString
		parentID       sql.NullString
		action         string
		changesJSON    string
		comment        sql.NullString
		remoteAddress  sql.NullString
		createdAt      string
	)

	if err := row.Scan(
		&entry.ID, &entry.Auditable.Type, &entry.Auditable.ID,
		&associatedType, &associatedID,
		&actorType, &actorID, &username,
		&parentType, &parentID,
		&action, &changesJSON, &comment, &remoteAddress,
		&entry.RequestID, &createdAt,
	); err != nil {
		return nil, err
	}

	entry.Action = audit.Action(action)
	if associatedType.Valid {
		entry.Associated = &audit.Ref{Type: associatedType.String, ID: associatedID.String}
	}
	if actorType.Valid {
		entry.Actor.Ref = &audit.Ref{Type: actorType.String, ID: actorID.String}
	} else if username.Valid {
		entry.Actor.Name = username.String
	}
	if parentType.Valid {
		entry.Parent = &audit.Ref{Type: parentType.String, ID: parentID.String}
	}
	entry.Comment = comment.String
	entry.RemoteAddress = remoteAddress.String

	if changesJSON != "" {
		if err := json.Unmarshal([]byte(changesJSON), &entry.Changes); err != nil {
			return nil, err
		}
	}

	ts, err := time.Parse(createdAtLayout, createdAt)
	if err != nil {
		return nil, err
	}
	entry.CreatedAt = ts
	return &entry, nil
}

// 确认实现接口
var _ store.IAuditStore = (*SQLAuditStore)(nil)

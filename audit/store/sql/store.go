// Package sql 提供基于通用 SQL 接口的审计日志存储。
//
// ID 由自增主键在事务内分配，保证同一审计对象并发追加时
// ID 顺序即提交顺序。changes 列以 JSON 序列化。
package sql

import (
	"context"
	"fmt"
	"strings"

	"auditrail/storage/database"
)

// SQLAuditStore 基于 database.IDatabase 的审计日志存储
type SQLAuditStore struct {
	db        database.IDatabase
	tableName string
}

func NewSQLAuditStore(db database.IDatabase, tableName string) *SQLAuditStore {
	if tableName == "" {
		tableName = "audits"
	}
	return &SQLAuditStore{db: db, tableName: tableName}
}

func (s *SQLAuditStore) Init(ctx context.Context) error { return s.db.Ping(ctx) }
func (s *SQLAuditStore) GetDB() database.IDatabase      { return s.db }
func (s *SQLAuditStore) GetTableName() string           { return s.tableName }

// Schema 返回建表 DDL（sqlite 方言，用于测试与示例环境；
// 生产环境的模式迁移属于集成层职责）
func (s *SQLAuditStore) Schema() string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    auditable_type  TEXT NOT NULL,
    auditable_id    TEXT NOT NULL,
    associated_type TEXT,
    associated_id   TEXT,
    actor_type      TEXT,
    actor_id        TEXT,
    username        TEXT,
    parent_type     TEXT,
    parent_id       TEXT,
    action          TEXT NOT NULL,
    audited_changes TEXT NOT NULL,
    comment         TEXT,
    remote_address  TEXT,
    request_id      TEXT NOT NULL,
    created_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_%[1]s_auditable  ON %[1]s (auditable_type, auditable_id);
CREATE INDEX IF NOT EXISTS idx_%[1]s_associated ON %[1]s (associated_type, associated_id);
CREATE INDEX IF NOT EXISTS idx_%[1]s_actor      ON %[1]s (actor_type, actor_id);
CREATE INDEX IF NOT EXISTS idx_%[1]s_request    ON %[1]s (request_id);
CREATE INDEX IF NOT EXISTS idx_%[1]s_created_at ON %[1]s (created_at);
`, s.tableName)
}

// EnsureSchema 创建审计表与索引（幂等）
//
// 逐条执行 DDL，兼容不支持多语句 Exec 的驱动。
func (s *SQLAuditStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(s.Schema(), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

package publish

import (
	"context"

	"auditrail/audit"
	"auditrail/audit/store"
	"auditrail/logging"
)

// Store 带发布旁路的审计存储装饰器。
//
// 先追加到内层存储，成功后再发布；发布失败只记日志，追加结果
// 不受影响。读路径直接透传。
type Store struct {
	inner     store.IAuditStore
	publisher IPublisher
	logger    logging.Logger
}

// NewStore 创建带发布旁路的存储装饰器
func NewStore(inner store.IAuditStore, publisher IPublisher) *Store {
	return &Store{
		inner:     inner,
		publisher: publisher,
		logger:    logging.GetLogger().WithFields(logging.String("component", "audit.publish")),
	}
}

// SetLogger 替换日志器
func (s *Store) SetLogger(logger logging.Logger) { s.logger = logger }

func (s *Store) Append(ctx context.Context, entry *audit.Entry) (*audit.Entry, error) {
	stored, err := s.inner.Append(ctx, entry)
	if err != nil {
		return nil, err
	}
	if pubErr := s.publisher.Publish(ctx, stored); pubErr != nil {
		s.logger.Warn(ctx, "audit entry publish failed",
			logging.String("auditable", stored.Auditable.String()),
			logging.Int64("entry_id", stored.ID),
			logging.Error(pubErr))
	}
	return stored, nil
}

func (s *Store) Load(ctx context.Context, auditable audit.Ref, opts *store.LoadOptions) ([]audit.Entry, error) {
	return s.inner.Load(ctx, auditable, opts)
}

// Close 关闭发布器（内层存储的生命周期由调用方管理）
func (s *Store) Close() error { return s.publisher.Close() }

var _ store.IAuditStore = (*Store)(nil)

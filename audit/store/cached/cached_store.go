// Package cached 提供带读缓存的审计日志存储装饰器。
//
// 审计日志读多写少：同一审计对象的完整升序历史被缓存，
// 过滤/排序/截断在内存中完成；追加时失效对应缓存项。
package cached

import (
	"context"
	"time"

	"auditrail/audit"
	"auditrail/audit/store"
	"auditrail/cache"
)

// Config 缓存配置
type Config struct {
	TTL           time.Duration // 缓存过期时间（默认: 5分钟）
	MaxAuditables int           // 最大缓存审计对象数（默认: 1000）
}

// DefaultConfig 默认缓存配置
func DefaultConfig() *Config {
	return &Config{
		TTL:           5 * time.Minute,
		MaxAuditables: 1000,
	}
}

// CachedAuditStore 带缓存的审计日志存储装饰器
type CachedAuditStore struct {
	store store.IAuditStore
	cache *cache.Cache[string, []audit.Entry]
}

// NewCachedAuditStore 创建带缓存的审计日志存储
func NewCachedAuditStore(inner store.IAuditStore, config *Config) *CachedAuditStore {
	if config == nil {
		config = DefaultConfig()
	}
	return &CachedAuditStore{
		store: inner,
		cache: cache.New[string, []audit.Entry](cache.Config{
			Name:    "audit_history",
			MaxSize: config.MaxAuditables,
			TTL:     config.TTL,
		}),
	}
}

// Append 追加条目并失效缓存
func (s *CachedAuditStore) Append(ctx context.Context, entry *audit.Entry) (*audit.Entry, error) {
	stored, err := s.store.Append(ctx, entry)
	if err != nil {
		return nil, err
	}
	s.cache.Delete(stored.Auditable.String())
	return stored, nil
}

// Load 加载条目（完整历史优先从缓存读取，选项在内存中应用）
func (s *CachedAuditStore) Load(ctx context.Context, auditable audit.Ref, opts *store.LoadOptions) ([]audit.Entry, error) {
	history, err := s.fullHistory(ctx, auditable)
	if err != nil {
		return nil, err
	}
	return store.FilterWithOptions(history, opts), nil
}

// Stats 返回缓存统计
func (s *CachedAuditStore) Stats() cache.Stats { return s.cache.GetStats() }

// Invalidate 手动失效某审计对象的缓存
func (s *CachedAuditStore) Invalidate(auditable audit.Ref) {
	s.cache.Delete(auditable.String())
}

func (s *CachedAuditStore) fullHistory(ctx context.Context, auditable audit.Ref) ([]audit.Entry, error) {
	key := auditable.String()
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	entries, err := s.store.Load(ctx, auditable, &store.LoadOptions{Order: store.OrderAsc})
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		s.cache.Set(key, entries)
	}
	return entries, nil
}

// 确认实现接口
var _ store.IAuditStore = (*CachedAuditStore)(nil)

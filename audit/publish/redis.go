package publish

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	"auditrail/audit"
)

// redisClient 只声明用到的 go-redis 命令子集，便于测试替身
type redisClient interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	Close() error
}

// RedisConfig Redis Streams 发布器配置
type RedisConfig struct {
	// Client 已有连接；为空时按 Addr 等参数自建
	Client redis.UniversalClient

	Addr     string
	Username string
	Password string
	DB       int

	// StreamPrefix 流名前缀，完整流名为 前缀 + 审计对象类型名
	StreamPrefix string

	// MaxLen 每个流的近似长度上限，0 表示不修剪
	MaxLen int64
}

// RedisPublisher 把审计条目 XADD 到按类型划分的 Redis Stream
type RedisPublisher struct {
	cfg       RedisConfig
	client    redisClient
	ownClient bool
}

// NewRedisPublisher 创建 Redis Streams 发布器
func NewRedisPublisher(cfg RedisConfig) (*RedisPublisher, error) {
	if cfg.StreamPrefix == "" {
		cfg.StreamPrefix = "audits:"
	}

	var cl redisClient
	var own bool
	if cfg.Client != nil {
		cl = cfg.Client
	} else if cfg.Addr != "" {
		cl = redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		own = true
	}
	if cl == nil {
		return nil, errors.New("redis client not configured")
	}

	return &RedisPublisher{cfg: cfg, client: cl, ownClient: own}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, entry *audit.Entry) error {
	changes, err := json.Marshal(entry.Changes)
	if err != nil {
		return err
	}
	values := map[string]interface{}{
		"id":             strconv.FormatInt(entry.ID, 10),
		"auditable_type": entry.Auditable.Type,
		"auditable_id":   entry.Auditable.ID,
		"action":         string(entry.Action),
		"actor":          entry.Actor.String(),
		"request_id":     entry.RequestID,
		"changes":        string(changes),
		"created_at":     strconv.FormatInt(entry.CreatedAt.UnixNano(), 10),
	}
	args := &redis.XAddArgs{
		Stream: p.cfg.StreamPrefix + entry.Auditable.Type,
		Values: values,
	}
	if p.cfg.MaxLen > 0 {
		args.MaxLen = p.cfg.MaxLen
		args.Approx = true
	}
	return p.client.XAdd(ctx, args).Err()
}

func (p *RedisPublisher) Close() error {
	if p.ownClient {
		return p.client.Close()
	}
	return nil
}

var _ IPublisher = (*RedisPublisher)(nil)

package publish

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/nats-io/nats.go"

	"auditrail/audit"
)

// NATSConfig NATS JetStream 发布器配置
type NATSConfig struct {
	// Conn 已有连接；为空时按 URL 自建
	Conn *nats.Conn
	URL  string

	// Stream 流名，默认 AUDITS
	Stream string

	// SubjectPrefix 主题前缀，完整主题为 前缀 + 审计对象类型名
	SubjectPrefix string

	// Replicas 流副本数，0 表示默认
	Replicas int
}

// NATSPublisher 把审计条目发布到 JetStream，主题按类型划分
type NATSPublisher struct {
	cfg      NATSConfig
	conn     *nats.Conn
	js       nats.JetStreamContext
	ownsConn bool
}

// NewNATSPublisher 创建 JetStream 发布器并确保流存在
func NewNATSPublisher(cfg NATSConfig) (*NATSPublisher, error) {
	if cfg.Stream == "" {
		cfg.Stream = "AUDITS"
	}
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = "audits."
	}

	p := &NATSPublisher{cfg: cfg}
	if cfg.Conn != nil {
		p.conn = cfg.Conn
	} else {
		if cfg.URL == "" {
			cfg.URL = nats.DefaultURL
		}
		conn, err := nats.Connect(cfg.URL)
		if err != nil {
			return nil, err
		}
		p.conn = conn
		p.ownsConn = true
	}

	js, err := p.conn.JetStream()
	if err != nil {
		p.closeConn()
		return nil, err
	}
	p.js = js

	if err := p.ensureStream(); err != nil {
		p.closeConn()
		return nil, err
	}
	return p, nil
}

func (p *NATSPublisher) ensureStream() error {
	_, err := p.js.StreamInfo(p.cfg.Stream)
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) && !strings.Contains(err.Error(), "stream not found") {
		return err
	}
	sc := &nats.StreamConfig{
		Name:      p.cfg.Stream,
		Subjects:  []string{p.cfg.SubjectPrefix + ">"},
		Retention: nats.LimitsPolicy,
	}
	if p.cfg.Replicas > 0 {
		sc.Replicas = p.cfg.Replicas
	}
	_, err = p.js.AddStream(sc)
	return err
}

func (p *NATSPublisher) Publish(ctx context.Context, entry *audit.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	subject := p.cfg.SubjectPrefix + entry.Auditable.Type
	_, err = p.js.Publish(subject, data, nats.Context(ctx))
	return err
}

func (p *NATSPublisher) Close() error {
	p.closeConn()
	return nil
}

func (p *NATSPublisher) closeConn() {
	if p.ownsConn && p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
}

var _ IPublisher = (*NATSPublisher)(nil)

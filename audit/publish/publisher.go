// Package publish 把追加成功的审计条目扇出到外部通道（投影、
// 告警、跨服务订阅）。
//
// 扇出是尽力而为的旁路：审计日志本身始终是事实来源，发布失败
// 只记日志，绝不使追加失败。需要可靠投递的场景应直接读日志。
package publish

import (
	"context"
	"errors"
	"sync"

	"auditrail/audit"
)

// IPublisher 审计条目发布接口
type IPublisher interface {
	// Publish 发布一条已持久化的条目
	Publish(ctx context.Context, entry *audit.Entry) error

	// Close 释放发布器持有的资源
	Close() error
}

// ChannelPublisher 进程内发布器，条目送入 Go channel。
// 用于测试与进程内投影；channel 满时丢弃并返回错误。
type ChannelPublisher struct {
	mu     sync.Mutex
	ch     chan *audit.Entry
	closed bool
}

// NewChannelPublisher 创建进程内发布器，buffer 为通道容量
func NewChannelPublisher(buffer int) *ChannelPublisher {
	return &ChannelPublisher{ch: make(chan *audit.Entry, buffer)}
}

// Entries 订阅端读取的通道
func (p *ChannelPublisher) Entries() <-chan *audit.Entry { return p.ch }

func (p *ChannelPublisher) Publish(ctx context.Context, entry *audit.Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errors.New("channel publisher closed")
	}
	select {
	case p.ch <- entry.Clone():
		return nil
	default:
		return errors.New("channel publisher buffer full")
	}
}

func (p *ChannelPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.ch)
	}
	return nil
}

var _ IPublisher = (*ChannelPublisher)(nil)

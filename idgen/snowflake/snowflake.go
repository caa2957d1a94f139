// Package snowflake 提供单调递增的64位ID生成器（雪花算法）
//
// 审计日志用它为内存存储分配条目ID：同一生成器生成的ID严格按
// 分配顺序递增，与时间戳精度无关。
package snowflake

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// 起始时间戳 (2023-01-01 00:00:00 UTC)
	epoch int64 = 1672531200000

	// 各部分位数
	workerIDBits = 10
	sequenceBits = 12

	// 最大值
	maxWorkerID = -1 ^ (-1 << workerIDBits) // 1023
	maxSequence = -1 ^ (-1 << sequenceBits) // 4095

	// 位移
	workerIDShift      = sequenceBits
	timestampLeftShift = sequenceBits + workerIDBits

	// 默认配置
	DefaultWorkerID int64 = 1
)

// Generator 雪花ID生成器
type Generator struct {
	mux           sync.Mutex
	workerID      int64
	sequence      int64
	lastTimestamp int64
}

// NewGenerator 创建ID生成器
func NewGenerator(workerID int64) (*Generator, error) {
	if workerID < 0 || workerID > maxWorkerID {
		return nil, errors.New("worker ID out of range")
	}
	return &Generator{
		workerID:      workerID,
		sequence:      0,
		lastTimestamp: -1,
	}, nil
}

// NextID 生成下一个ID。
//
// 时钟回拨（NTP 校时、虚拟机暂停）不产生错误也不重复ID：
// 沿用上一次的时间戳，由序列号继续保证严格递增，直到墙钟追上。
// 审计条目的顺序依据ID分配顺序，这里绝不允许ID归零或回退。
func (g *Generator) NextID() (int64, error) {
	g.mux.Lock()
	defer g.mux.Unlock()

	now := time.Now().UnixNano() / 1e6

	// 时钟回拨：借用上次时间戳，靠序列号保持单调
	if now < g.lastTimestamp {
		now = g.lastTimestamp
	}

	if now == g.lastTimestamp {
		g.sequence = (g.sequence + 1) & maxSequence
		if g.sequence == 0 {
			// 序列号用完，等待时钟走到下一毫秒
			for now <= g.lastTimestamp {
				now = time.Now().UnixNano() / 1e6
			}
		}
	} else {
		g.sequence = 0
	}

	g.lastTimestamp = now

	id := ((now - epoch) << timestampLeftShift) |
		(g.workerID << workerIDShift) |
		g.sequence

	return id, nil
}

// Generate NextID 的便捷形式
func (g *Generator) Generate() int64 {
	id, _ := g.NextID()
	return id
}

// 全局默认生成器（通过原子指针保证并发安全）
var defaultGenerator atomic.Pointer[Generator]

func init() {
	gen, _ := NewGenerator(DefaultWorkerID)
	defaultGenerator.Store(gen)
}

// NextID 使用默认生成器生成ID
func NextID() (int64, error) {
	gen := defaultGenerator.Load()
	if gen == nil {
		return 0, errors.New("default generator is not initialized")
	}
	return gen.NextID()
}

// Generate 使用默认生成器生成ID
func Generate() int64 {
	gen := defaultGenerator.Load()
	if gen == nil {
		return 0
	}
	return gen.Generate()
}

// SetDefaultGenerator 设置默认生成器
func SetDefaultGenerator(workerID int64) error {
	gen, err := NewGenerator(workerID)
	if err != nil {
		return err
	}
	defaultGenerator.Store(gen)
	return nil
}

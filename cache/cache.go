// Package cache 提供统一的缓存抽象层
//
// 设计原则：
// 1. 简洁 - 只包含必需的功能
// 2. 类型安全 - 使用泛型提供编译时类型检查
// 3. 容量管理 - 防止 OOM，自动 LRU 驱逐
// 4. 并发安全 - 使用 RWMutex 保护
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Config 缓存配置
type Config struct {
	Name    string        // 缓存名称（用于统计与日志）
	MaxSize int           // 最大条目数（默认: 1000）
	TTL     time.Duration // 过期时间，0 表示永不过期
}

// Cache 通用泛型缓存
//
// 核心特性：
// - LRU 驱逐：超过容量时自动删除最久未使用的条目
// - TTL 过期：基于写入时间的过期策略
// - 并发安全：RWMutex 保护
// - 统计：Hits/Misses/Evictions
type Cache[K comparable, V any] struct {
	config Config

	items   map[K]*list.Element
	lruList *list.List // 最近使用的在前

	mu    sync.RWMutex
	stats Stats
}

type cacheEntry[K comparable, V any] struct {
	key       K
	value     V
	storedAt  time.Time
}

// Stats 缓存统计信息
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
}

// New 创建缓存
func New[K comparable, V any](config Config) *Cache[K, V] {
	if config.MaxSize <= 0 {
		config.MaxSize = 1000
	}
	return &Cache[K, V]{
		config:  config,
		items:   make(map[K]*list.Element),
		lruList: list.New(),
	}
}

// Get 获取缓存值
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return zero, false
	}

	entry := elem.Value.(*cacheEntry[K, V])
	if c.expired(entry) {
		c.removeElement(elem)
		c.stats.Misses++
		return zero, false
	}

	c.lruList.MoveToFront(elem)
	c.stats.Hits++
	return entry.value, true
}

// Set 写入缓存值，必要时驱逐最久未使用的条目
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*cacheEntry[K, V])
		entry.value = value
		entry.storedAt = time.Now()
		c.lruList.MoveToFront(elem)
		return
	}

	entry := &cacheEntry[K, V]{key: key, value: value, storedAt: time.Now()}
	c.items[key] = c.lruList.PushFront(entry)

	for len(c.items) > c.config.MaxSize {
		oldest := c.lruList.Back()
		if oldest == nil {
			break
		}
		c.removeElement(oldest)
		c.stats.Evictions++
	}
}

// Delete 删除缓存值
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
}

// Clear 清空全部条目（统计保留）
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]*list.Element)
	c.lruList.Init()
}

// Len 当前条目数
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// GetStats 返回统计快照
func (c *Cache[K, V]) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	stats := c.stats
	stats.Size = len(c.items)
	return stats
}

// Name 返回缓存名称
func (c *Cache[K, V]) Name() string { return c.config.Name }

func (c *Cache[K, V]) expired(entry *cacheEntry[K, V]) bool {
	return c.config.TTL > 0 && time.Since(entry.storedAt) > c.config.TTL
}

// removeElement 调用方必须持有写锁
func (c *Cache[K, V]) removeElement(elem *list.Element) {
	entry := elem.Value.(*cacheEntry[K, V])
	delete(c.items, entry.key)
	c.lruList.Remove(elem)
}

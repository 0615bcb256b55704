// Package rulecache 提供规则库的进程内缓存
//
// 规则由外部维护、变更频率低，每次生成运行按营业所加载一次。
// 缓存带 TTL，过期后下次读取触发重新加载；规则管理接口写入后
// 主动失效。
package rulecache

import (
	"context"
	"sync"
	"time"

	"github.com/paiche/paiche/internal/metrics"
	"github.com/paiche/paiche/pkg/logger"
	"github.com/paiche/paiche/pkg/model"
)

// Loader 缓存未命中时的规则加载函数
type Loader interface {
	ListActive(ctx context.Context, location string) ([]*model.Rule, error)
}

// Cache 按营业所分片的规则缓存
type Cache struct {
	loader Loader
	ttl    time.Duration

	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	rules    []*model.Rule
	loadedAt time.Time
}

// New 创建规则缓存
func New(loader Loader, ttl time.Duration) *Cache {
	return &Cache{
		loader:  loader,
		ttl:     ttl,
		entries: make(map[string]*entry),
	}
}

// Get 获取营业所的启用规则
// 命中且未过期直接返回缓存副本；否则从加载器重新加载。
// 加载失败且存在过期缓存时降级返回过期数据
func (c *Cache) Get(ctx context.Context, location string) ([]*model.Rule, error) {
	c.mu.RLock()
	e := c.entries[location]
	c.mu.RUnlock()

	if e != nil && time.Since(e.loadedAt) < c.ttl {
		metrics.RecordRuleCache(true)
		return e.rules, nil
	}
	metrics.RecordRuleCache(false)

	rules, err := c.loader.ListActive(ctx, location)
	if err != nil {
		if e != nil {
			logger.Warn().
				Err(err).
				Str("location", location).
				Msg("规则重新加载失败，降级使用过期缓存")
			return e.rules, nil
		}
		return nil, err
	}

	c.mu.Lock()
	c.entries[location] = &entry{rules: rules, loadedAt: time.Now()}
	c.mu.Unlock()

	return rules, nil
}

// Invalidate 失效指定营业所的缓存
func (c *Cache) Invalidate(location string) {
	c.mu.Lock()
	delete(c.entries, location)
	c.mu.Unlock()
}

// InvalidateAll 失效全部缓存（规则库写入后调用）
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.mu.Unlock()
}

// Package cache 提供按 key 读写、带过期时间的缓存抽象。
//
// 失效策略：条目只在读取时判断是否过期（memory 实现另有 Sweep 可定期清理），
// 数据变更方通过 Delete 主动失效。memory 实现仅在单进程内有效，多实例部署时
// 不同实例间不会互相失效，需要一致性时改用 redis 实现。
package cache

import (
	"context"
	"time"
)

type Cache interface {
	// Get 命中时将值解码到 dest 并返回 true
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Loader 未命中时加载数据
type Loader func(ctx context.Context) (interface{}, error)

// GetOrLoad 读穿缓存：未命中或缓存出错时调用 loader，并尽量回填
func GetOrLoad(ctx context.Context, c Cache, key string, ttl time.Duration, dest interface{}, loader Loader) error {
	if c != nil {
		if hit, err := c.Get(ctx, key, dest); err == nil && hit {
			return nil
		}
	}

	value, err := loader(ctx)
	if err != nil {
		return err
	}

	if c != nil {
		_ = c.Set(ctx, key, value, ttl)
	}
	return assign(value, dest)
}

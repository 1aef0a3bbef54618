package filter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/moodbite/core"
)

// DefaultBlacklistTTL 是黑名单本地缓存时间。过滤按菜品逐个调用，缓存避免每道菜都访问一次存储。
const DefaultBlacklistTTL = 5 * time.Second

// StoreAdapter 将 core.Store 适配为 BlacklistStore。
// 黑名单以 JSON 字符串数组存放在单个 key 下，例如 ["12","37"]。
type StoreAdapter struct {
	store core.Store

	// TTL <= 0 时不缓存。
	TTL time.Duration

	mu    sync.Mutex
	cache map[string]cachedList
}

type cachedList struct {
	ids []string
	at  time.Time
}

// NewStoreAdapter 创建适配器，缓存时间为 DefaultBlacklistTTL。
func NewStoreAdapter(s core.Store) *StoreAdapter {
	return &StoreAdapter{store: s, TTL: DefaultBlacklistTTL}
}

// GetBlacklist 读取黑名单；key 不存在视为空黑名单。
func (a *StoreAdapter) GetBlacklist(ctx context.Context, key string) ([]string, error) {
	if ids, ok := a.cached(key); ok {
		return ids, nil
	}

	data, err := a.store.Get(ctx, key)
	var ids []string
	switch {
	case core.IsStoreNotFound(err):
	case err != nil:
		return nil, fmt.Errorf("get blacklist %s: %w", key, err)
	default:
		if err := json.Unmarshal(data, &ids); err != nil {
			return nil, fmt.Errorf("decode blacklist %s: %w", key, err)
		}
	}

	if a.TTL > 0 {
		a.mu.Lock()
		if a.cache == nil {
			a.cache = make(map[string]cachedList)
		}
		a.cache[key] = cachedList{ids: ids, at: time.Now()}
		a.mu.Unlock()
	}
	return ids, nil
}

func (a *StoreAdapter) cached(key string) ([]string, bool) {
	if a.TTL <= 0 {
		return nil, false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.cache[key]
	if !ok || time.Since(c.at) > a.TTL {
		return nil, false
	}
	return c.ids, true
}

// PutBlacklist 写入黑名单并使本地缓存失效。
func (a *StoreAdapter) PutBlacklist(ctx context.Context, key string, ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if err := a.store.Set(ctx, key, data); err != nil {
		return err
	}
	a.mu.Lock()
	delete(a.cache, key)
	a.mu.Unlock()
	return nil
}

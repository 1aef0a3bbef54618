package filter

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/rushteam/moodbite/core"
)

// 布隆过滤器默认参数。
const (
	DefaultBloomCapacity = 100000
	DefaultBloomFPRate   = 0.001
)

// BloomFilter 用布隆过滤器排除大批量菜品（例如下架或召回的菜品清单）。
// 过滤器序列化后存放在 Store 的单个 key 下，由运营侧写入，请求链路只读。
//
// 误判会多排除少量菜品，不会漏排除。
type BloomFilter struct {
	Store core.Store
	Key   string

	mu     sync.RWMutex
	loaded *bloom.BloomFilter
	absent bool
}

// NewBloomFilter 创建布隆排除过滤器。
func NewBloomFilter(s core.Store, key string) *BloomFilter {
	return &BloomFilter{Store: s, Key: key}
}

func (f *BloomFilter) Name() string {
	return "filter.bloom"
}

func (f *BloomFilter) ShouldFilter(
	ctx context.Context,
	_ *core.UserContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	bf, err := f.load(ctx)
	if err != nil || bf == nil {
		return false, err
	}
	return bf.TestString(item.Food.ID.String()), nil
}

// Reset 丢弃本地缓存，下次请求重新从 Store 读取。
func (f *BloomFilter) Reset() {
	f.mu.Lock()
	f.loaded, f.absent = nil, false
	f.mu.Unlock()
}

// load 首次调用时从 Store 读取并缓存；key 不存在视为空集合。
func (f *BloomFilter) load(ctx context.Context) (*bloom.BloomFilter, error) {
	f.mu.RLock()
	bf, absent := f.loaded, f.absent
	f.mu.RUnlock()
	if bf != nil || absent {
		return bf, nil
	}

	data, err := f.Store.Get(ctx, f.Key)
	if core.IsStoreNotFound(err) {
		f.mu.Lock()
		f.absent = true
		f.mu.Unlock()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get bloom filter %s: %w", f.Key, err)
	}

	bf = &bloom.BloomFilter{}
	if _, err := bf.ReadFrom(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("decode bloom filter %s: %w", f.Key, err)
	}

	f.mu.Lock()
	f.loaded = bf
	f.mu.Unlock()
	return bf, nil
}

// BuildBloom 用菜品 ID 构建布隆过滤器。capacity 不足 len(ids) 时按 len(ids) 估算。
func BuildBloom(ids []string, capacity uint, fpRate float64) *bloom.BloomFilter {
	if capacity < uint(len(ids)) {
		capacity = uint(len(ids))
	}
	if capacity == 0 {
		capacity = DefaultBloomCapacity
	}
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = DefaultBloomFPRate
	}
	bf := bloom.NewWithEstimates(capacity, fpRate)
	for _, id := range ids {
		bf.AddString(id)
	}
	return bf
}

// SaveBloom 序列化布隆过滤器并写入 Store。
func SaveBloom(ctx context.Context, s core.Store, key string, bf *bloom.BloomFilter, ttl ...int) error {
	var buf bytes.Buffer
	if _, err := bf.WriteTo(&buf); err != nil {
		return fmt.Errorf("encode bloom filter: %w", err)
	}
	return s.Set(ctx, key, buf.Bytes(), ttl...)
}

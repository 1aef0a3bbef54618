package store

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/rushteam/moodbite/core"
)

// BreakerConfig 控制 BreakerStore 的熔断行为。
type BreakerConfig struct {
	// FailureThreshold 是连续失败多少次后熔断，0 表示 5。
	FailureThreshold uint32
	// Timeout 是熔断后多久进入半开状态试探，0 表示 30s。
	Timeout time.Duration
	Logger  zerolog.Logger
}

// BreakerStore 给远端存储加熔断：后端连续失败后直接返回 UNAVAILABLE，
// 不再让每道菜的过滤都等待超时。key 不存在不算失败。
type BreakerStore struct {
	inner core.KeyValueStore
	cb    *gobreaker.CircuitBreaker[any]
}

// NewBreakerStore 包装 inner。
//
//nolint:gocritic // BreakerConfig 含 zerolog.Logger，按值传递
func NewBreakerStore(inner core.KeyValueStore, cfg BreakerConfig) *BreakerStore {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	logger := cfg.Logger
	return &BreakerStore{
		inner: inner,
		cb: gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
			Name:        inner.Name(),
			MaxRequests: 1,
			Timeout:     timeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= threshold
			},
			IsSuccessful: func(err error) bool {
				return err == nil || core.IsStoreNotFound(err) || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn().Str("store", name).Str("from", from.String()).Str("to", to.String()).
					Msg("store circuit breaker state changed")
			},
		}),
	}
}

// State 返回熔断器状态：closed、open 或 half-open。
func (b *BreakerStore) State() string { return b.cb.State().String() }

func (b *BreakerStore) Name() string { return b.inner.Name() }

func (b *BreakerStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := b.do(func() (any, error) { return b.inner.Get(ctx, key) })
	data, _ := v.([]byte)
	return data, err
}

func (b *BreakerStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	_, err := b.do(func() (any, error) { return nil, b.inner.Set(ctx, key, value, ttl...) })
	return err
}

func (b *BreakerStore) Delete(ctx context.Context, key string) error {
	_, err := b.do(func() (any, error) { return nil, b.inner.Delete(ctx, key) })
	return err
}

func (b *BreakerStore) BatchGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	v, err := b.do(func() (any, error) { return b.inner.BatchGet(ctx, keys) })
	m, _ := v.(map[string][]byte)
	return m, err
}

func (b *BreakerStore) HSet(ctx context.Context, key, field string, value []byte) error {
	_, err := b.do(func() (any, error) { return nil, b.inner.HSet(ctx, key, field, value) })
	return err
}

// HSetMany 在 inner 支持批量写入时使用批量写入，否则逐个 HSet。
func (b *BreakerStore) HSetMany(ctx context.Context, key string, fields map[string][]byte) error {
	_, err := b.do(func() (any, error) {
		if bw, ok := b.inner.(interface {
			HSetMany(context.Context, string, map[string][]byte) error
		}); ok {
			return nil, bw.HSetMany(ctx, key, fields)
		}
		for f, v := range fields {
			if err := b.inner.HSet(ctx, key, f, v); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

func (b *BreakerStore) HGetAll(ctx context.Context, key string) (map[string][]byte, error) {
	v, err := b.do(func() (any, error) { return b.inner.HGetAll(ctx, key) })
	m, _ := v.(map[string][]byte)
	return m, err
}

func (b *BreakerStore) Close() error { return b.inner.Close() }

func (b *BreakerStore) do(fn func() (any, error)) (any, error) {
	v, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeUnavailable,
			"store "+b.inner.Name()+": "+err.Error())
	}
	return v, err
}

var _ core.KeyValueStore = (*BreakerStore)(nil)

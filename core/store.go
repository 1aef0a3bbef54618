package core

import (
	"context"
	"errors"
)

// Store 是推荐链路用到的最小 key-value 存储接口，由 store 包实现（内存 / Redis）。
// 目录、黑名单、布隆排除集都以字节串存放在单个 key 下。
type Store interface {
	Name() string

	// Get 读取 key；不存在时返回 ErrStoreNotFound。
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入 key，ttl 为可选的过期秒数。
	Set(ctx context.Context, key string, value []byte, ttl ...int) error

	Delete(ctx context.Context, key string) error

	// BatchGet 结果中只包含存在的 key。
	BatchGet(ctx context.Context, keys []string) (map[string][]byte, error)

	Close() error
}

// KeyValueStore 在 Store 上增加 Hash 操作：目录按 "菜品 ID -> JSON" 逐条存放，便于单条更新。
type KeyValueStore interface {
	Store

	HSet(ctx context.Context, key, field string, value []byte) error

	// HGetAll 在 key 不存在时返回空 map。
	HGetAll(ctx context.Context, key string) (map[string][]byte, error)
}

// ErrStoreNotFound 表示 key 不存在。
var ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")

// IsStoreNotFound 判断错误链上是否有存储模块的 NOT_FOUND。
func IsStoreNotFound(err error) bool {
	return errors.Is(err, &DomainError{Module: ModuleStore, Code: ErrorCodeNotFound})
}

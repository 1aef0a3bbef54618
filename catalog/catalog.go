// Package catalog 负责把菜品目录加载为 []core.FoodItem。
//
// 目录是外部数据：JSON 数组，每个元素形如
//
//	{"id": 1, "name": "Mac and Cheese", "cuisine": "American",
//	 "moods": ["sad"], "cravings": ["comfort"], "taste_profile": ["savory"],
//	 "dietary_info": {"vegetarian": true}, "calories": 540}
//
// 缺失的数组字段按空处理，缺失的 dietary_info 按全 false 处理。
package catalog

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-json"

	"github.com/rushteam/moodbite/core"
)

// Loader 加载整份目录。
type Loader interface {
	Load(ctx context.Context) ([]core.FoodItem, error)
}

// ErrNotArray 表示目录数据不是 JSON 数组，这是唯一视为硬失败的数据格式问题。
var ErrNotArray = core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "catalog: payload is not a JSON array")

// Decode 解析 JSON 数组形式的目录。
func Decode(data []byte) ([]core.FoodItem, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotArray
	}
	var items []core.FoodItem
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if items == nil {
		items = []core.FoodItem{}
	}
	return items, nil
}

// Encode 把目录编码为 JSON 数组。
func Encode(items []core.FoodItem) ([]byte, error) {
	if items == nil {
		items = []core.FoodItem{}
	}
	return json.Marshal(items)
}

// FileLoader 从本地 JSON 文件加载目录。
type FileLoader struct {
	Path string
}

func (l *FileLoader) Load(_ context.Context) ([]core.FoodItem, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", l.Path, err)
	}
	items, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", l.Path, err)
	}
	return items, nil
}

// StoreLoader 从 core.Store 的单个 key 加载目录（整份 JSON 数组）。
type StoreLoader struct {
	Store core.Store
	Key   string
}

func (l *StoreLoader) Load(ctx context.Context) ([]core.FoodItem, error) {
	data, err := l.Store.Get(ctx, l.Key)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s from %s: %w", l.Key, l.Store.Name(), err)
	}
	return Decode(data)
}

// Save 把目录整体写入 store 的 key。
func Save(ctx context.Context, s core.Store, key string, items []core.FoodItem) error {
	data, err := Encode(items)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return s.Set(ctx, key, data)
}

// HashLoader 从 Hash 加载目录：field 为菜品 ID，value 为单个菜品的 JSON。
// Hash 无序，结果按 ID 排序，保证同一份数据总是得到相同顺序。
type HashLoader struct {
	Store core.KeyValueStore
	Key   string
}

func (l *HashLoader) Load(ctx context.Context) ([]core.FoodItem, error) {
	fields, err := l.Store.HGetAll(ctx, l.Key)
	if err != nil {
		return nil, fmt.Errorf("load catalog hash %s: %w", l.Key, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("catalog hash %s: %w", l.Key, core.ErrStoreNotFound)
	}
	items := make([]core.FoodItem, 0, len(fields))
	for id, data := range fields {
		var item core.FoodItem
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, fmt.Errorf("decode catalog item %s: %w", id, err)
		}
		if item.ID == "" {
			item.ID = core.ItemID(id)
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return lessID(items[i].ID, items[j].ID) })
	return items, nil
}

// SaveHash 逐条写入 Hash。Store 支持批量写入时一次提交。
func SaveHash(ctx context.Context, s core.KeyValueStore, key string, items []core.FoodItem) error {
	fields := make(map[string][]byte, len(items))
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("encode catalog item %s: %w", item.ID, err)
		}
		fields[item.ID.String()] = data
	}
	if bw, ok := s.(batchHashWriter); ok {
		if err := bw.HSetMany(ctx, key, fields); err != nil {
			return fmt.Errorf("save catalog hash %s: %w", key, err)
		}
		return nil
	}
	for id, data := range fields {
		if err := s.HSet(ctx, key, id, data); err != nil {
			return fmt.Errorf("save catalog item %s: %w", id, err)
		}
	}
	return nil
}

// batchHashWriter 由 store.RedisStore 实现。
type batchHashWriter interface {
	HSetMany(ctx context.Context, key string, fields map[string][]byte) error
}

// lessID 数字 ID 按数值比较，其余按字典序；数字排在字符串之前。
func lessID(a, b core.ItemID) bool {
	an, aok := numeric(a)
	bn, bok := numeric(b)
	switch {
	case aok && bok:
		if an != bn {
			return an < bn
		}
		return a < b
	case aok:
		return true
	case bok:
		return false
	}
	return a < b
}

func numeric(id core.ItemID) (int64, bool) {
	if id == "" || len(id) > 18 {
		return 0, false
	}
	var n int64
	for _, c := range []byte(id) {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int64(c-'0')
	}
	return n, true
}

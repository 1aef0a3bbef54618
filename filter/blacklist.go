package filter

import (
	"context"
	"slices"

	"github.com/rushteam/moodbite/core"
)

// BlacklistStore 读取存储中的黑名单菜品 ID。
type BlacklistStore interface {
	GetBlacklist(ctx context.Context, key string) ([]string, error)
}

// BlacklistFilter 排除三类菜品 ID：
//   - ItemIDs：配置中写死的 ID（如临时下架）
//   - Store 中 Key 对应的列表：运营维护的全局黑名单
//   - UserContext.ExcludedItems：用户本次请求不想看到的菜品
type BlacklistFilter struct {
	ItemIDs []string
	Store   BlacklistStore
	Key     string

	static map[string]struct{}
}

// NewBlacklistFilter 创建黑名单过滤器，adapter 为 nil 时只使用 ids 与请求排除项。
func NewBlacklistFilter(ids []string, adapter *StoreAdapter, key string) *BlacklistFilter {
	f := &BlacklistFilter{ItemIDs: ids, Key: key, static: toSet(ids)}
	if adapter != nil {
		f.Store = adapter
	}
	return f
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(
	ctx context.Context,
	uctx *core.UserContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	id := item.Food.ID.String()

	if f.static != nil {
		if _, ok := f.static[id]; ok {
			return true, nil
		}
	} else if slices.Contains(f.ItemIDs, id) {
		return true, nil
	}
	if uctx != nil && slices.Contains(uctx.ExcludedItems, id) {
		return true, nil
	}
	if f.Store == nil || f.Key == "" {
		return false, nil
	}

	ids, err := f.Store.GetBlacklist(ctx, f.Key)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, id), nil
}

func toSet(ids []string) map[string]struct{} {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

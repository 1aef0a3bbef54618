package filter

import (
	"context"

	"github.com/rushteam/moodbite/core"
)

// MeetsRestrictions 判断菜品是否满足所有已开启的饮食限制。
// 缺失 dietary_info 等价于所有属性为 false，因此无法通过任何已开启的限制。
func MeetsRestrictions(item *core.FoodItem, r core.DietaryRestrictions) bool {
	if item == nil {
		return false
	}
	info := item.DietaryInfo
	switch {
	case r.Vegetarian && !info.Has(core.RestrictionVegetarian):
		return false
	case r.Vegan && !info.Has(core.RestrictionVegan):
		return false
	case r.GlutenFree && !info.Has(core.RestrictionGlutenFree):
		return false
	case r.DairyFree && !info.Has(core.RestrictionDairyFree):
		return false
	case r.NutFree && !info.Has(core.RestrictionNutFree):
		return false
	}
	return true
}

// FilterEligible 返回满足饮食限制的菜品，保持目录顺序，不修改输入。
// 空目录返回空切片（非 nil）。
func FilterEligible(catalog []core.FoodItem, r core.DietaryRestrictions) []core.FoodItem {
	out := make([]core.FoodItem, 0, len(catalog))
	for i := range catalog {
		if MeetsRestrictions(&catalog[i], r) {
			out = append(out, catalog[i])
		}
	}
	return out
}

// DietaryFilter 是饮食限制过滤器，限制取自请求的 UserContext。
type DietaryFilter struct{}

func (f *DietaryFilter) Name() string {
	return "filter.dietary"
}

func (f *DietaryFilter) ShouldFilter(
	_ context.Context,
	uctx *core.UserContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if uctx == nil {
		return false, nil
	}
	return !MeetsRestrictions(&item.Food, uctx.DietaryRestrictions), nil
}

package core

import (
	"sort"

	"github.com/rushteam/moodbite/pkg/utils"
)

// 饮食限制名称，与 DietaryInfo 的字段一一对应。
const (
	RestrictionVegetarian = "vegetarian"
	RestrictionVegan      = "vegan"
	RestrictionGlutenFree = "gluten_free"
	RestrictionDairyFree  = "dairy_free"
	RestrictionNutFree    = "nut_free"
)

// Restrictions 是全部支持的饮食限制，顺序固定。
var Restrictions = []string{
	RestrictionVegetarian,
	RestrictionVegan,
	RestrictionGlutenFree,
	RestrictionDairyFree,
	RestrictionNutFree,
}

// DietaryRestrictions 是用户开启的饮食限制。未开启的限制不做约束。
// JSON key 沿用前端的驼峰写法。
type DietaryRestrictions struct {
	Vegetarian bool `json:"vegetarian" yaml:"vegetarian"`
	Vegan      bool `json:"vegan" yaml:"vegan"`
	GlutenFree bool `json:"glutenFree" yaml:"gluten_free"`
	DairyFree  bool `json:"dairyFree" yaml:"dairy_free"`
	NutFree    bool `json:"nutFree" yaml:"nut_free"`
}

// Enabled 返回已开启的限制名称（顺序同 Restrictions）。
func (r DietaryRestrictions) Enabled() []string {
	out := make([]string, 0, len(Restrictions))
	flags := [...]bool{r.Vegetarian, r.Vegan, r.GlutenFree, r.DairyFree, r.NutFree}
	for i, on := range flags {
		if on {
			out = append(out, Restrictions[i])
		}
	}
	return out
}

// IsRestriction 判断 name 是否为可识别的限制名（含 glutenFree 等驼峰写法）。
// 调用方应在构建限制前用它拒绝未知名称，DietaryRestrictionsFrom 会静默忽略它们。
func IsRestriction(name string) bool {
	switch name {
	case RestrictionVegetarian, RestrictionVegan, RestrictionGlutenFree, RestrictionDairyFree, RestrictionNutFree,
		"glutenFree", "dairyFree", "nutFree":
		return true
	}
	return false
}

// DietaryRestrictionsFrom 从 "限制名 -> 是否开启" 的 map 构建限制；未知名称忽略。
// 同时接受 gluten_free 与 glutenFree 两种写法。
func DietaryRestrictionsFrom(m map[string]bool) DietaryRestrictions {
	var r DietaryRestrictions
	for k, on := range m {
		if !on {
			continue
		}
		switch k {
		case RestrictionVegetarian:
			r.Vegetarian = true
		case RestrictionVegan:
			r.Vegan = true
		case RestrictionGlutenFree, "glutenFree":
			r.GlutenFree = true
		case RestrictionDairyFree, "dairyFree":
			r.DairyFree = true
		case RestrictionNutFree, "nutFree":
			r.NutFree = true
		}
	}
	return r
}

// UserContext 承载单次推荐请求的用户输入：心情、强度、渴望、口味与饮食限制。
// 每次交互构建一个，推荐结束即丢弃。
type UserContext struct {
	UserID string `json:"userId,omitempty"`

	// SelectedMood 为空表示未选择心情；调用方应在进入打分前拒绝这种请求。
	SelectedMood string `json:"selectedMood"`

	// MoodIntensity 取值 [1,10]，5 为中性。
	MoodIntensity int `json:"moodIntensity"`

	SelectedCravings []string `json:"selectedCravings"`

	// TastePreferences 是 "口味 -> 是否选中"，只有值为 true 的口味参与匹配。
	TastePreferences map[string]bool `json:"tastePreferences"`

	DietaryRestrictions DietaryRestrictions `json:"dietaryRestrictions"`

	// ExcludedItems 是用户不想看到的菜品 ID。
	ExcludedItems []string `json:"excludedItems,omitempty"`

	// Labels 是请求级标签，随 Pipeline 透传。
	Labels map[string]utils.Label `json:"-"`
}

// SelectedTastes 返回值为 true 的口味 key，按字典序排列。
func (u *UserContext) SelectedTastes() []string {
	if u == nil || len(u.TastePreferences) == 0 {
		return nil
	}
	out := make([]string, 0, len(u.TastePreferences))
	for k, on := range u.TastePreferences {
		if on {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// PutLabel 写入请求级 Label。
func (u *UserContext) PutLabel(key string, lbl utils.Label) {
	u.Labels = utils.PutLabel(u.Labels, key, lbl)
}

// GetLabel 获取请求级 Label。
func (u *UserContext) GetLabel(key string) (utils.Label, bool) {
	if u == nil || u.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := u.Labels[key]
	return lbl, ok
}

// Clone 返回深拷贝，批量并发推荐时每个请求各持一份。
func (u UserContext) Clone() UserContext {
	out := u
	out.SelectedCravings = cloneStrings(u.SelectedCravings)
	out.ExcludedItems = cloneStrings(u.ExcludedItems)
	if u.TastePreferences != nil {
		out.TastePreferences = make(map[string]bool, len(u.TastePreferences))
		for k, v := range u.TastePreferences {
			out.TastePreferences[k] = v
		}
	}
	out.Labels = nil
	for k, v := range u.Labels {
		out.Labels = utils.PutLabel(out.Labels, k, v)
	}
	return out
}

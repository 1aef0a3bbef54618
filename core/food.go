package core

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// ItemID 是菜品唯一标识。数据集里既有数字 ID 也有字符串 ID，统一按字符串处理。
type ItemID string

// UnmarshalJSON 兼容 `"id": 12` 与 `"id": "12"` 两种写法。
func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}
	if i, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		*id = ItemID(strconv.FormatInt(i, 10))
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return fmt.Errorf("item id: unsupported value %s", data)
	}
	*id = ItemID(data)
	return nil
}

func (id ItemID) String() string { return string(id) }

// DietaryInfo 是菜品的饮食属性。缺失的字段视为 false。
type DietaryInfo struct {
	Vegetarian bool `json:"vegetarian,omitempty"`
	Vegan      bool `json:"vegan,omitempty"`
	GlutenFree bool `json:"gluten_free,omitempty"`
	DairyFree  bool `json:"dairy_free,omitempty"`
	NutFree    bool `json:"nut_free,omitempty"`
}

// Has 按限制名查询对应的饮食属性；nil 接收者对任何限制都返回 false。
func (d *DietaryInfo) Has(restriction string) bool {
	if d == nil {
		return false
	}
	switch restriction {
	case RestrictionVegetarian:
		return d.Vegetarian
	case RestrictionVegan:
		return d.Vegan
	case RestrictionGlutenFree:
		return d.GlutenFree
	case RestrictionDairyFree:
		return d.DairyFree
	case RestrictionNutFree:
		return d.NutFree
	}
	return false
}

// FoodItem 是目录中的一道菜，来自外部数据集，打分过程中只读。
//
// 营养与元数据字段（Calories、Protein、Carbs、Fat、PrepTime 等）原样透传，不参与打分。
type FoodItem struct {
	ID          ItemID   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Cuisine     string   `json:"cuisine"`
	Ingredients []string `json:"ingredients,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`

	Moods        []string     `json:"moods"`
	Cravings     []string     `json:"cravings"`
	TasteProfile []string     `json:"taste_profile"`
	DietaryInfo  *DietaryInfo `json:"dietary_info,omitempty"`

	Calories float64 `json:"calories,omitempty"`
	Protein  float64 `json:"protein,omitempty"`
	Carbs    float64 `json:"carbs,omitempty"`
	Fat      float64 `json:"fat,omitempty"`
	PrepTime int     `json:"prep_time,omitempty"`
}

// HasMood 判断菜品是否标注了 mood；空 mood 永远不匹配。
func (f *FoodItem) HasMood(mood string) bool {
	if mood == "" {
		return false
	}
	for _, m := range f.Moods {
		if m == mood {
			return true
		}
	}
	return false
}

// Clone 返回深拷贝，供并发请求各自持有独立的 item。
func (f FoodItem) Clone() FoodItem {
	out := f
	out.Ingredients = cloneStrings(f.Ingredients)
	out.Moods = cloneStrings(f.Moods)
	out.Cravings = cloneStrings(f.Cravings)
	out.TasteProfile = cloneStrings(f.TasteProfile)
	if f.DietaryInfo != nil {
		info := *f.DietaryInfo
		out.DietaryInfo = &info
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

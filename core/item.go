package core

import "github.com/rushteam/moodbite/pkg/utils"

// 打分特征名（Item.Features 的 key）。
const (
	FeatureMoodMatch    = "mood_match"
	FeatureCravingMatch = "craving_match"
	FeatureTasteMatch   = "taste_match"
)

// Item 是 Pipeline 中的统一承载结构：菜品、分数、子特征、标签与推荐理由。
// Features 记录打分子项，Labels 用于解释与观测，Score 用于排序。
type Item struct {
	Food        FoodItem
	Score       float64
	Features    map[string]float64
	Labels      map[string]utils.Label
	Explanation string
}

// NewItem 包装一道菜。Food 会被深拷贝，后续写入不会影响目录中的原始数据。
func NewItem(food FoodItem) *Item {
	return &Item{
		Food:     food.Clone(),
		Features: make(map[string]float64, 3),
		Labels:   make(map[string]utils.Label),
	}
}

// NewItems 按目录顺序包装整份目录。
func NewItems(catalog []FoodItem) []*Item {
	items := make([]*Item, 0, len(catalog))
	for _, f := range catalog {
		items = append(items, NewItem(f))
	}
	return items
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	it.Labels = utils.PutLabel(it.Labels, key, lbl)
}

// Scored 转为输出结构。
func (it *Item) Scored() ScoredFoodItem {
	return ScoredFoodItem{FoodItem: it.Food, Score: it.Score}
}

// ScoredFoodItem 是一次推荐产出的结果：菜品本身加上计算得到的分数。
// 每次请求新建，不会修改目录中的 FoodItem。
type ScoredFoodItem struct {
	FoodItem
	Score float64 `json:"score"`
}

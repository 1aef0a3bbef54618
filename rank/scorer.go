// Package rank 实现多因子打分与排序：心情匹配、渴望匹配、口味匹配加权求和，
// 再按心情强度调整，最后按最低分阈值截断并降序排序。
//
// 打分是 (FoodItem, UserContext) 的纯函数，没有隐藏状态，条目之间互不影响。
package rank

import (
	"sort"

	"github.com/rushteam/moodbite/core"
	"github.com/rushteam/moodbite/model"
)

// DefaultMinScore 是默认最低分：分数必须严格大于它才会被推荐。
const DefaultMinScore = 0.1

// 心情强度取值范围，5 为中性（调整系数 1.0）。
const (
	MinIntensity = 1
	MaxIntensity = 10
)

// Weights 是三个子因子的权重。
type Weights struct {
	MoodMatch    float64 `json:"mood_match" yaml:"mood_match" koanf:"mood_match"`
	CravingMatch float64 `json:"craving_match" yaml:"craving_match" koanf:"craving_match"`
	TasteMatch   float64 `json:"taste_match" yaml:"taste_match" koanf:"taste_match"`
}

// DefaultWeights 返回 {MoodMatch: 0.4, CravingMatch: 0.3, TasteMatch: 0.3}。
func DefaultWeights() Weights {
	return Weights{MoodMatch: 0.4, CravingMatch: 0.3, TasteMatch: 0.3}
}

// Model 把权重转为线性加权模型，feature key 与 core.FeatureXXX 对应。
func (w Weights) Model() *model.WeightedModel {
	return &model.WeightedModel{Weights: map[string]float64{
		core.FeatureMoodMatch:    w.MoodMatch,
		core.FeatureCravingMatch: w.CravingMatch,
		core.FeatureTasteMatch:   w.TasteMatch,
	}}
}

// Options 控制一次排序。零值 Options 的权重全为 0，应从 DefaultOptions() 开始修改。
type Options struct {
	Weights  Weights
	MinScore float64 // 分数必须严格大于 MinScore
	Limit    int     // <= 0 表示不截断
}

// DefaultOptions 返回默认权重与 0.1 的最低分阈值。
func DefaultOptions() Options {
	return Options{Weights: DefaultWeights(), MinScore: DefaultMinScore}
}

// Overlap 计算两个标签集合的重叠度：|a ∩ b| / min(|a|, |b|)，任一为空返回 0。
//
// 与 Jaccard 不同，较小集合被完全覆盖时结果即为 1.0，即使另一集合更大。
// 交集按 a 的元素计数；结果不超过 1。
func Overlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	hit := 0
	for _, v := range a {
		if _, ok := set[v]; ok {
			hit++
		}
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	score := float64(hit) / float64(n)
	if score > 1 {
		return 1
	}
	return score
}

// MoodMatch 菜品标注了所选心情返回 1，否则（包括未选择心情）返回 0。
func MoodMatch(item *core.FoodItem, mood string) float64 {
	if item.HasMood(mood) {
		return 1
	}
	return 0
}

// CravingMatch 是菜品渴望标签与用户所选渴望的重叠度。
func CravingMatch(item *core.FoodItem, uctx *core.UserContext) float64 {
	return Overlap(item.Cravings, uctx.SelectedCravings)
}

// TasteMatch 是菜品口味与用户选中口味的重叠度。
func TasteMatch(item *core.FoodItem, uctx *core.UserContext) float64 {
	if len(item.TasteProfile) == 0 {
		return 0
	}
	return Overlap(item.TasteProfile, uctx.SelectedTastes())
}

// IntensityFactor 返回 1 + (intensity/10 - 0.5) * 0.4：
// 强度 5 为 1.0，强度 1 为 0.84，强度 10 为 1.2。超出 [1,10] 的输入先截断。
func IntensityFactor(intensity int) float64 {
	if intensity < MinIntensity {
		intensity = MinIntensity
	}
	if intensity > MaxIntensity {
		intensity = MaxIntensity
	}
	return 1 + (float64(intensity)/10-0.5)*0.4
}

// Features 计算三个子因子，key 为 core.FeatureXXX。
func Features(item *core.FoodItem, uctx *core.UserContext) map[string]float64 {
	return map[string]float64{
		core.FeatureMoodMatch:    MoodMatch(item, uctx.SelectedMood),
		core.FeatureCravingMatch: CravingMatch(item, uctx),
		core.FeatureTasteMatch:   TasteMatch(item, uctx),
	}
}

// Adjust 对加权得分应用心情强度调整：只有 mood_match 为 1 时才乘以强度系数。
func Adjust(composite, moodMatch float64, intensity int) float64 {
	if moodMatch != 1 {
		return composite
	}
	return composite * IntensityFactor(intensity)
}

// Score 计算单个菜品的最终得分。
func Score(item *core.FoodItem, uctx *core.UserContext, w Weights) float64 {
	f := Features(item, uctx)
	composite, _ := w.Model().Predict(f)
	return Adjust(composite, f[core.FeatureMoodMatch], uctx.MoodIntensity)
}

// Rank 使用默认权重与阈值对已通过资格过滤的菜品打分排序。
func Rank(eligible []core.FoodItem, uctx core.UserContext) []core.ScoredFoodItem {
	return RankWith(eligible, uctx, DefaultOptions())
}

// RankWith 对菜品打分，丢弃分数 <= MinScore 的菜品，按分数降序排列。
// 同分时保持输入（目录）顺序，相同输入总是得到相同输出。
func RankWith(eligible []core.FoodItem, uctx core.UserContext, opts Options) []core.ScoredFoodItem {
	m := opts.Weights.Model()
	out := make([]core.ScoredFoodItem, 0, len(eligible))
	for i := range eligible {
		item := &eligible[i]
		f := Features(item, &uctx)
		composite, _ := m.Predict(f)
		score := Adjust(composite, f[core.FeatureMoodMatch], uctx.MoodIntensity)
		if score <= opts.MinScore {
			continue
		}
		out = append(out, core.ScoredFoodItem{FoodItem: item.Clone(), Score: score})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

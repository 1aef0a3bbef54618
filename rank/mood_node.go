package rank

import (
	"context"
	"sort"

	"github.com/rushteam/moodbite/core"
	"github.com/rushteam/moodbite/model"
	"github.com/rushteam/moodbite/pipeline"
	"github.com/rushteam/moodbite/pkg/utils"
)

// MoodNode 是打分 Node：计算子因子写入 item.Features，用 Model 求加权分，
// 再做心情强度调整，最后按分数降序稳定排序（同分保持输入顺序）。
//   - 写入 labels：rank_model、mood_match、intensity_factor（仅心情命中时）
//   - 不做阈值截断，截断由 rerank.ThresholdNode 负责
type MoodNode struct {
	// Model 为 nil 时使用 DefaultWeights()。
	Model model.RankModel
}

// NewMoodNode 以给定权重创建打分 Node。
func NewMoodNode(w Weights) *MoodNode {
	return &MoodNode{Model: w.Model()}
}

func (n *MoodNode) Name() string        { return "rank.mood" }
func (n *MoodNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *MoodNode) Process(
	_ context.Context,
	uctx *core.UserContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	if uctx == nil {
		uctx = &core.UserContext{}
	}
	m := n.Model
	if m == nil {
		m = DefaultWeights().Model()
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		it.Features = Features(&it.Food, uctx)
		composite, err := m.Predict(it.Features)
		if err != nil {
			return nil, err
		}
		mood := it.Features[core.FeatureMoodMatch]
		it.Score = Adjust(composite, mood, uctx.MoodIntensity)

		it.PutLabel(utils.LabelRankModel, utils.Label{Value: m.Name(), Source: "rank"})
		if mood == 1 {
			it.PutLabel(utils.LabelMoodMatch, utils.Label{Value: uctx.SelectedMood, Source: "rank"})
			it.PutLabel(utils.LabelIntensity, utils.FloatLabel(IntensityFactor(uctx.MoodIntensity), "rank"))
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i] == nil {
			return false
		}
		if items[j] == nil {
			return true
		}
		return items[i].Score > items[j].Score
	})
	return items, nil
}

package rerank

import (
	"context"

	"github.com/rushteam/moodbite/core"
	"github.com/rushteam/moodbite/pipeline"
	"github.com/rushteam/moodbite/pkg/utils"
)

// ThresholdNode 丢弃分数 <= MinScore 的菜品，保留者维持原有顺序。
// 通常紧跟在 rank.MoodNode 之后，默认阈值为 rank.DefaultMinScore（0.1）。
type ThresholdNode struct {
	MinScore float64
}

func (n *ThresholdNode) Name() string {
	return "rerank.threshold"
}

func (n *ThresholdNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *ThresholdNode) Process(
	_ context.Context,
	_ *core.UserContext,
	items []*core.Item,
) ([]*core.Item, error) {
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil || it.Score <= n.MinScore {
			continue
		}
		it.PutLabel(utils.LabelThreshold, utils.FloatLabel(n.MinScore, "rerank"))
		out = append(out, it)
	}
	return out, nil
}

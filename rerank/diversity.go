package rerank

import (
	"context"
	"strings"

	"github.com/rushteam/moodbite/core"
	"github.com/rushteam/moodbite/pipeline"
	"github.com/rushteam/moodbite/pkg/utils"
)

// Diversity 限制同一分组（默认按菜系）在结果中出现的次数，避免前几名都是同一菜系。
//
// 分组取 Labels[LabelKey]；LabelKey 为默认的 "cuisine" 且没有该 label 时退回 Food.Cuisine。
// 分组比较忽略大小写与首尾空白，没有分组的菜品不受限制。
type Diversity struct {
	LabelKey string

	// MaxPerGroup 是每组保留的菜品数，<= 0 按 1 处理。
	MaxPerGroup int

	// Demote 为 true 时超出配额的菜品按原顺序移到末尾，而不是丢弃。
	Demote bool
}

func (n *Diversity) Name() string        { return "rerank.diversity" }
func (n *Diversity) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *Diversity) Process(_ context.Context, _ *core.UserContext, items []*core.Item) ([]*core.Item, error) {
	limit := max(n.MaxPerGroup, 1)
	count := make(map[string]int)
	kept := make([]*core.Item, 0, len(items))
	var overflow []*core.Item

	for _, it := range items {
		if it == nil {
			continue
		}
		g := n.group(it)
		if g == "" {
			kept = append(kept, it)
			continue
		}
		if count[g] >= limit {
			if n.Demote {
				it.PutLabel(utils.LabelDemoted, utils.Label{Value: g, Source: "rerank"})
				overflow = append(overflow, it)
			}
			continue
		}
		count[g]++
		kept = append(kept, it)
	}
	return append(kept, overflow...), nil
}

func (n *Diversity) group(it *core.Item) string {
	key := n.LabelKey
	if key == "" {
		key = utils.LabelCuisine
	}
	g := it.Labels[key].Value
	if g == "" && key == utils.LabelCuisine {
		g = it.Food.Cuisine
	}
	return strings.ToLower(strings.TrimSpace(g))
}

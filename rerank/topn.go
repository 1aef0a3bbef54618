package rerank

import (
	"context"
	"strconv"

	"github.com/rushteam/moodbite/core"
	"github.com/rushteam/moodbite/pipeline"
	"github.com/rushteam/moodbite/pkg/utils"
)

// TopNNode 截取前 N 道菜并给保留的菜品写上名次 label（从 1 开始），N <= 0 时不截断。
// 放在打分与阈值之后、推荐理由之前：
//
//	rank.mood -> rerank.threshold -> rerank.topn -> postprocess.explain
type TopNNode struct {
	N int
}

func (n *TopNNode) Name() string        { return "rerank.topn" }
func (n *TopNNode) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *TopNNode) Process(_ context.Context, _ *core.UserContext, items []*core.Item) ([]*core.Item, error) {
	if n.N > 0 && len(items) > n.N {
		items = items[:n.N]
	}
	for i, it := range items {
		if it != nil {
			it.PutLabel(utils.LabelPosition, utils.Label{Value: strconv.Itoa(i + 1), Source: "rerank"})
		}
	}
	return items, nil
}

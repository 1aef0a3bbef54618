package explain

import (
	"context"

	"github.com/rushteam/moodbite/core"
	"github.com/rushteam/moodbite/pipeline"
	"github.com/rushteam/moodbite/pkg/utils"
)

// Node 是后处理 Node：为每道菜填写 item.Explanation 并写入 explanation label。
// 只修改展示字段，不改变分数与顺序。
type Node struct {
	Explainer *Explainer
}

// NewNode 使用给定 Explainer 创建 Node；为 nil 时使用默认种子。
func NewNode(e *Explainer) *Node {
	if e == nil {
		e = New(nil)
	}
	return &Node{Explainer: e}
}

func (n *Node) Name() string        { return "postprocess.explain" }
func (n *Node) Kind() pipeline.Kind { return pipeline.KindPostProcess }

func (n *Node) Process(
	_ context.Context,
	uctx *core.UserContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if uctx == nil || uctx.SelectedMood == "" || len(items) == 0 {
		return items, nil
	}
	e := n.Explainer
	if e == nil {
		e = New(nil)
	}
	for _, it := range items {
		if it == nil {
			continue
		}
		it.Explanation = e.Explain(it.Food, uctx.SelectedMood)
		it.PutLabel(utils.LabelExplanation, utils.Label{Value: it.Explanation, Source: "explain"})
	}
	return items, nil
}

package filter

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rushteam/moodbite/core"
	"github.com/rushteam/moodbite/pipeline"
	"github.com/rushteam/moodbite/pkg/utils"
)

// FilterNode 依次应用 Filters，任一过滤器命中即剔除该菜品，并在菜品上记录命中的过滤器名。
//
// 过滤器出错时默认记录日志并视为未命中（存储抖动不影响推荐）；Strict 为 true 时直接返回错误。
type FilterNode struct {
	Filters []Filter
	Logger  zerolog.Logger
	Strict  bool
}

func (n *FilterNode) Name() string        { return "filter.node" }
func (n *FilterNode) Kind() pipeline.Kind { return pipeline.KindFilter }

func (n *FilterNode) Process(ctx context.Context, uctx *core.UserContext, items []*core.Item) ([]*core.Item, error) {
	if len(n.Filters) == 0 {
		return items, nil
	}

	removed := make(map[string]int, len(n.Filters))
	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		by, err := n.match(ctx, uctx, item)
		if err != nil {
			return nil, err
		}
		if by == "" {
			out = append(out, item)
			continue
		}
		removed[by]++
		item.PutLabel(utils.LabelFiltered, utils.Label{Value: "true", Source: by})
	}

	if len(removed) > 0 {
		ev := n.Logger.Debug().Int("in", len(items)).Int("out", len(out))
		for name, c := range removed {
			ev = ev.Int(name, c)
		}
		ev.Msg("items filtered")
	}
	return out, nil
}

// match 返回第一个命中的过滤器名，未命中返回空串。
func (n *FilterNode) match(ctx context.Context, uctx *core.UserContext, item *core.Item) (string, error) {
	for _, f := range n.Filters {
		hit, err := f.ShouldFilter(ctx, uctx, item)
		if err != nil {
			if n.Strict {
				return "", fmt.Errorf("%s on item %s: %w", f.Name(), item.Food.ID, err)
			}
			n.Logger.Debug().Err(err).
				Str("filter", f.Name()).
				Str("item", item.Food.ID.String()).
				Msg("filter error, skipped")
			continue
		}
		if hit {
			return f.Name(), nil
		}
	}
	return "", nil
}

// Package builders 注册内置 Node 的配置构建器。
package builders

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rushteam/moodbite/config"
	"github.com/rushteam/moodbite/core"
	"github.com/rushteam/moodbite/explain"
	"github.com/rushteam/moodbite/filter"
	"github.com/rushteam/moodbite/model"
	"github.com/rushteam/moodbite/pipeline"
	"github.com/rushteam/moodbite/pkg/conv"
	"github.com/rushteam/moodbite/rank"
	"github.com/rushteam/moodbite/rerank"
)

func init() {
	d := Deps{}
	for typeName, builder := range d.builders() {
		config.Register(typeName, builder)
	}
}

// Deps 是构建 Node 时需要的运行期依赖，无法写进 YAML 的部分。
// 零值可用：没有 Store 时黑名单只读配置中的 item_ids；没有 Explainer 时按配置的 seed 新建。
type Deps struct {
	Store     core.Store
	Explainer *explain.Explainer
	Logger    zerolog.Logger
}

// Factory 返回带依赖的 NodeFactory：先复制全局注册表，再用 Deps 绑定的构建器覆盖内置类型。
func Factory(deps Deps) *pipeline.NodeFactory {
	f := config.DefaultFactory()
	for typeName, builder := range deps.builders() {
		f.Register(typeName, builder)
	}
	return f
}

func (d Deps) builders() map[string]pipeline.NodeBuilder {
	return map[string]pipeline.NodeBuilder{
		"filter.dietary":      d.BuildDietaryNode,
		"filter.blacklist":    d.BuildBlacklistNode,
		"filter.expr":         d.BuildExprNode,
		"filter.bloom":        d.BuildBloomNode,
		"filter":              d.BuildFilterNode,
		"rank.mood":           BuildMoodNode,
		"rerank.threshold":    BuildThresholdNode,
		"rerank.topn":         BuildTopNNode,
		"rerank.diversity":    BuildDiversityNode,
		"postprocess.explain": d.BuildExplainNode,
	}
}

// filterNode 包装过滤器；node 配置 strict: true 时过滤器出错会中断 Pipeline。
func (d Deps) filterNode(cfg map[string]any, filters ...filter.Filter) *filter.FilterNode {
	return &filter.FilterNode{Filters: filters, Logger: d.Logger, Strict: conv.Get(cfg, "strict", false)}
}

func (d Deps) BuildDietaryNode(cfg map[string]any) (pipeline.Node, error) {
	return d.filterNode(cfg, &filter.DietaryFilter{}), nil
}

func (d Deps) BuildBlacklistNode(cfg map[string]any) (pipeline.Node, error) {
	f, err := d.blacklistFilter(cfg)
	if err != nil {
		return nil, err
	}
	return d.filterNode(cfg, f), nil
}

// BuildBloomNode 读取 key，布隆过滤器数据由运营侧用 filter.SaveBloom 写入 Store。
func (d Deps) BuildBloomNode(cfg map[string]any) (pipeline.Node, error) {
	f, err := d.bloomFilter(cfg)
	if err != nil {
		return nil, err
	}
	return d.filterNode(cfg, f), nil
}

func (d Deps) BuildExprNode(cfg map[string]any) (pipeline.Node, error) {
	f, err := exprFilter(cfg)
	if err != nil {
		return nil, err
	}
	return d.filterNode(cfg, f), nil
}

// BuildFilterNode 在一个 Node 内组合多个过滤器：
//
//	nodes:
//	  - type: filter
//	    config:
//	      filters:
//	        - type: dietary
//	        - type: blacklist
//	          item_ids: ["7"]
//	        - type: expr
//	          expr: item.prep_time <= 30
//	        - type: bloom
//	          key: bloom:recalled
func (d Deps) BuildFilterNode(cfg map[string]any) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}
	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}
		switch filterType := conv.Get(filterMap, "type", ""); filterType {
		case "dietary":
			filters = append(filters, &filter.DietaryFilter{})
		case "blacklist":
			f, err := d.blacklistFilter(filterMap)
			if err != nil {
				return nil, err
			}
			filters = append(filters, f)
		case "expr":
			f, err := exprFilter(filterMap)
			if err != nil {
				return nil, err
			}
			filters = append(filters, f)
		case "bloom":
			f, err := d.bloomFilter(filterMap)
			if err != nil {
				return nil, err
			}
			filters = append(filters, f)
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}
	return d.filterNode(cfg, filters...), nil
}

func (d Deps) blacklistFilter(cfg map[string]any) (*filter.BlacklistFilter, error) {
	ids := conv.Strings(cfg["item_ids"])
	key := conv.Get(cfg, "key", "")
	var adapter *filter.StoreAdapter
	if key != "" {
		if d.Store == nil {
			return nil, fmt.Errorf("blacklist key %q requires a store", key)
		}
		adapter = filter.NewStoreAdapter(d.Store)
	}
	return filter.NewBlacklistFilter(ids, adapter, key), nil
}

func (d Deps) bloomFilter(cfg map[string]any) (*filter.BloomFilter, error) {
	key := conv.Get(cfg, "key", "")
	if key == "" {
		return nil, fmt.Errorf("bloom key not found")
	}
	if d.Store == nil {
		return nil, fmt.Errorf("bloom key %q requires a store", key)
	}
	return filter.NewBloomFilter(d.Store, key), nil
}

func exprFilter(cfg map[string]any) (*filter.ExprFilter, error) {
	expr := conv.Get(cfg, "expr", "")
	if expr == "" {
		return nil, fmt.Errorf("expr not found")
	}
	return filter.NewExprFilter(expr)
}

// BuildMoodNode 读取可选的 weights；缺省的权重项取默认值。
// 也可用 model_path 指向 model.LoadWeightedModel 格式的权重文件（可带 bias），与 weights 互斥。
func BuildMoodNode(cfg map[string]any) (pipeline.Node, error) {
	if path := conv.Get(cfg, "model_path", ""); path != "" {
		if conv.Map(cfg, "weights") != nil {
			return nil, fmt.Errorf("model_path and weights are mutually exclusive")
		}
		m, err := model.LoadWeightedModel(path)
		if err != nil {
			return nil, err
		}
		return &rank.MoodNode{Model: m}, nil
	}

	w := rank.DefaultWeights()
	if wm := conv.Map(cfg, "weights"); wm != nil {
		w.MoodMatch = conv.Float(wm, "mood_match", w.MoodMatch)
		w.CravingMatch = conv.Float(wm, "craving_match", w.CravingMatch)
		w.TasteMatch = conv.Float(wm, "taste_match", w.TasteMatch)
	}
	if w.MoodMatch < 0 || w.CravingMatch < 0 || w.TasteMatch < 0 {
		return nil, fmt.Errorf("weights must be non-negative: %+v", w)
	}
	return rank.NewMoodNode(w), nil
}

func BuildThresholdNode(cfg map[string]any) (pipeline.Node, error) {
	return &rerank.ThresholdNode{MinScore: conv.Float(cfg, "min_score", rank.DefaultMinScore)}, nil
}

func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	n := conv.Int(cfg, "n", 0)
	if n < 0 {
		return nil, fmt.Errorf("n must be >= 0, got %d", n)
	}
	return &rerank.TopNNode{N: int(n)}, nil
}

func BuildDiversityNode(cfg map[string]any) (pipeline.Node, error) {
	perGroup := conv.Int(cfg, "max_per_group", 1)
	if perGroup < 1 {
		return nil, fmt.Errorf("max_per_group must be >= 1, got %d", perGroup)
	}
	return &rerank.Diversity{
		LabelKey:    conv.Get(cfg, "label_key", ""),
		MaxPerGroup: int(perGroup),
		Demote:      conv.Get(cfg, "demote", false),
	}, nil
}

func (d Deps) BuildExplainNode(cfg map[string]any) (pipeline.Node, error) {
	if d.Explainer != nil {
		return explain.NewNode(d.Explainer), nil
	}
	seed := conv.Int(cfg, "seed", 1)
	return explain.NewNode(explain.NewSeeded(seed)), nil
}

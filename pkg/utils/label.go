package utils

import "strconv"

// Label 是推荐结果上的可解释标记：记录某一阶段对 item 做了什么判断。
// Value 的语义由写入方决定，Source 标记写入阶段（filter / rank / rerank / explain）。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"`
}

// 常用 Label key。
const (
	LabelFiltered    = "filtered"
	LabelRankModel   = "rank_model"
	LabelMoodMatch   = "mood_match"
	LabelIntensity   = "intensity_factor"
	LabelThreshold   = "threshold"
	LabelExplanation = "explanation"
	LabelCuisine     = "cuisine"
	LabelPosition    = "position"
	LabelDemoted     = "demoted"
)

// FloatLabel 以紧凑格式记录一个数值。
func FloatLabel(v float64, source string) Label {
	return Label{Value: strconv.FormatFloat(v, 'f', -1, 64), Source: source}
}

// MergeLabel 合并同名 Label，保留历史：
// - Value: 以 '|' 累积
// - Source: 以 ',' 累积
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	merged.Value = existing.Value + "|" + incoming.Value
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "", incoming.Source == existing.Source:
		merged.Source = existing.Source
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}

// PutLabel 向 labels 写入 key；若已存在则按 MergeLabel 累积。labels 为 nil 时新建。
func PutLabel(labels map[string]Label, key string, lbl Label) map[string]Label {
	if labels == nil {
		labels = make(map[string]Label)
	}
	if old, ok := labels[key]; ok {
		labels[key] = MergeLabel(old, lbl)
		return labels
	}
	labels[key] = lbl
	return labels
}

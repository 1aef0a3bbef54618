package model

import (
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-json"
)

// WeightedModel 是线性加权模型：score = Bias + sum(Weight_i * Feature_i)。
// 不做 Sigmoid 变换，子特征在 [0,1] 且权重和为 1 时，输出也落在 [0,1]。
// 未配置权重的特征被忽略。特征按 key 排序累加，保证浮点结果与 map 遍历顺序无关。
type WeightedModel struct {
	Bias    float64            `json:"bias"`
	Weights map[string]float64 `json:"weights"`
}

// LoadWeightedModel 从 JSON 文件加载权重：{"bias": 0, "weights": {"mood_match": 0.4, ...}}。
// 权重不能为空或为负。rank.mood 的 model_path 与 rank.model_path 配置使用它。
func LoadWeightedModel(path string) (*WeightedModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m WeightedModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse weights %s: %w", path, err)
	}
	if len(m.Weights) == 0 {
		return nil, fmt.Errorf("weights %s: no weights", path)
	}
	for k, w := range m.Weights {
		if w < 0 {
			return nil, fmt.Errorf("weights %s: %s must be non-negative, got %v", path, k, w)
		}
	}
	return &m, nil
}

func (m *WeightedModel) Name() string { return "weighted" }

func (m *WeightedModel) Predict(features map[string]float64) (float64, error) {
	keys := make([]string, 0, len(features))
	for k := range features {
		if _, ok := m.Weights[k]; ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	score := m.Bias
	for _, k := range keys {
		score += m.Weights[k] * features[k]
	}
	return score, nil
}

// Package moodbite 是一个按心情推荐食物的打分排序引擎。
//
// 设计要点：
// - 纯计算：打分是 (FoodItem, UserContext) 的纯函数，不持久化、不学习、不跨用户
// - Pipeline-first: 资格过滤 → 打分 → 阈值截断 → 推荐理由，均为可替换的 Node
// - Labels-first: 每个阶段的判断写入 labels，方便解释与观测
//
// 最常用的入口：
//
//	eligible := moodbite.FilterEligible(catalog, uctx.DietaryRestrictions)
//	ranked := moodbite.Rank(eligible, uctx)
//	reason := moodbite.NewExplainer(nil).Explain(ranked[0].FoodItem, uctx.SelectedMood)
package moodbite

import (
	"github.com/rushteam/moodbite/core"
	"github.com/rushteam/moodbite/explain"
	"github.com/rushteam/moodbite/filter"
	"github.com/rushteam/moodbite/pipeline"
	"github.com/rushteam/moodbite/rank"
)

// 轻量 facade：便于直接 import "github.com/rushteam/moodbite" 使用核心抽象。
type (
	FoodItem            = core.FoodItem
	DietaryInfo         = core.DietaryInfo
	DietaryRestrictions = core.DietaryRestrictions
	UserContext         = core.UserContext
	ScoredFoodItem      = core.ScoredFoodItem
	Weights             = rank.Weights
	Explainer           = explain.Explainer
	Pipeline            = pipeline.Pipeline
	Node                = pipeline.Node
	Kind                = pipeline.Kind
)

const (
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)

// FilterEligible 见 filter.FilterEligible。
func FilterEligible(catalog []FoodItem, r DietaryRestrictions) []FoodItem {
	return filter.FilterEligible(catalog, r)
}

// Rank 见 rank.Rank。
func Rank(eligible []FoodItem, uctx UserContext) []ScoredFoodItem {
	return rank.Rank(eligible, uctx)
}

// Recommend 依次执行资格过滤与打分排序。
func Recommend(catalog []FoodItem, uctx UserContext) []ScoredFoodItem {
	return rank.Rank(filter.FilterEligible(catalog, uctx.DietaryRestrictions), uctx)
}

// NewExplainer 见 explain.New。
func NewExplainer(rnd explain.Rand) *Explainer {
	return explain.New(rnd)
}

package pipeline

import (
	"context"

	"github.com/rushteam/moodbite/core"
)

// Kind 用于标记 Node 类型，方便观测/编排（例如按阶段打点）。
type Kind string

const (
	KindFilter      Kind = "filter"      // 过滤阶段：剔除不满足硬约束的菜品
	KindRank        Kind = "rank"        // 打分阶段：计算分数并排序
	KindReRank      Kind = "rerank"      // 重排阶段：阈值截断、多样性、TopN
	KindPostProcess Kind = "postprocess" // 后处理阶段：推荐理由等展示层修饰
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 items -> 输出 items”的形态。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		uctx *core.UserContext,
		items []*core.Item,
	) ([]*core.Item, error)
}

// NodeBuilder 根据配置构建 Node。
type NodeBuilder func(config map[string]any) (Node, error)

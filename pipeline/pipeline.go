package pipeline

import (
	"context"
	"fmt"

	"github.com/rushteam/moodbite/core"
)

// Pipeline 把推荐逻辑拆成可组合的 Node 链：Filter -> Rank -> ReRank -> PostProcess。
type Pipeline struct {
	Nodes []Node

	// Hooks 在每个 Node 执行后被调用（可选），用于日志/监控。
	Hooks []Hook
}

// Hook 观察单个 Node 的执行结果。in/out 为该 Node 输入、输出的 item 数量。
type Hook func(ctx context.Context, node Node, in, out int, err error)

func (p *Pipeline) Run(
	ctx context.Context,
	uctx *core.UserContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := node.Process(ctx, uctx, cur)
		for _, h := range p.Hooks {
			h(ctx, node, len(cur), len(next), err)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.Name(), err)
		}
		cur = next
	}
	return cur, nil
}

// NodeNames 返回链上各 Node 的名称，便于日志输出。
func (p *Pipeline) NodeNames() []string {
	names := make([]string, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		names = append(names, n.Name())
	}
	return names
}

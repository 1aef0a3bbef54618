package recommend

import (
	"context"

	"github.com/rushteam/moodbite/metrics"
	"github.com/rushteam/moodbite/pipeline"
)

// runStats 记录单次 Pipeline 执行的中间数量，通过 ctx 传给 hook，
// 同一 Pipeline 被并发执行时各请求互不干扰。
type runStats struct {
	eligible int // 最后一个过滤 Node 的输出数量，-1 表示没有过滤 Node
}

type statsKey struct{}

func withStats(ctx context.Context, st *runStats) context.Context {
	return context.WithValue(ctx, statsKey{}, st)
}

func statsFrom(ctx context.Context) *runStats {
	st, _ := ctx.Value(statsKey{}).(*runStats)
	return st
}

func observeNode(ctx context.Context, node pipeline.Node, in, out int, err error) {
	if err != nil {
		return
	}
	if out < in {
		metrics.NodeFiltered.WithLabelValues(node.Name()).Add(float64(in - out))
	}
	if node.Kind() != pipeline.KindFilter {
		return
	}
	if st := statsFrom(ctx); st != nil {
		st.eligible = out
	}
}

// Package metrics 定义推荐链路的 Prometheus 指标。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 请求结果（outcome 标签取值）。
const (
	OutcomeOK       = "ok"
	OutcomeEmpty    = "empty"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

var (
	// RecommendRequests 按结果统计推荐请求数。
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "moodbite",
			Name:      "recommend_requests_total",
			Help:      "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"},
	)

	// RecommendDuration 是单次推荐耗时。
	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "moodbite",
			Name:      "recommend_duration_seconds",
			Help:      "Duration of a recommendation pass in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	// CatalogItems 是各阶段的菜品数量：catalog（输入）、eligible（过滤后）、returned（最终）。
	CatalogItems = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "moodbite",
			Name:      "recommend_items",
			Help:      "Number of items at each stage of a recommendation pass",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"stage"},
	)

	// NodeFiltered 统计每个 Node 移除的菜品数。
	NodeFiltered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "moodbite",
			Name:      "pipeline_node_removed_items_total",
			Help:      "Total number of items removed by each pipeline node",
		},
		[]string{"node"},
	)

	// MoodSelections 统计用户选择的心情。
	MoodSelections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "moodbite",
			Name:      "mood_selections_total",
			Help:      "Total number of recommendation requests by selected mood",
		},
		[]string{"mood"},
	)
)

// RecordRequest 记录一次请求的结果与各阶段数量。
func RecordRequest(outcome string, seconds float64, catalog, eligible, returned int) {
	RecommendRequests.WithLabelValues(outcome).Inc()
	RecommendDuration.Observe(seconds)
	CatalogItems.WithLabelValues("catalog").Observe(float64(catalog))
	CatalogItems.WithLabelValues("eligible").Observe(float64(eligible))
	CatalogItems.WithLabelValues("returned").Observe(float64(returned))
}

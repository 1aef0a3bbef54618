// Package recommend 是推荐入口：校验请求、执行 Pipeline、汇总结果并记录日志与指标。
//
// 打分与过滤本身是纯计算（见 filter、rank 包）；本包只负责把它们串起来，
// 并在进入打分前拒绝不满足前置条件（未选择心情）的请求。
package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/moodbite/core"
	"github.com/rushteam/moodbite/explain"
	"github.com/rushteam/moodbite/filter"
	"github.com/rushteam/moodbite/metrics"
	"github.com/rushteam/moodbite/model"
	"github.com/rushteam/moodbite/pipeline"
	"github.com/rushteam/moodbite/rank"
	"github.com/rushteam/moodbite/rerank"
)

// Recommendation 是返回给调用方的一条推荐。
type Recommendation struct {
	core.ScoredFoodItem
	Explanation string             `json:"explanation,omitempty"`
	Features    map[string]float64 `json:"features,omitempty"`
}

// Result 是一次推荐的结果。
// CatalogSize 与 EligibleCount 让调用方区分 "目录为空" 与 "过滤后没有匹配"。
type Result struct {
	RequestID     string           `json:"requestId"`
	Items         []Recommendation `json:"items"`
	CatalogSize   int              `json:"catalogSize"`
	EligibleCount int              `json:"eligibleCount"`
}

// Settings 描述默认 Pipeline 的组成。
type Settings struct {
	Weights rank.Weights
	// Model 非 nil 时替代 Weights 计算加权分，例如 model.LoadWeightedModel 加载的权重文件。
	Model model.RankModel

	MinScore float64
	Limit    int

	// Store 与 BlacklistKey 同时设置时，从存储读取全局黑名单；
	// Store 与 BloomKey 同时设置时，额外用布隆过滤器排除菜品。
	Store        core.Store
	BlacklistKey string
	BloomKey     string

	// Explainer 为 nil 时不生成推荐理由。
	Explainer *explain.Explainer
}

// DefaultSettings 返回默认权重、0.1 阈值、不截断、固定种子的推荐理由。
func DefaultSettings() Settings {
	return Settings{
		Weights:   rank.DefaultWeights(),
		MinScore:  rank.DefaultMinScore,
		Explainer: explain.NewSeeded(1),
	}
}

// DefaultPipeline 构建：dietary+blacklist[+bloom] 过滤 -> rank.mood -> threshold -> [topn] -> [explain]。
func DefaultPipeline(s Settings, logger zerolog.Logger) *pipeline.Pipeline {
	var adapter *filter.StoreAdapter
	if s.Store != nil && s.BlacklistKey != "" {
		adapter = filter.NewStoreAdapter(s.Store)
	}
	filters := []filter.Filter{
		&filter.DietaryFilter{},
		filter.NewBlacklistFilter(nil, adapter, s.BlacklistKey),
	}
	if s.Store != nil && s.BloomKey != "" {
		filters = append(filters, filter.NewBloomFilter(s.Store, s.BloomKey))
	}
	nodes := []pipeline.Node{
		&filter.FilterNode{Filters: filters, Logger: logger},
		moodNode(s),
		&rerank.ThresholdNode{MinScore: s.MinScore},
	}
	if s.Limit > 0 {
		nodes = append(nodes, &rerank.TopNNode{N: s.Limit})
	}
	if s.Explainer != nil {
		nodes = append(nodes, explain.NewNode(s.Explainer))
	}
	return &pipeline.Pipeline{Nodes: nodes}
}

func moodNode(s Settings) *rank.MoodNode {
	if s.Model != nil {
		return &rank.MoodNode{Model: s.Model}
	}
	return rank.NewMoodNode(s.Weights)
}

// Service 是推荐服务，可并发使用。
type Service struct {
	pipeline      *pipeline.Pipeline
	logger        zerolog.Logger
	validate      *validator.Validate
	maxConcurrent int
}

// Option 配置 Service。
type Option func(*Service)

// WithPipeline 使用自定义 Pipeline（例如从 YAML 构建）。
func WithPipeline(p *pipeline.Pipeline) Option {
	return func(s *Service) { s.pipeline = p }
}

// WithSettings 以 Settings 构建默认 Pipeline。
func WithSettings(st Settings) Option {
	return func(s *Service) { s.pipeline = DefaultPipeline(st, s.logger) }
}

// WithLogger 设置 Logger，默认不输出。
//
//nolint:gocritic // zerolog.Logger 按值传递
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l.With().Str("component", "recommend").Logger() }
}

// WithMaxConcurrent 限制 RecommendBatch 的并发数，<= 0 表示不限制。
func WithMaxConcurrent(n int) Option {
	return func(s *Service) { s.maxConcurrent = n }
}

// New 创建 Service。Option 按顺序应用：WithLogger 应放在 WithSettings 之前。
func New(opts ...Option) *Service {
	s := &Service{
		logger:   zerolog.Nop(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pipeline == nil {
		s.pipeline = DefaultPipeline(DefaultSettings(), s.logger)
	}
	// 复制一份 Pipeline 挂上统计 hook，不修改调用方传入的实例
	hooks := make([]pipeline.Hook, 0, len(s.pipeline.Hooks)+1)
	hooks = append(hooks, s.pipeline.Hooks...)
	hooks = append(hooks, observeNode)
	s.pipeline = &pipeline.Pipeline{Nodes: s.pipeline.Nodes, Hooks: hooks}
	return s
}

// Pipeline 返回实际执行的 Pipeline。
func (s *Service) Pipeline() *pipeline.Pipeline { return s.pipeline }

// request 是 UserContext 的校验视图。
type request struct {
	Mood      string `validate:"required"`
	Intensity int    `validate:"min=1,max=10"`
}

// ErrInvalidIntensity 表示心情强度不在 [1,10]。
var ErrInvalidIntensity = core.NewDomainError(core.ModuleRecommend, core.ErrorCodeInvalidInput,
	fmt.Sprintf("mood intensity must be between %d and %d", rank.MinIntensity, rank.MaxIntensity))

// Validate 检查请求前置条件：必须选择心情，强度在 [1,10]。
func (s *Service) Validate(uctx *core.UserContext) error {
	if uctx == nil {
		return core.ErrMoodRequired
	}
	err := s.validate.Struct(request{
		Mood:      strings.TrimSpace(uctx.SelectedMood),
		Intensity: uctx.MoodIntensity,
	})
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate request: %w", err)
	}
	for _, fe := range verrs {
		if fe.Field() == "Mood" {
			return core.ErrMoodRequired
		}
	}
	return ErrInvalidIntensity
}

// Recommend 为一个用户请求生成推荐。
// 请求不合法时返回 INVALID_INPUT 的 DomainError；没有匹配结果不是错误。
func (s *Service) Recommend(ctx context.Context, catalog []core.FoodItem, uctx core.UserContext) (*Result, error) {
	start := time.Now()
	requestID := uuid.NewString()
	logger := s.logger.With().
		Str("request_id", requestID).
		Str("user", uctx.UserID).
		Str("mood", uctx.SelectedMood).
		Int("intensity", uctx.MoodIntensity).
		Logger()

	if err := s.Validate(&uctx); err != nil {
		metrics.RecordRequest(metrics.OutcomeRejected, time.Since(start).Seconds(), len(catalog), 0, 0)
		logger.Debug().Err(err).Msg("recommendation rejected")
		return nil, err
	}
	metrics.MoodSelections.WithLabelValues(moodLabel(uctx.SelectedMood)).Inc()

	st := &runStats{eligible: -1}
	items, err := s.pipeline.Run(withStats(ctx, st), &uctx, core.NewItems(catalog))
	if err != nil {
		metrics.RecordRequest(metrics.OutcomeError, time.Since(start).Seconds(), len(catalog), 0, 0)
		logger.Error().Err(err).Msg("recommendation failed")
		return nil, fmt.Errorf("run pipeline: %w", err)
	}

	res := &Result{
		RequestID:     requestID,
		Items:         make([]Recommendation, 0, len(items)),
		CatalogSize:   len(catalog),
		EligibleCount: st.eligible,
	}
	if res.EligibleCount < 0 {
		res.EligibleCount = len(catalog)
	}
	for _, it := range items {
		if it == nil {
			continue
		}
		res.Items = append(res.Items, Recommendation{
			ScoredFoodItem: it.Scored(),
			Explanation:    it.Explanation,
			Features:       it.Features,
		})
	}

	outcome := metrics.OutcomeOK
	if len(res.Items) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	elapsed := time.Since(start)
	metrics.RecordRequest(outcome, elapsed.Seconds(), res.CatalogSize, res.EligibleCount, len(res.Items))
	logger.Debug().
		Int("catalog", res.CatalogSize).
		Int("eligible", res.EligibleCount).
		Int("returned", len(res.Items)).
		Dur("took", elapsed).
		Msg("recommendation done")
	return res, nil
}

// BatchResult 是批量请求中单个请求的结果，Err 与 Result 互斥。
type BatchResult struct {
	Result *Result
	Err    error
}

// RecommendBatch 并发处理多个请求，结果顺序与输入一致。
// 单个请求失败只记录在对应的 BatchResult 中；ctx 取消时返回 ctx 的错误。
func (s *Service) RecommendBatch(ctx context.Context, catalog []core.FoodItem, reqs []core.UserContext) ([]BatchResult, error) {
	out := make([]BatchResult, len(reqs))
	eg, gctx := errgroup.WithContext(ctx)
	if s.maxConcurrent > 0 {
		eg.SetLimit(s.maxConcurrent)
	}
	for i := range reqs {
		uctx := reqs[i].Clone()
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				out[i] = BatchResult{Err: err}
				return nil
			}
			res, err := s.Recommend(gctx, catalog, uctx)
			out[i] = BatchResult{Result: res, Err: err}
			return nil
		})
	}
	_ = eg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// moodLabel 把未知心情归为 other，限制指标标签基数。
func moodLabel(mood string) string {
	for _, m := range explain.Moods() {
		if m == mood {
			return mood
		}
	}
	return "other"
}

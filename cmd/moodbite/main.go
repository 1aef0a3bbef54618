// Command moodbite 读取菜品目录，按命令行给出的心情、渴望、口味与饮食限制输出推荐（JSON）。
//
//	moodbite -catalog foods.json -mood happy -intensity 8 \
//	    -cravings comfort,sweet-treat -tastes sweet,savory -restrictions vegetarian
//
// 配置了 catalog.redis_addr 时，-import 把本地 JSON 目录写入 Redis 后退出：
//
//	MOODBITE_CATALOG_REDIS_ADDR=localhost:6379 moodbite -import foods.json
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/rushteam/moodbite/appconfig"
	"github.com/rushteam/moodbite/catalog"
	"github.com/rushteam/moodbite/config"
	"github.com/rushteam/moodbite/config/builders"
	"github.com/rushteam/moodbite/core"
	"github.com/rushteam/moodbite/explain"
	"github.com/rushteam/moodbite/logging"
	"github.com/rushteam/moodbite/model"
	"github.com/rushteam/moodbite/pipeline"
	"github.com/rushteam/moodbite/recommend"
	"github.com/rushteam/moodbite/store"
)

type flags struct {
	config       string
	catalog      string
	mood         string
	intensity    int
	cravings     string
	tastes       string
	restrictions string
	exclude      string
	limit        int
	pipeline     string
	importPath   string
}

func parseFlags(args []string) (*flags, error) {
	f := &flags{}
	fs := flag.NewFlagSet("moodbite", flag.ContinueOnError)
	fs.StringVar(&f.config, "config", "", "config file (yaml)")
	fs.StringVar(&f.catalog, "catalog", "", "catalog JSON file (overrides catalog.path)")
	fs.StringVar(&f.mood, "mood", "", "selected mood, e.g. happy")
	fs.IntVar(&f.intensity, "intensity", 5, "mood intensity 1-10")
	fs.StringVar(&f.cravings, "cravings", "", "comma separated cravings")
	fs.StringVar(&f.tastes, "tastes", "", "comma separated tastes")
	fs.StringVar(&f.restrictions, "restrictions", "", "comma separated dietary restrictions (vegetarian,vegan,gluten_free,dairy_free,nut_free)")
	fs.StringVar(&f.exclude, "exclude", "", "comma separated item IDs to exclude")
	fs.IntVar(&f.limit, "limit", -1, "max recommendations (overrides rank.limit)")
	fs.StringVar(&f.pipeline, "pipeline", "", "pipeline YAML (overrides pipeline.path)")
	fs.StringVar(&f.importPath, "import", "", "write this catalog JSON file into the configured Redis and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	// 饮食限制是硬约束，拼错的名称不能被静默忽略
	for _, r := range splitList(f.restrictions) {
		if !core.IsRestriction(r) {
			return nil, core.NewDomainError(core.ModuleRecommend, core.ErrorCodeInvalidInput,
				fmt.Sprintf("unknown dietary restriction %q (known: %s)", r, strings.Join(core.Restrictions, ", ")))
		}
	}
	return f, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		logging.Logger().Error().Err(err).Msg("moodbite failed")
		if errors.Is(err, core.ErrMoodRequired) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	cfg, err := appconfig.Load(f.config)
	if err != nil {
		return err
	}
	if f.catalog != "" {
		cfg.Catalog.Path = f.catalog
	}
	if f.limit >= 0 {
		cfg.Rank.Limit = f.limit
	}
	if f.pipeline != "" {
		cfg.Pipeline.Path = f.pipeline
	}

	logging.Init(cfg.Log)
	logger := logging.Component("cli")

	loader, kv, err := newLoader(ctx, cfg.Catalog)
	if err != nil {
		return err
	}
	if kv != nil {
		defer kv.Close()
	}

	if f.importPath != "" {
		return importCatalog(ctx, f.importPath, kv, cfg.Catalog, logger)
	}

	items, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	logger.Debug().Int("items", len(items)).Msg("catalog loaded")

	svc, err := newService(cfg, kv, logger)
	if err != nil {
		return err
	}

	uctx := core.UserContext{
		SelectedMood:        f.mood,
		MoodIntensity:       f.intensity,
		SelectedCravings:    splitList(f.cravings),
		TastePreferences:    toSet(splitList(f.tastes)),
		DietaryRestrictions: core.DietaryRestrictionsFrom(toSet(splitList(f.restrictions))),
		ExcludedItems:       splitList(f.exclude),
	}
	res, err := svc.Recommend(ctx, items, uctx)
	if err != nil {
		return err
	}
	if len(res.Items) == 0 {
		logger.Info().
			Int("catalog", res.CatalogSize).
			Int("eligible", res.EligibleCount).
			Msg("no matching recommendations")
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Fprintln(os.Stdout, string(out))
	return err
}

func newLoader(ctx context.Context, cfg appconfig.CatalogConfig) (catalog.Loader, core.KeyValueStore, error) {
	if cfg.RedisAddr != "" {
		rs, err := store.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisDB, store.WithPrefix(cfg.RedisPrefix))
		if err != nil {
			return nil, nil, err
		}
		kv := store.NewBreakerStore(rs, store.BreakerConfig{
			FailureThreshold: cfg.BreakerFailures,
			Timeout:          cfg.BreakerTimeout,
			Logger:           logging.Component("store"),
		})
		if cfg.RedisHash {
			return &catalog.HashLoader{Store: kv, Key: cfg.RedisKey}, kv, nil
		}
		return &catalog.StoreLoader{Store: kv, Key: cfg.RedisKey}, kv, nil
	}
	if cfg.Path == "" {
		return nil, nil, errors.New("no catalog source: set catalog.path or catalog.redis_addr")
	}
	return &catalog.FileLoader{Path: cfg.Path}, nil, nil
}

//nolint:gocritic // zerolog.Logger 按值传递
func importCatalog(ctx context.Context, path string, kv core.KeyValueStore, cfg appconfig.CatalogConfig, logger zerolog.Logger) error {
	if kv == nil {
		return errors.New("-import needs catalog.redis_addr")
	}
	items, err := (&catalog.FileLoader{Path: path}).Load(ctx)
	if err != nil {
		return err
	}
	if cfg.RedisHash {
		err = catalog.SaveHash(ctx, kv, cfg.RedisKey, items)
	} else {
		err = catalog.Save(ctx, kv, cfg.RedisKey, items)
	}
	if err != nil {
		return fmt.Errorf("import catalog: %w", err)
	}
	logger.Info().Str("key", cfg.RedisKey).Bool("hash", cfg.RedisHash).Int("items", len(items)).Msg("catalog imported")
	return nil
}

//nolint:gocritic // zerolog.Logger 按值传递
func newService(cfg *appconfig.Config, kv core.KeyValueStore, logger zerolog.Logger) (*recommend.Service, error) {
	var explainer *explain.Explainer
	if cfg.Explain.Enabled {
		explainer = explain.NewSeeded(cfg.Explain.Seed)
	}
	opts := []recommend.Option{
		recommend.WithLogger(logger),
		recommend.WithMaxConcurrent(cfg.Batch.MaxConcurrent),
	}

	if cfg.Pipeline.Path == "" {
		settings := recommend.Settings{
			Weights:   cfg.Rank.Weights,
			MinScore:  cfg.Rank.MinScore,
			Limit:     cfg.Rank.Limit,
			Explainer: explainer,
		}
		if cfg.Rank.ModelPath != "" {
			m, err := model.LoadWeightedModel(cfg.Rank.ModelPath)
			if err != nil {
				return nil, err
			}
			settings.Model = m
		}
		if kv != nil {
			settings.Store = kv
			settings.BlacklistKey = cfg.Catalog.BlacklistKey
			settings.BloomKey = cfg.Catalog.BloomKey
		}
		return recommend.New(append(opts, recommend.WithSettings(settings))...), nil
	}

	pcfg, err := pipeline.Load(cfg.Pipeline.Path)
	if err != nil {
		return nil, err
	}
	if err := config.ValidatePipelineConfig(pcfg); err != nil {
		return nil, err
	}
	p, err := pcfg.BuildPipeline(builders.Factory(builders.Deps{
		Store:     kv,
		Explainer: explainer,
		Logger:    logger,
	}))
	if err != nil {
		return nil, err
	}
	logger.Info().Strs("nodes", p.NodeNames()).Msg("pipeline loaded")
	return recommend.New(append(opts, recommend.WithPipeline(p))...), nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func toSet(list []string) map[string]bool {
	if len(list) == 0 {
		return nil
	}
	m := make(map[string]bool, len(list))
	for _, v := range list {
		m[v] = true
	}
	return m
}

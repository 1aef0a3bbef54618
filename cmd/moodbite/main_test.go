package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rushteam/moodbite/appconfig"
	"github.com/rushteam/moodbite/catalog"
	"github.com/rushteam/moodbite/core"
	"github.com/rushteam/moodbite/model"
	"github.com/rushteam/moodbite/rank"
	"github.com/rushteam/moodbite/store"
)

const catalogJSON = `[
  {"id": 1, "name": "Ramen", "cuisine": "Japanese", "moods": ["sad"], "cravings": ["comfort"],
   "taste_profile": ["savory"], "dietary_info": {"dairy_free": true}},
  {"id": 2, "name": "Sundae", "cuisine": "American", "moods": ["happy"], "cravings": ["sweet-treat"],
   "taste_profile": ["sweet"], "dietary_info": {"vegetarian": true}}
]`

func TestSplitList(t *testing.T) {
	if got := splitList(" a, ,b ,"); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("splitList() = %v", got)
	}
	if splitList("  ") != nil {
		t.Error("blank input should be nil")
	}
	if m := toSet([]string{"x"}); !m["x"] || toSet(nil) != nil {
		t.Errorf("toSet() = %v", m)
	}
}

func TestNewLoader(t *testing.T) {
	ctx := context.Background()
	if _, _, err := newLoader(ctx, appconfig.CatalogConfig{}); err == nil {
		t.Error("expected error without a catalog source")
	}
	l, kv, err := newLoader(ctx, appconfig.CatalogConfig{Path: "foods.json"})
	if err != nil || kv != nil {
		t.Fatalf("newLoader() = %v, %v, %v", l, kv, err)
	}
	if fl, ok := l.(*catalog.FileLoader); !ok || fl.Path != "foods.json" {
		t.Errorf("loader = %#v", l)
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "foods.json")
	if err := os.WriteFile(path, []byte(catalogJSON), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv(appconfig.PathEnvVar, "")
	t.Setenv("MOODBITE_LOG_LEVEL", "disabled")

	devnull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer devnull.Close()
	stdout := os.Stdout
	os.Stdout = devnull
	defer func() { os.Stdout = stdout }()

	err = run(context.Background(), []string{"-catalog", path, "-mood", "sad", "-intensity", "7",
		"-cravings", "comfort", "-restrictions", "dairy_free"})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	err = run(context.Background(), []string{"-catalog", path})
	if !errors.Is(err, core.ErrMoodRequired) {
		t.Errorf("run() without mood = %v", err)
	}

	err = run(context.Background(), []string{"-catalog", path, "-mood", "sad", "-restrictions", "vegan,glutenfree"})
	if !core.IsInvalidInput(err) || !strings.Contains(err.Error(), `"glutenfree"`) {
		t.Errorf("run() with unknown restriction = %v", err)
	}

	err = run(context.Background(), []string{"-catalog", path, "-import", path})
	if err == nil || !strings.Contains(err.Error(), "redis_addr") {
		t.Errorf("run() -import without redis = %v", err)
	}
}

func TestImportCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "foods.json")
	if err := os.WriteFile(path, []byte(catalogJSON), 0o600); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	ms := store.NewMemoryStore()
	defer ms.Close()

	for _, hash := range []bool{false, true} {
		cfg := appconfig.CatalogConfig{RedisKey: "catalog", RedisHash: hash}
		if err := importCatalog(ctx, path, ms, cfg, zerolog.Nop()); err != nil {
			t.Fatalf("hash=%v: %v", hash, err)
		}
		var l catalog.Loader = &catalog.StoreLoader{Store: ms, Key: "catalog"}
		if hash {
			l = &catalog.HashLoader{Store: ms, Key: "catalog"}
		}
		items, err := l.Load(ctx)
		if err != nil || len(items) == 0 {
			t.Errorf("hash=%v: Load() = %d items, %v", hash, len(items), err)
		}
	}
}

func TestNewService_ModelPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")
	if err := os.WriteFile(path, []byte(`{"bias": 0.2, "weights": {"mood_match": 0.5}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := appconfig.Default()
	cfg.Rank.ModelPath = path
	svc, err := newService(&cfg, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("newService() error = %v", err)
	}
	node, ok := svc.Pipeline().Nodes[1].(*rank.MoodNode)
	if !ok {
		t.Fatalf("Nodes[1] = %T", svc.Pipeline().Nodes[1])
	}
	m, ok := node.Model.(*model.WeightedModel)
	if !ok || m.Bias != 0.2 || m.Weights["mood_match"] != 0.5 {
		t.Errorf("Model = %+v", node.Model)
	}

	cfg.Rank.ModelPath = filepath.Join(dir, "missing.json")
	if _, err := newService(&cfg, nil, zerolog.Nop()); err == nil {
		t.Error("newService() with missing model should fail")
	}
}

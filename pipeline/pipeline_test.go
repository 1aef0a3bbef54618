package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rushteam/moodbite/core"
)

type dropFirst struct{}

func (dropFirst) Name() string { return "test.drop_first" }
func (dropFirst) Kind() Kind   { return KindFilter }
func (dropFirst) Process(_ context.Context, _ *core.UserContext, items []*core.Item) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	return items[1:], nil
}

type failing struct{}

func (failing) Name() string { return "test.failing" }
func (failing) Kind() Kind   { return KindRank }
func (failing) Process(context.Context, *core.UserContext, []*core.Item) ([]*core.Item, error) {
	return nil, errors.New("boom")
}

func TestPipeline_Run(t *testing.T) {
	var calls []string
	p := &Pipeline{
		Nodes: []Node{dropFirst{}, dropFirst{}},
		Hooks: []Hook{func(_ context.Context, n Node, in, out int, err error) {
			if err != nil {
				t.Errorf("unexpected err %v", err)
			}
			calls = append(calls, n.Name())
			if out != in-1 {
				t.Errorf("in=%d out=%d", in, out)
			}
		}},
	}
	items := core.NewItems([]core.FoodItem{{ID: "1"}, {ID: "2"}, {ID: "3"}})

	out, err := p.Run(context.Background(), &core.UserContext{}, items)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].Food.ID != "3" {
		t.Errorf("out = %v", out)
	}
	if len(calls) != 2 {
		t.Errorf("hook calls = %v", calls)
	}
	if names := p.NodeNames(); strings.Join(names, ",") != "test.drop_first,test.drop_first" {
		t.Errorf("NodeNames() = %v", names)
	}
}

func TestPipeline_RunError(t *testing.T) {
	p := &Pipeline{Nodes: []Node{dropFirst{}, failing{}}}
	_, err := p.Run(context.Background(), nil, core.NewItems([]core.FoodItem{{ID: "1"}}))
	if err == nil || !strings.Contains(err.Error(), "test.failing") {
		t.Errorf("err = %v, want wrapped with node name", err)
	}
}

func TestPipeline_RunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &Pipeline{Nodes: []Node{dropFirst{}}}
	if _, err := p.Run(ctx, nil, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
pipeline:
  name: moodbite
  nodes:
    - type: filter.dietary
    - type: rank.mood
      config:
        weights:
          mood_match: 0.5
    - type: rerank.threshold
      config:
        min_score: 0.2
`)
	cfg, err := ParseYAML(data)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Pipeline.Name != "moodbite" || len(cfg.Pipeline.Nodes) != 3 {
		t.Fatalf("cfg = %+v", cfg.Pipeline)
	}
	if cfg.Pipeline.Nodes[1].Type != "rank.mood" {
		t.Errorf("node 1 = %s", cfg.Pipeline.Nodes[1].Type)
	}
	if _, ok := cfg.Pipeline.Nodes[1].Config["weights"].(map[string]any); !ok {
		t.Errorf("weights decoded as %T", cfg.Pipeline.Nodes[1].Config["weights"])
	}
}

func TestNodeFactory(t *testing.T) {
	f := NewNodeFactory()
	f.Register("drop", func(map[string]any) (Node, error) { return dropFirst{}, nil })

	cfg := &Config{}
	cfg.Pipeline.Nodes = []NodeConfig{{Type: "drop"}, {Type: "drop"}}
	p, err := cfg.BuildPipeline(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Nodes) != 2 {
		t.Errorf("len(Nodes) = %d", len(p.Nodes))
	}

	cfg.Pipeline.Nodes = append(cfg.Pipeline.Nodes, NodeConfig{Type: "missing"})
	_, err = cfg.BuildPipeline(f)
	if err == nil || !strings.Contains(err.Error(), "registered: drop") {
		t.Errorf("err = %v, want registered types listed", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "p.json")
	yamlPath := filepath.Join(dir, "p.yaml")
	if err := os.WriteFile(jsonPath, []byte(`{"pipeline":{"name":"j","nodes":[{"type":"rank.mood"}]}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(yamlPath, []byte("pipeline:\n  name: y\n  nodes:\n    - type: rank.mood\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	for path, name := range map[string]string{jsonPath: "j", yamlPath: "y"} {
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s) error = %v", path, err)
		}
		if cfg.Pipeline.Name != name || len(cfg.Pipeline.Nodes) != 1 {
			t.Errorf("Load(%s) = %+v", path, cfg.Pipeline)
		}
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := ParseJSON([]byte(`[`)); err == nil {
		t.Error("expected parse error")
	}
}

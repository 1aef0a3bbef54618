package recommend

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/rushteam/moodbite/core"
	"github.com/rushteam/moodbite/explain"
	"github.com/rushteam/moodbite/filter"
	"github.com/rushteam/moodbite/metrics"
	"github.com/rushteam/moodbite/model"
	"github.com/rushteam/moodbite/pipeline"
	"github.com/rushteam/moodbite/rank"
	"github.com/rushteam/moodbite/store"
)

func testCatalog() []core.FoodItem {
	return []core.FoodItem{
		{ID: "1", Name: "Mac and Cheese", Cuisine: "American", Moods: []string{"sad"},
			Cravings: []string{"comfort"}, TasteProfile: []string{"savory"},
			DietaryInfo: &core.DietaryInfo{Vegetarian: true}},
		{ID: "2", Name: "Tom Yum", Cuisine: "Thai", Moods: []string{"happy"},
			Cravings: []string{"spicy"}, TasteProfile: []string{"spicy", "sour"},
			DietaryInfo: &core.DietaryInfo{GlutenFree: true, DairyFree: true}},
		{ID: "3", Name: "Margherita", Cuisine: "Italian", Moods: []string{"happy", "nostalgic"},
			Cravings: []string{"comfort"}, TasteProfile: []string{"savory"},
			DietaryInfo: &core.DietaryInfo{Vegetarian: true}},
		{ID: "4", Name: "Steak", Cuisine: "American", Moods: []string{"energetic"},
			Cravings: []string{"hearty"}, TasteProfile: []string{"savory"}},
	}
}

func happyUser() core.UserContext {
	return core.UserContext{
		UserID:           "u1",
		SelectedMood:     "happy",
		MoodIntensity:    8,
		SelectedCravings: []string{"comfort"},
		TastePreferences: map[string]bool{"savory": true},
	}
}

func TestService_Validate(t *testing.T) {
	s := New()
	tests := []struct {
		name string
		uctx *core.UserContext
		want error
	}{
		{name: "nil", uctx: nil, want: core.ErrMoodRequired},
		{name: "no mood", uctx: &core.UserContext{MoodIntensity: 5}, want: core.ErrMoodRequired},
		{name: "blank mood", uctx: &core.UserContext{SelectedMood: "  ", MoodIntensity: 5}, want: core.ErrMoodRequired},
		{name: "intensity zero", uctx: &core.UserContext{SelectedMood: "happy"}, want: ErrInvalidIntensity},
		{name: "intensity too high", uctx: &core.UserContext{SelectedMood: "happy", MoodIntensity: 11}, want: ErrInvalidIntensity},
		{name: "ok", uctx: &core.UserContext{SelectedMood: "happy", MoodIntensity: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Validate(tt.uctx)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if !core.IsInvalidInput(err) {
				t.Errorf("err should be INVALID_INPUT")
			}
		})
	}
}

func TestService_Recommend(t *testing.T) {
	s := New()
	res, err := s.Recommend(context.Background(), testCatalog(), happyUser())
	if err != nil {
		t.Fatal(err)
	}
	if res.CatalogSize != 4 || res.EligibleCount != 4 {
		t.Errorf("sizes = %d/%d", res.CatalogSize, res.EligibleCount)
	}

	want := rank.Rank(testCatalog(), happyUser())
	if len(res.Items) != len(want) {
		t.Fatalf("len = %d, want %d", len(res.Items), len(want))
	}
	for i := range want {
		got := res.Items[i]
		if got.ID != want[i].ID || got.Score != want[i].Score {
			t.Errorf("%d: got %s/%v, want %s/%v", i, got.ID, got.Score, want[i].ID, want[i].Score)
		}
		if got.Explanation == "" {
			t.Errorf("%d: missing explanation", i)
		}
		if len(got.Features) != 3 {
			t.Errorf("%d: features = %v", i, got.Features)
		}
	}
	if res.Items[0].ID != "3" {
		t.Errorf("top = %s, want 3", res.Items[0].ID)
	}

	again, _ := s.Recommend(context.Background(), testCatalog(), happyUser())
	if res.RequestID == "" || res.RequestID == again.RequestID {
		t.Errorf("request ids %q / %q should be set and unique", res.RequestID, again.RequestID)
	}
}

func TestService_RecommendRejectsMissingMood(t *testing.T) {
	before := testutil.ToFloat64(metrics.RecommendRequests.WithLabelValues(metrics.OutcomeRejected))

	uctx := happyUser()
	uctx.SelectedMood = ""
	res, err := New().Recommend(context.Background(), testCatalog(), uctx)
	if !errors.Is(err, core.ErrMoodRequired) || res != nil {
		t.Fatalf("Recommend() = %v, %v", res, err)
	}

	after := testutil.ToFloat64(metrics.RecommendRequests.WithLabelValues(metrics.OutcomeRejected))
	if after != before+1 {
		t.Errorf("rejected counter %v -> %v", before, after)
	}
}

func TestService_EligibleCount(t *testing.T) {
	uctx := happyUser()
	uctx.DietaryRestrictions = core.DietaryRestrictions{Vegetarian: true}
	uctx.ExcludedItems = []string{"1"}

	res, err := New().Recommend(context.Background(), testCatalog(), uctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.CatalogSize != 4 || res.EligibleCount != 1 {
		t.Errorf("sizes = %d/%d, want 4/1", res.CatalogSize, res.EligibleCount)
	}
	if len(res.Items) != 1 || res.Items[0].ID != "3" {
		t.Errorf("items = %+v", res.Items)
	}
}

func TestService_EmptyResultIsNotError(t *testing.T) {
	uctx := happyUser()
	uctx.DietaryRestrictions = core.DietaryRestrictions{Vegan: true}

	res, err := New().Recommend(context.Background(), testCatalog(), uctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Items == nil || len(res.Items) != 0 || res.EligibleCount != 0 {
		t.Errorf("res = %+v", res)
	}

	res, err = New().Recommend(context.Background(), nil, happyUser())
	if err != nil || res.CatalogSize != 0 || len(res.Items) != 0 {
		t.Errorf("empty catalog: %+v, %v", res, err)
	}
}

func TestService_Settings(t *testing.T) {
	ctx := context.Background()
	ms := store.NewMemoryStore()
	defer ms.Close()
	if err := filter.NewStoreAdapter(ms).PutBlacklist(ctx, "bl", []string{"3"}); err != nil {
		t.Fatal(err)
	}
	if err := filter.SaveBloom(ctx, ms, "bloom", filter.BuildBloom([]string{"1"}, 1000, 0.0001)); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	s := New(
		WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)),
		WithSettings(Settings{
			Weights:      rank.DefaultWeights(),
			MinScore:     rank.DefaultMinScore,
			Limit:        1,
			Store:        ms,
			BlacklistKey: "bl",
			BloomKey:     "bloom",
		}),
	)
	res, err := s.Recommend(ctx, testCatalog(), happyUser())
	if err != nil {
		t.Fatal(err)
	}
	// 3 在黑名单，1 在布隆过滤器中，剩余最高分为 2
	if len(res.Items) != 1 || res.Items[0].ID != "2" {
		t.Errorf("items = %+v", res.Items)
	}
	if res.EligibleCount != 2 {
		t.Errorf("eligible = %d, want 2", res.EligibleCount)
	}
	if res.Items[0].Explanation != "" {
		t.Error("explainer disabled, explanation should be empty")
	}
	if !strings.Contains(buf.String(), `"component":"recommend"`) {
		t.Errorf("log output = %s", buf.String())
	}
}

func TestService_WithPipeline(t *testing.T) {
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{rank.NewMoodNode(rank.DefaultWeights())}}
	s := New(WithPipeline(p))
	if len(p.Hooks) != 0 {
		t.Error("New must not modify the caller's pipeline")
	}
	res, err := s.Recommend(context.Background(), testCatalog(), happyUser())
	if err != nil {
		t.Fatal(err)
	}
	// 没有过滤与阈值 Node：全部菜品参与排序
	if len(res.Items) != 4 || res.EligibleCount != 4 {
		t.Errorf("items = %d, eligible = %d", len(res.Items), res.EligibleCount)
	}
}

func TestService_RecommendBatch(t *testing.T) {
	s := New(WithMaxConcurrent(2), WithSettings(Settings{
		Weights:   rank.DefaultWeights(),
		MinScore:  rank.DefaultMinScore,
		Explainer: explain.NewSeeded(1),
	}))

	reqs := make([]core.UserContext, 0, 12)
	for i := 0; i < 10; i++ {
		reqs = append(reqs, happyUser())
	}
	reqs = append(reqs, core.UserContext{MoodIntensity: 5})
	sad := happyUser()
	sad.SelectedMood = "sad"
	reqs = append(reqs, sad)

	out, err := s.RecommendBatch(context.Background(), testCatalog(), reqs)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(reqs) {
		t.Fatalf("len = %d", len(out))
	}
	for i := 0; i < 10; i++ {
		if out[i].Err != nil || out[i].Result.Items[0].ID != "3" {
			t.Errorf("req %d: %+v", i, out[i])
		}
	}
	if !errors.Is(out[10].Err, core.ErrMoodRequired) {
		t.Errorf("req 10 err = %v", out[10].Err)
	}
	if out[11].Err != nil || out[11].Result.Items[0].ID != "1" {
		t.Errorf("req 11: %+v", out[11])
	}
}

func TestService_RecommendBatchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().RecommendBatch(ctx, testCatalog(), []core.UserContext{happyUser()})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}

func TestMoodLabel(t *testing.T) {
	if moodLabel("happy") != "happy" || moodLabel("hangry") != "other" {
		t.Error("moodLabel mismatch")
	}
}

func TestService_SettingsModel(t *testing.T) {
	m := &model.WeightedModel{Bias: 0.5, Weights: map[string]float64{core.FeatureMoodMatch: 0}}
	s := New(WithSettings(Settings{Model: m, MinScore: rank.DefaultMinScore}))
	if node, ok := s.Pipeline().Nodes[1].(*rank.MoodNode); !ok || node.Model != m {
		t.Fatalf("rank node = %#v", s.Pipeline().Nodes[1])
	}

	res, err := s.Recommend(context.Background(), testCatalog(), happyUser())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Items) != 4 {
		t.Fatalf("len = %d, want 4", len(res.Items))
	}
	for _, it := range res.Items {
		// 只有 bias 计分，未命中心情的菜品恰为 0.5
		if it.ID == "1" && it.Score != 0.5 {
			t.Errorf("item 1 score = %v, want 0.5", it.Score)
		}
	}
}

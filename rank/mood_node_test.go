package rank

import (
	"context"
	"testing"

	"github.com/rushteam/moodbite/core"
	"github.com/rushteam/moodbite/pkg/utils"
)

func TestMoodNode_Process(t *testing.T) {
	items := core.NewItems(sampleCatalog())
	uctx := &core.UserContext{
		SelectedMood:     "sad",
		MoodIntensity:    10,
		SelectedCravings: []string{"comfort"},
		TastePreferences: map[string]bool{"savory": true},
	}

	out, err := NewMoodNode(DefaultWeights()).Process(context.Background(), uctx, items)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(out) != len(items) {
		t.Fatalf("rank node must not drop items: got %d, want %d", len(out), len(items))
	}
	for i := 1; i < len(out); i++ {
		if out[i-1].Score < out[i].Score {
			t.Fatalf("not sorted at %d", i)
		}
	}

	top := out[0]
	if top.Food.ID != "1" {
		t.Errorf("top = %s, want 1", top.Food.ID)
	}
	if !approx(top.Score, 1.2) {
		t.Errorf("top score = %v, want 1.2", top.Score)
	}
	if top.Features[core.FeatureMoodMatch] != 1 || top.Features[core.FeatureCravingMatch] != 1 {
		t.Errorf("features = %v", top.Features)
	}
	if lbl, ok := top.Labels[utils.LabelMoodMatch]; !ok || lbl.Value != "sad" {
		t.Errorf("mood_match label = %+v, %v", lbl, ok)
	}
	if lbl := top.Labels[utils.LabelIntensity]; lbl.Value != "1.2" {
		t.Errorf("intensity label = %q, want 1.2", lbl.Value)
	}
	if lbl := top.Labels[utils.LabelRankModel]; lbl.Value != "weighted" {
		t.Errorf("rank_model label = %q", lbl.Value)
	}

	for _, it := range out {
		if it.Features[core.FeatureMoodMatch] == 0 {
			if _, ok := it.Labels[utils.LabelIntensity]; ok {
				t.Errorf("item %s: intensity label without mood match", it.Food.ID)
			}
		}
	}
}

func TestMoodNode_MatchesRank(t *testing.T) {
	catalog := sampleCatalog()
	uctx := core.UserContext{
		SelectedMood:     "happy",
		MoodIntensity:    7,
		SelectedCravings: []string{"spicy", "comfort"},
		TastePreferences: map[string]bool{"spicy": true, "savory": true},
	}

	out, err := (&MoodNode{}).Process(context.Background(), &uctx, core.NewItems(catalog))
	if err != nil {
		t.Fatal(err)
	}
	want := Rank(catalog, uctx)

	kept := out[:0]
	for _, it := range out {
		if it.Score > DefaultMinScore {
			kept = append(kept, it)
		}
	}
	if len(kept) != len(want) {
		t.Fatalf("len = %d, want %d", len(kept), len(want))
	}
	for i := range want {
		if kept[i].Food.ID != want[i].ID || kept[i].Score != want[i].Score {
			t.Errorf("%d: got %s/%v, want %s/%v", i, kept[i].Food.ID, kept[i].Score, want[i].ID, want[i].Score)
		}
	}
}

func TestMoodNode_Empty(t *testing.T) {
	out, err := NewMoodNode(DefaultWeights()).Process(context.Background(), nil, nil)
	if err != nil || len(out) != 0 {
		t.Errorf("Process(nil) = %v, %v", out, err)
	}
}

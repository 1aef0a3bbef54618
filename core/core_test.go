package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/goccy/go-json"

	"github.com/rushteam/moodbite/pkg/utils"
)

func TestItemID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    ItemID
		wantErr bool
	}{
		{in: `12`, want: "12"},
		{in: `"12"`, want: "12"},
		{in: `"pad-thai"`, want: "pad-thai"},
		{in: `null`, want: ""},
		{in: `1.5`, want: "1.5"},
		{in: `true`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var id ItemID
			err := json.Unmarshal([]byte(tt.in), &id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && id != tt.want {
				t.Errorf("id = %q, want %q", id, tt.want)
			}
		})
	}
}

func TestDietaryInfo_Has(t *testing.T) {
	var nilInfo *DietaryInfo
	for _, r := range Restrictions {
		if nilInfo.Has(r) {
			t.Errorf("nil DietaryInfo.Has(%s) = true", r)
		}
	}
	info := &DietaryInfo{Vegan: true, NutFree: true}
	if !info.Has(RestrictionVegan) || !info.Has(RestrictionNutFree) || info.Has(RestrictionGlutenFree) {
		t.Errorf("Has() mismatch for %+v", info)
	}
	if info.Has("keto") {
		t.Error("unknown restriction should be false")
	}
}

func TestDietaryRestrictionsFrom(t *testing.T) {
	r := DietaryRestrictionsFrom(map[string]bool{
		"vegetarian": true,
		"glutenFree": true,
		"nut_free":   true,
		"vegan":      false,
		"keto":       true,
	})
	want := DietaryRestrictions{Vegetarian: true, GlutenFree: true, NutFree: true}
	if r != want {
		t.Errorf("got %+v, want %+v", r, want)
	}
	if got := r.Enabled(); fmt.Sprint(got) != "[vegetarian gluten_free nut_free]" {
		t.Errorf("Enabled() = %v", got)
	}
}

func TestIsRestriction(t *testing.T) {
	for _, name := range append([]string{"glutenFree", "dairyFree", "nutFree"}, Restrictions...) {
		if !IsRestriction(name) {
			t.Errorf("IsRestriction(%q) = false", name)
		}
	}
	for _, name := range []string{"glutenfree", "keto", "", "Vegan"} {
		if IsRestriction(name) {
			t.Errorf("IsRestriction(%q) = true", name)
		}
	}
}

func TestUserContext_SelectedTastes(t *testing.T) {
	u := &UserContext{TastePreferences: map[string]bool{"sweet": true, "bitter": false, "salty": true}}
	if got := fmt.Sprint(u.SelectedTastes()); got != "[salty sweet]" {
		t.Errorf("SelectedTastes() = %s", got)
	}
	if (&UserContext{}).SelectedTastes() != nil {
		t.Error("empty preferences should yield nil")
	}
}

func TestUserContext_JSON(t *testing.T) {
	data := []byte(`{"selectedMood":"happy","moodIntensity":7,"selectedCravings":["spicy"],
		"tastePreferences":{"sweet":true},"dietaryRestrictions":{"glutenFree":true}}`)
	var u UserContext
	if err := json.Unmarshal(data, &u); err != nil {
		t.Fatal(err)
	}
	if u.SelectedMood != "happy" || u.MoodIntensity != 7 || !u.DietaryRestrictions.GlutenFree {
		t.Errorf("decoded %+v", u)
	}
}

func TestClone(t *testing.T) {
	f := FoodItem{ID: "1", Moods: []string{"happy"}, DietaryInfo: &DietaryInfo{Vegan: true}}
	c := f.Clone()
	c.Moods[0] = "sad"
	c.DietaryInfo.Vegan = false
	if f.Moods[0] != "happy" || !f.DietaryInfo.Vegan {
		t.Error("FoodItem.Clone is shallow")
	}

	u := UserContext{SelectedCravings: []string{"a"}, TastePreferences: map[string]bool{"x": true}}
	uc := u.Clone()
	uc.SelectedCravings[0] = "b"
	uc.TastePreferences["x"] = false
	if u.SelectedCravings[0] != "a" || !u.TastePreferences["x"] {
		t.Error("UserContext.Clone is shallow")
	}
}

func TestItem(t *testing.T) {
	food := FoodItem{ID: "1", Moods: []string{"happy"}}
	it := NewItem(food)
	it.Food.Moods[0] = "sad"
	if food.Moods[0] != "happy" {
		t.Error("NewItem must copy the food")
	}
	it.Score = 0.7
	if s := it.Scored(); s.ID != "1" || s.Score != 0.7 {
		t.Errorf("Scored() = %+v", s)
	}

	data, err := json.Marshal(it.Scored())
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if m["id"] != "1" || m["score"] != 0.7 {
		t.Errorf("ScoredFoodItem JSON = %s", data)
	}
}

func TestDomainError(t *testing.T) {
	wrapped := fmt.Errorf("recommend: %w", ErrMoodRequired)
	if !errors.Is(wrapped, ErrMoodRequired) {
		t.Error("errors.Is should see through wrapping")
	}
	if !IsInvalidInput(wrapped) || IsNotFound(wrapped) {
		t.Error("code helpers mismatch")
	}

	other := NewDomainError(ModuleRecommend, ErrorCodeInvalidInput, "something else")
	if errors.Is(other, ErrMoodRequired) {
		t.Error("different message should not match")
	}
	if !errors.Is(other, &DomainError{Module: ModuleRecommend, Code: ErrorCodeInvalidInput}) {
		t.Error("target without message should match by module and code")
	}

	nf := fmt.Errorf("get: %w", ErrStoreNotFound)
	if !IsStoreNotFound(nf) || !IsNotFound(nf) || IsStoreNotFound(ErrMoodRequired) {
		t.Error("store helpers mismatch")
	}
	if GetDomainError(errors.New("plain")) != nil || IsDomainError(nil) {
		t.Error("plain errors are not domain errors")
	}
}

func TestUserContext_Labels(t *testing.T) {
	var nilCtx *UserContext
	if _, ok := nilCtx.GetLabel("x"); ok {
		t.Error("nil context has no labels")
	}

	u := &UserContext{}
	u.PutLabel("channel", utils.Label{Value: "app", Source: "client"})
	u.PutLabel("channel", utils.Label{Value: "web", Source: "client"})
	lbl, ok := u.GetLabel("channel")
	if !ok || lbl.Value != "app|web" || lbl.Source != "client" {
		t.Errorf("GetLabel() = %+v, %v", lbl, ok)
	}

	c := u.Clone()
	c.PutLabel("channel", utils.Label{Value: "tv"})
	if lbl, _ := u.GetLabel("channel"); lbl.Value != "app|web" {
		t.Errorf("Clone shares labels: %+v", lbl)
	}
}

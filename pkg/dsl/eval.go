package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/moodbite/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("user", cel.DynType),
		// 允许 item.calories < 500 这类 double 与 int 的比较
		cel.CrossTypeNumericComparisons(true),
	)
}

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Program 是编译后的规则表达式，使用 CEL (Common Expression Language)。
// 编译一次，可并发地对多个 item 求值。
//
// 可用变量：
//   - item.id / item.name / item.cuisine
//   - item.moods / item.cravings / item.taste_profile（list）
//   - item.calories / item.protein / item.carbs / item.fat（double）、item.prep_time（int）
//   - item.dietary.vegan 等（bool）、item.score、item.features
//   - user.mood / user.intensity / user.cravings / user.tastes
//   - user.labels：请求级 Label 的值（map），例如 user.labels["channel"]
//
// 示例：
//   - `item.cuisine == "Italian"`
//   - `item.prep_time <= 20 && "spicy" in item.taste_profile`
//   - `user.mood in item.moods`
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式。表达式必须返回 bool。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	if t := ast.OutputType(); !t.IsExactType(cel.BoolType) && !t.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression must return bool, got %s", t)
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// String 返回原始表达式。
func (p *Program) String() string { return p.expr }

// Eval 对单个 item 求值。
func (p *Program) Eval(item *core.Item, uctx *core.UserContext) (bool, error) {
	out, _, err := p.prg.Eval(map[string]any{
		"item": itemInput(item),
		"user": userInput(uctx),
	})
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// itemInput 构建 item 变量。nil 切片统一替换为空列表，避免 CEL 访问 null。
func itemInput(item *core.Item) map[string]any {
	if item == nil {
		return map[string]any{}
	}
	f := item.Food
	dietary := map[string]any{}
	for _, r := range core.Restrictions {
		dietary[r] = f.DietaryInfo.Has(r)
	}
	features := item.Features
	if features == nil {
		features = map[string]float64{}
	}
	return map[string]any{
		"id":            f.ID.String(),
		"name":          f.Name,
		"cuisine":       f.Cuisine,
		"moods":         nonNil(f.Moods),
		"cravings":      nonNil(f.Cravings),
		"taste_profile": nonNil(f.TasteProfile),
		"ingredients":   nonNil(f.Ingredients),
		"calories":      f.Calories,
		"protein":       f.Protein,
		"carbs":         f.Carbs,
		"fat":           f.Fat,
		"prep_time":     int64(f.PrepTime),
		"dietary":       dietary,
		"score":         item.Score,
		"features":      features,
	}
}

func userInput(uctx *core.UserContext) map[string]any {
	if uctx == nil {
		return map[string]any{
			"mood":      "",
			"intensity": int64(0),
			"cravings":  []string{},
			"tastes":    []string{},
			"labels":    map[string]string{},
		}
	}
	labels := make(map[string]string, len(uctx.Labels))
	for k, l := range uctx.Labels {
		labels[k] = l.Value
	}
	return map[string]any{
		"id":        uctx.UserID,
		"mood":      uctx.SelectedMood,
		"intensity": int64(uctx.MoodIntensity),
		"cravings":  nonNil(uctx.SelectedCravings),
		"tastes":    nonNil(uctx.SelectedTastes()),
		"labels":    labels,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

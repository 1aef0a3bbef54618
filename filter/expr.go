package filter

import (
	"context"

	"github.com/rushteam/moodbite/core"
	"github.com/rushteam/moodbite/pkg/dsl"
)

// ExprFilter 用 CEL 表达式描述的业务规则过滤菜品：表达式为 true 的菜品保留。
//
// 示例：
//   - `item.prep_time <= 30`
//   - `!("spicy" in item.taste_profile) || user.intensity >= 7`
type ExprFilter struct {
	program *dsl.Program
}

// NewExprFilter 编译表达式，语法错误在构建时返回。
func NewExprFilter(expr string) (*ExprFilter, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{program: prg}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

// Expr 返回规则表达式。
func (f *ExprFilter) Expr() string { return f.program.String() }

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	uctx *core.UserContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	keep, err := f.program.Eval(item, uctx)
	if err != nil {
		return false, err
	}
	return !keep, nil
}

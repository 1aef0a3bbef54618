// Package conv 从 YAML/JSON 解码出的 map[string]any 中读取强类型配置值。
//
// yaml.v3 把整数解码为 int，JSON 解码为 float64，同一个配置项在两种格式下类型不同，
// 读取数值时统一经过 ToFloat64。
package conv

import (
	"strconv"
)

// ToFloat64 将 any 转为 float64，支持各类整数、浮点与数字字符串。
func ToFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint64:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	}
	return 0, false
}

// Get 按 key 取 T，缺失或类型不符时返回 def。
func Get[T any](m map[string]any, key string, def T) T {
	if t, ok := m[key].(T); ok {
		return t
	}
	return def
}

// Float 取浮点数，兼容整数写法（如 min_score: 0）。
func Float(m map[string]any, key string, def float64) float64 {
	if f, ok := ToFloat64(m[key]); ok {
		return f
	}
	return def
}

// Int 取整数，小数部分截断。
func Int(m map[string]any, key string, def int64) int64 {
	switch v := m[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case string:
		return def
	}
	if f, ok := ToFloat64(m[key]); ok {
		return int64(f)
	}
	return def
}

// Map 取嵌套配置（如 rank.mood 的 weights）。
func Map(m map[string]any, key string) map[string]any {
	sub, _ := m[key].(map[string]any)
	return sub
}

// Strings 把列表配置转为 []string。YAML 中的纯数字 ID（item_ids: [4, 12]）按整数格式化。
func Strings(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, e := range list {
			switch x := e.(type) {
			case string:
				out = append(out, x)
			case bool, nil:
			default:
				if f, ok := ToFloat64(x); ok {
					out = append(out, strconv.FormatFloat(f, 'f', -1, 64))
				}
			}
		}
		return out
	}
	return nil
}

// Package explain 为推荐结果生成一句话推荐理由。
//
// 理由文本只用于展示，不影响排序。形容词与句式模板的选择是均匀随机的，
// 随机源可注入，测试时传入固定种子即可得到确定结果。
package explain

import (
	"math/rand"
	"strings"
	"sync"

	"github.com/rushteam/moodbite/core"
)

// Rand 是随机源的最小抽象，*rand.Rand 满足该接口。
type Rand interface {
	// Intn 返回 [0, n) 内的随机整数，n > 0。
	Intn(n int) int
}

var moodQualities = map[string][]string{
	"happy":     {"vibrant", "colorful", "exciting"},
	"sad":       {"comforting", "warm", "hearty"},
	"stressed":  {"soothing", "simple", "familiar"},
	"relaxed":   {"light", "refreshing", "balanced"},
	"energetic": {"protein-rich", "nutrient-dense", "energizing"},
	"tired":     {"revitalizing", "easy-to-prepare", "comforting"},
	"bored":     {"novel", "exotic", "stimulating"},
	"nostalgic": {"traditional", "homestyle", "familiar"},
	"romantic":  {"elegant", "sensual", "indulgent"},
	"anxious":   {"calming", "easy-to-digest", "simple"},
}

var fallbackQualities = []string{"suitable", "appropriate", "matching"}

// MoodQualities 返回心情对应的三个菜品特质形容词；未知心情返回通用形容词。
// 返回的切片是副本。
func MoodQualities(mood string) []string {
	q, ok := moodQualities[mood]
	if !ok {
		q = fallbackQualities
	}
	out := make([]string, len(q))
	copy(out, q)
	return out
}

// Moods 返回内置形容词表支持的心情。
func Moods() []string {
	out := make([]string, 0, len(moodQualities))
	for m := range moodQualities {
		out = append(out, m)
	}
	return out
}

// template 用菜品、心情与随机选出的形容词拼出一句理由。
type template func(item *core.FoodItem, mood, quality string) string

var templates = []template{
	func(item *core.FoodItem, mood, quality string) string {
		return "This " + quality + " " + item.Cuisine + " dish is perfect for your " + mood + " mood."
	},
	func(item *core.FoodItem, mood, quality string) string {
		return "When you're feeling " + mood + ", a " + quality + " option like this " +
			item.Cuisine + " favorite can really hit the spot."
	},
	func(item *core.FoodItem, mood, _ string) string {
		return "The " + strings.Join(item.TasteProfile, " and ") +
			" flavors in this dish complement your " + mood + " mood wonderfully."
	},
	func(item *core.FoodItem, _, quality string) string {
		return "This " + item.Cuisine + " classic provides a " + quality +
			" experience that resonates with how you're feeling."
	},
}

// tasteTemplate 是依赖菜品口味的模板序号，菜品没有口味标签时不使用它。
const tasteTemplate = 2

// plainTemplates 是不依赖口味的模板序号。
var plainTemplates = []int{0, 1, 3}

// TemplateCount 是内置句式模板数量。
func TemplateCount() int { return len(templates) }

// Explainer 生成推荐理由。并发安全：随机源由互斥锁保护。
type Explainer struct {
	mu  sync.Mutex
	rnd Rand
}

// New 使用给定随机源创建 Explainer；rnd 为 nil 时以固定种子 1 初始化。
func New(rnd Rand) *Explainer {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(1)) //nolint:gosec // 展示文案，不需要密码学随机
	}
	return &Explainer{rnd: rnd}
}

// NewSeeded 使用固定种子创建 Explainer，相同种子产生相同序列。
func NewSeeded(seed int64) *Explainer {
	return New(rand.New(rand.NewSource(seed))) //nolint:gosec // 展示文案，不需要密码学随机
}

// Explain 为菜品生成一句推荐理由；mood 为空时返回空字符串。
func (e *Explainer) Explain(item core.FoodItem, mood string) string {
	if mood == "" {
		return ""
	}
	qualities := moodQualities[mood]
	if qualities == nil {
		qualities = fallbackQualities
	}

	e.mu.Lock()
	quality := qualities[e.rnd.Intn(len(qualities))]
	var index int
	if len(item.TasteProfile) > 0 {
		index = e.rnd.Intn(TemplateCount())
	} else {
		index = plainTemplates[e.rnd.Intn(len(plainTemplates))]
	}
	e.mu.Unlock()

	return Render(item, mood, quality, index)
}

// Render 用指定的形容词与模板序号生成理由，不消耗随机源。
// index 超出范围时按模板数取模；菜品没有口味标签时，口味模板顺延到下一个模板。
func Render(item core.FoodItem, mood, quality string, index int) string {
	if mood == "" {
		return ""
	}
	if index < 0 {
		index = -index
	}
	index %= TemplateCount()
	if index == tasteTemplate && len(item.TasteProfile) == 0 {
		index++
	}
	return templates[index](&item, mood, quality)
}

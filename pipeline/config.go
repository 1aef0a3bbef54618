package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Config 是 Pipeline 的声明式定义，YAML 与 JSON 结构相同：
//
//	pipeline:
//	  name: moodbite
//	  nodes:
//	    - type: filter.dietary
//	    - type: rank.mood
//	      config:
//	        weights: {mood_match: 0.4, craving_match: 0.3, taste_match: 0.3}
//	    - type: rerank.threshold
//	      config: {min_score: 0.1}
//	    - type: postprocess.explain
type Config struct {
	Pipeline struct {
		Name  string       `yaml:"name" json:"name"`
		Nodes []NodeConfig `yaml:"nodes" json:"nodes"`
	} `yaml:"pipeline" json:"pipeline"`
}

// NodeConfig 描述一个 Node：注册类型名加上该类型自己的参数。
type NodeConfig struct {
	Type   string         `yaml:"type" json:"type"`
	Config map[string]any `yaml:"config" json:"config"`
}

// Load 按扩展名读取 Pipeline 定义：.json 按 JSON 解析，其余按 YAML。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(data)
	}
	return ParseYAML(data)
}

// ParseYAML 解析 YAML 形式的 Pipeline 定义。
func ParseYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse pipeline yaml: %w", err)
	}
	return &cfg, nil
}

// ParseJSON 解析 JSON 形式的 Pipeline 定义。
func ParseJSON(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse pipeline json: %w", err)
	}
	return &cfg, nil
}

// BuildPipeline 按声明顺序构建各 Node。
func (c *Config) BuildPipeline(factory *NodeFactory) (*Pipeline, error) {
	nodes := make([]Node, 0, len(c.Pipeline.Nodes))
	for i, nc := range c.Pipeline.Nodes {
		node, err := factory.Build(nc.Type, nc.Config)
		if err != nil {
			return nil, fmt.Errorf("node %d (%s): %w", i, nc.Type, err)
		}
		nodes = append(nodes, node)
	}
	return &Pipeline{Nodes: nodes}, nil
}

// NodeFactory 把类型名映射到 NodeBuilder。非并发安全，构建完成后只读使用。
type NodeFactory struct {
	builders map[string]NodeBuilder
}

func NewNodeFactory() *NodeFactory {
	return &NodeFactory{builders: make(map[string]NodeBuilder)}
}

// Register 注册或覆盖一种 Node 类型。
func (f *NodeFactory) Register(nodeType string, builder NodeBuilder) {
	f.builders[nodeType] = builder
}

// Clone 复制一份 factory。
func (f *NodeFactory) Clone() *NodeFactory {
	c := &NodeFactory{builders: make(map[string]NodeBuilder, len(f.builders))}
	for t, b := range f.builders {
		c.builders[t] = b
	}
	return c
}

// Types 返回已注册的类型名（排序）。
func (f *NodeFactory) Types() []string {
	types := make([]string, 0, len(f.builders))
	for t := range f.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Build 构建一个 Node；类型未注册时返回错误并列出可用类型。
func (f *NodeFactory) Build(nodeType string, config map[string]any) (Node, error) {
	builder, ok := f.builders[nodeType]
	if !ok {
		return nil, fmt.Errorf("unknown node type %q (registered: %s)", nodeType, strings.Join(f.Types(), ", "))
	}
	if config == nil {
		config = map[string]any{}
	}
	return builder(config)
}

// Package config 维护 Node 类型注册表，用于从 YAML/JSON 配置构建 Pipeline。
//
// 内置 Node 在 config/builders 的 init 中注册，使用配置驱动时需要：
//
//	import _ "github.com/rushteam/moodbite/config/builders"
package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rushteam/moodbite/core"
	"github.com/rushteam/moodbite/pipeline"
)

// NodeBuilder 与 pipeline.NodeBuilder 一致：根据 config 构建 Node。
type NodeBuilder = pipeline.NodeBuilder

// registry 是进程级注册表；pipeline.NodeFactory 本身不加锁，这里统一加锁访问。
var registry = struct {
	sync.RWMutex
	f *pipeline.NodeFactory
}{f: pipeline.NewNodeFactory()}

// Register 注册一种 Node；类型名为空或 builder 为 nil 时忽略，同名后者覆盖前者。
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	registry.Lock()
	registry.f.Register(typeName, builder)
	registry.Unlock()
}

// SupportedTypes 返回已注册的类型名（排序）。
func SupportedTypes() []string {
	registry.RLock()
	defer registry.RUnlock()
	return registry.f.Types()
}

// DefaultFactory 返回注册表的快照，之后的 Register 不影响已返回的 factory。
func DefaultFactory() *pipeline.NodeFactory {
	registry.RLock()
	defer registry.RUnlock()
	return registry.f.Clone()
}

// ValidatePipelineConfig 检查每个 node 都声明了已注册的类型，一次返回全部问题。
// 错误链上第一个 DomainError 决定错误码。
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return nil
	}
	nodes := cfg.Pipeline.Nodes
	if len(nodes) == 0 {
		return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, "pipeline has no nodes")
	}

	registry.RLock()
	known := registry.f.Types()
	registry.RUnlock()
	isKnown := make(map[string]bool, len(known))
	for _, t := range known {
		isKnown[t] = true
	}

	var errs []error
	for i, nc := range nodes {
		switch {
		case nc.Type == "":
			errs = append(errs, core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput,
				fmt.Sprintf("node %d: missing type", i)))
		case !isKnown[nc.Type]:
			errs = append(errs, core.NewDomainError(core.ModuleConfig, core.ErrorCodeNotSupported,
				fmt.Sprintf("node %d: unsupported type %q (supported: %s)", i, nc.Type, strings.Join(known, ", "))))
		}
	}
	return errors.Join(errs...)
}

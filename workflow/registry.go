package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/akaoio/nodeflow/value"
)

// NodeRunner is a runnable node instance. Run receives the node's
// resolved inputs and returns its output value; a non-nil error marks
// the node execution as failed.
type NodeRunner interface {
	Run(ctx context.Context, inputs map[string]value.Value) (value.Value, error)
}

// RunnerFunc adapts a plain function to the NodeRunner interface.
type RunnerFunc func(ctx context.Context, inputs map[string]value.Value) (value.Value, error)

// Run implements NodeRunner.
func (f RunnerFunc) Run(ctx context.Context, inputs map[string]value.Value) (value.Value, error) {
	return f(ctx, inputs)
}

// Registry resolves a node type to a runnable instance. A "not found"
// error is an execution failure for that node, never a fatal engine
// error.
type Registry interface {
	CreateNode(nodeType string) (NodeRunner, error)
}

// StaticRegistry is an explicitly constructed, concurrency-safe Registry
// backed by a map of node type factories.
type StaticRegistry struct {
	mu        sync.RWMutex
	factories map[string]func() NodeRunner
}

// NewStaticRegistry creates an empty registry.
func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{factories: make(map[string]func() NodeRunner)}
}

// Register binds a node type to a factory. Registering the same type
// again replaces the previous factory.
func (r *StaticRegistry) Register(nodeType string, factory func() NodeRunner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[nodeType] = factory
}

// RegisterFunc binds a node type to a function-backed runner.
func (r *StaticRegistry) RegisterFunc(nodeType string, fn RunnerFunc) {
	r.Register(nodeType, func() NodeRunner { return fn })
}

// CreateNode implements Registry.
func (r *StaticRegistry) CreateNode(nodeType string) (NodeRunner, error) {
	r.mu.RLock()
	factory, ok := r.factories[nodeType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("node type not found: %s", nodeType)
	}
	return factory(), nil
}

// Types returns the registered node types.
func (r *StaticRegistry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	return types
}

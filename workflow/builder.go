package workflow

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/akaoio/nodeflow/value"
)

// Builder provides a fluent API for constructing workflow definitions
type Builder struct {
	def    *Definition
	logger *zap.Logger
}

// NewBuilder creates a new workflow builder with the given id and name
func NewBuilder(id, name string) *Builder {
	return &Builder{
		def:    NewDefinition(id, name),
		logger: zap.NewNop(),
	}
}

// WithDescription sets the workflow description
func (b *Builder) WithDescription(desc string) *Builder {
	b.def.SetDescription(desc)
	return b
}

// WithVersion sets the workflow version
func (b *Builder) WithVersion(version string) *Builder {
	b.def.SetVersion(version)
	return b
}

// WithLogger sets a custom logger
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger.With(zap.String("component", "workflow_builder"))
	return b
}

// WithDefaultParameter sets a workflow-level default parameter
func (b *Builder) WithDefaultParameter(name string, v value.Value) *Builder {
	b.def.SetDefaultParameter(name, v)
	return b
}

// AddNode adds a node and returns a NodeBuilder for configuration
func (b *Builder) AddNode(id, nodeType string) *NodeBuilder {
	node := NewNode(id, nodeType)
	return &NodeBuilder{
		node:   node,
		parent: b,
	}
}

// Connect adds a connection with the default output and input ports
func (b *Builder) Connect(from, to string) *Builder {
	return b.ConnectPorts(from, "output", to, "input", "")
}

// ConnectPorts adds a fully specified connection between two nodes
func (b *Builder) ConnectPorts(from, fromOutput, to, toInput, transform string) *Builder {
	b.def.AddConnection(Connection{
		FromNodeID:          from,
		FromOutput:          fromOutput,
		ToNodeID:            to,
		ToInput:             toInput,
		TransformExpression: transform,
	})
	return b
}

// Build validates the definition and returns it
func (b *Builder) Build() (*Definition, error) {
	if errs := b.def.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("workflow validation failed: %s", errs[0])
	}

	b.logger.Info("workflow built successfully",
		zap.String("workflow_id", b.def.ID()),
		zap.Int("nodes", b.def.NodeCount()),
		zap.Int("connections", b.def.ConnectionCount()),
	)

	return b.def, nil
}

// NodeBuilder provides a fluent API for configuring individual nodes
type NodeBuilder struct {
	node   Node
	parent *Builder
}

// WithDescription sets the node description
func (nb *NodeBuilder) WithDescription(desc string) *NodeBuilder {
	nb.node.Description = desc
	return nb
}

// WithParameter sets a node parameter
func (nb *NodeBuilder) WithParameter(name string, v value.Value) *NodeBuilder {
	if nb.node.Parameters == nil {
		nb.node.Parameters = make(map[string]value.Value)
	}
	nb.node.Parameters[name] = v
	return nb
}

// WithRetries sets how many times the node is retried on failure
func (nb *NodeBuilder) WithRetries(count int) *NodeBuilder {
	nb.node.RetryCount = count
	return nb
}

// WithTimeout sets the node execution timeout
func (nb *NodeBuilder) WithTimeout(d time.Duration) *NodeBuilder {
	nb.node.Timeout = d
	return nb
}

// WithDependsOn declares explicit ordering dependencies
func (nb *NodeBuilder) WithDependsOn(nodeIDs ...string) *NodeBuilder {
	nb.node.DependsOn = append(nb.node.DependsOn, nodeIDs...)
	return nb
}

// Disabled marks the node as disabled so the executor skips it
func (nb *NodeBuilder) Disabled() *NodeBuilder {
	nb.node.Enabled = false
	return nb
}

// Done completes node configuration and returns to the Builder
func (nb *NodeBuilder) Done() *Builder {
	nb.parent.def.AddNode(nb.node)
	return nb.parent
}

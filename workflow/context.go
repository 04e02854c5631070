package workflow

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/akaoio/nodeflow/value"
)

// ExecutionContext is the mutable state threaded through one workflow
// run: caller-supplied inputs, the last output produced per node id,
// and propagated variables keyed "{target_node_id}.{input_name}".
//
// Under parallel execution every field is read and written from
// concurrently running node tasks; all access goes through a single
// reader/writer lock. The context is never copied; always pass the
// pointer.
type ExecutionContext struct {
	workflowID  string
	executionID string
	startTime   time.Time

	mu        sync.RWMutex
	inputs    map[string]value.Value
	outputs   map[string]value.Value
	variables map[string]value.Value
}

// NewExecutionContext creates a fresh context for one run of the given
// workflow, with a unique execution id.
func NewExecutionContext(workflowID string) *ExecutionContext {
	return &ExecutionContext{
		workflowID:  workflowID,
		executionID: uuid.NewString(),
		startTime:   time.Now(),
		inputs:      make(map[string]value.Value),
		outputs:     make(map[string]value.Value),
		variables:   make(map[string]value.Value),
	}
}

// WorkflowID returns the id of the workflow being executed.
func (c *ExecutionContext) WorkflowID() string { return c.workflowID }

// ExecutionID returns the unique id of this run.
func (c *ExecutionContext) ExecutionID() string { return c.executionID }

// StartTime returns when the context was created.
func (c *ExecutionContext) StartTime() time.Time { return c.startTime }

// SetInput sets a caller-supplied start parameter.
func (c *ExecutionContext) SetInput(name string, v value.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inputs[name] = v
}

// Input returns a caller-supplied start parameter.
func (c *ExecutionContext) Input(name string) (value.Value, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.inputs[name]
	return v, ok
}

// SetOutput records the output produced by a node.
func (c *ExecutionContext) SetOutput(nodeID string, v value.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outputs[nodeID] = v
}

// Output returns the last output produced by a node.
func (c *ExecutionContext) Output(nodeID string) (value.Value, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.outputs[nodeID]
	return v, ok
}

// Outputs returns a snapshot of all node outputs.
func (c *ExecutionContext) Outputs() map[string]value.Value {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]value.Value, len(c.outputs))
	for k, v := range c.outputs {
		out[k] = v
	}
	return out
}

// SetVariable sets a scoped variable.
func (c *ExecutionContext) SetVariable(key string, v value.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.variables[key] = v
}

// Variable returns a scoped variable.
func (c *ExecutionContext) Variable(key string) (value.Value, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.variables[key]
	return v, ok
}

// Variables returns a snapshot of all scoped variables.
func (c *ExecutionContext) Variables() map[string]value.Value {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]value.Value, len(c.variables))
	for k, v := range c.variables {
		out[k] = v
	}
	return out
}

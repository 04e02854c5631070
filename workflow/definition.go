package workflow

import (
	"fmt"
	"time"

	"github.com/akaoio/nodeflow/value"
)

// DefaultNodeTimeout is the advisory per-node execution timeout applied
// when a node does not declare its own.
const DefaultNodeTimeout = 30 * time.Second

// Node is a single unit of work in a workflow graph. It is resolved to a
// runnable instance through its Type at execution time.
type Node struct {
	ID          string
	Type        string
	Description string
	Parameters  map[string]value.Value
	Enabled     bool
	RetryCount  int
	Timeout     time.Duration
	DependsOn   []string
}

// NewNode creates an enabled node with the default timeout.
func NewNode(id, nodeType string) Node {
	return Node{
		ID:         id,
		Type:       nodeType,
		Parameters: make(map[string]value.Value),
		Enabled:    true,
		Timeout:    DefaultNodeTimeout,
	}
}

// Connection is a directed data edge from one node's output to another
// node's input, with an optional transform applied in transit.
type Connection struct {
	FromNodeID          string
	FromOutput          string
	ToNodeID            string
	ToInput             string
	TransformExpression string
}

// NewConnection creates a connection between two nodes.
func NewConnection(fromNode, fromOutput, toNode, toInput string) Connection {
	return Connection{
		FromNodeID: fromNode,
		FromOutput: fromOutput,
		ToNodeID:   toNode,
		ToInput:    toInput,
	}
}

// Definition is the workflow graph model: nodes, connections, default
// parameters and IO schemas. Node declaration order is preserved and
// used as the tie-breaker for execution ordering. A Definition is built
// once (by the Parser or Builder) and treated as read-only for the
// duration of any Execute call.
type Definition struct {
	id          string
	name        string
	description string
	version     string

	nodes         []Node
	connections   []Connection
	defaultParams map[string]value.Value
	inputSchema   map[string]string
	outputSchema  map[string]string
}

// NewDefinition creates an empty workflow definition.
func NewDefinition(id, name string) *Definition {
	return &Definition{
		id:            id,
		name:          name,
		defaultParams: make(map[string]value.Value),
		inputSchema:   make(map[string]string),
		outputSchema:  make(map[string]string),
	}
}

// ID returns the workflow id.
func (d *Definition) ID() string { return d.id }

// Name returns the workflow name.
func (d *Definition) Name() string { return d.name }

// Description returns the workflow description.
func (d *Definition) Description() string { return d.description }

// Version returns the workflow version.
func (d *Definition) Version() string { return d.version }

func (d *Definition) SetID(id string)            { d.id = id }
func (d *Definition) SetName(name string)        { d.name = name }
func (d *Definition) SetDescription(desc string) { d.description = desc }
func (d *Definition) SetVersion(version string)  { d.version = version }

// AddNode adds a node to the definition. If a node with the same id
// already exists it is replaced in place: the node count is unchanged
// and the declaration position and existing connections are kept.
func (d *Definition) AddNode(node Node) {
	for i := range d.nodes {
		if d.nodes[i].ID == node.ID {
			d.nodes[i] = node
			return
		}
	}
	d.nodes = append(d.nodes, node)
}

// RemoveNode removes a node and every connection that references it.
func (d *Definition) RemoveNode(nodeID string) {
	kept := d.nodes[:0]
	for _, n := range d.nodes {
		if n.ID != nodeID {
			kept = append(kept, n)
		}
	}
	d.nodes = kept

	keptConns := d.connections[:0]
	for _, c := range d.connections {
		if c.FromNodeID != nodeID && c.ToNodeID != nodeID {
			keptConns = append(keptConns, c)
		}
	}
	d.connections = keptConns
}

// GetNode returns the node with the given id.
func (d *Definition) GetNode(nodeID string) (Node, bool) {
	for _, n := range d.nodes {
		if n.ID == nodeID {
			return n, true
		}
	}
	return Node{}, false
}

// Nodes returns the nodes in declaration order.
func (d *Definition) Nodes() []Node { return d.nodes }

// NodeCount returns the number of nodes.
func (d *Definition) NodeCount() int { return len(d.nodes) }

// AddConnection adds a data-flow connection.
func (d *Definition) AddConnection(conn Connection) {
	d.connections = append(d.connections, conn)
}

// RemoveConnection removes every connection between two nodes.
func (d *Definition) RemoveConnection(fromNode, toNode string) {
	kept := d.connections[:0]
	for _, c := range d.connections {
		if c.FromNodeID != fromNode || c.ToNodeID != toNode {
			kept = append(kept, c)
		}
	}
	d.connections = kept
}

// Connections returns all connections.
func (d *Definition) Connections() []Connection { return d.connections }

// ConnectionCount returns the number of connections.
func (d *Definition) ConnectionCount() int { return len(d.connections) }

// ConnectionsFrom returns the connections originating at a node.
func (d *Definition) ConnectionsFrom(nodeID string) []Connection {
	var out []Connection
	for _, c := range d.connections {
		if c.FromNodeID == nodeID {
			out = append(out, c)
		}
	}
	return out
}

// ConnectionsTo returns the connections terminating at a node.
func (d *Definition) ConnectionsTo(nodeID string) []Connection {
	var out []Connection
	for _, c := range d.connections {
		if c.ToNodeID == nodeID {
			out = append(out, c)
		}
	}
	return out
}

// SetDefaultParameter sets a workflow-level default parameter.
func (d *Definition) SetDefaultParameter(name string, v value.Value) {
	d.defaultParams[name] = v
}

// DefaultParameter returns a workflow-level default parameter.
func (d *Definition) DefaultParameter(name string) (value.Value, bool) {
	v, ok := d.defaultParams[name]
	return v, ok
}

// DefaultParameters returns all workflow-level default parameters.
func (d *Definition) DefaultParameters() map[string]value.Value { return d.defaultParams }

// SetInputSchema declares the type of a workflow input.
func (d *Definition) SetInputSchema(name, typeName string) { d.inputSchema[name] = typeName }

// SetOutputSchema declares the type of a workflow output.
func (d *Definition) SetOutputSchema(name, typeName string) { d.outputSchema[name] = typeName }

// InputSchema returns the declared input schema.
func (d *Definition) InputSchema() map[string]string { return d.inputSchema }

// OutputSchema returns the declared output schema.
func (d *Definition) OutputSchema() map[string]string { return d.outputSchema }

// Validate checks the definition and returns every problem found: empty
// workflow id, missing nodes, empty node ids or types, duplicate ids,
// dangling depends_on entries, connections referencing unknown nodes,
// and cyclic dependencies. It never stops at the first error.
func (d *Definition) Validate() []string {
	var errs []string

	if d.id == "" {
		errs = append(errs, "Workflow ID cannot be empty")
	}
	if len(d.nodes) == 0 {
		errs = append(errs, "Workflow must contain at least one node")
	}

	ids := make(map[string]bool, len(d.nodes))
	for _, n := range d.nodes {
		if n.ID == "" {
			errs = append(errs, "Node ID cannot be empty")
			continue
		}
		if ids[n.ID] {
			errs = append(errs, "Duplicate node ID: "+n.ID)
		} else {
			ids[n.ID] = true
		}
		if n.Type == "" {
			errs = append(errs, "Node type cannot be empty for node: "+n.ID)
		}
	}

	for _, n := range d.nodes {
		for _, dep := range n.DependsOn {
			if !ids[dep] {
				errs = append(errs, "Node "+n.ID+" depends on non-existent node: "+dep)
			}
		}
	}

	for _, c := range d.connections {
		if !ids[c.FromNodeID] {
			errs = append(errs, "Connection references non-existent node: "+c.FromNodeID)
		}
		if !ids[c.ToNodeID] {
			errs = append(errs, "Connection references non-existent node: "+c.ToNodeID)
		}
	}

	if d.HasCycles() {
		errs = append(errs, "Workflow contains cyclic dependencies")
	}

	return errs
}

// IsValid reports whether Validate finds no problems.
func (d *Definition) IsValid() bool {
	return len(d.Validate()) == 0
}

// Clear resets the definition to empty.
func (d *Definition) Clear() {
	*d = Definition{
		defaultParams: make(map[string]value.Value),
		inputSchema:   make(map[string]string),
		outputSchema:  make(map[string]string),
	}
}

// IsEmpty reports whether the definition has no nodes.
func (d *Definition) IsEmpty() bool { return len(d.nodes) == 0 }

// String returns a one-line summary of the definition.
func (d *Definition) String() string {
	return fmt.Sprintf("Workflow[%s] %q - %d nodes, %d connections",
		d.id, d.name, len(d.nodes), len(d.connections))
}

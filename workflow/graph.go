package workflow

// dependenciesOf returns the union of a node's explicit depends_on list
// and the source nodes of its incoming connections, deduplicated.
func (d *Definition) dependenciesOf(nodeID string) []string {
	seen := make(map[string]bool)
	var deps []string

	if n, ok := d.GetNode(nodeID); ok {
		for _, dep := range n.DependsOn {
			if !seen[dep] {
				seen[dep] = true
				deps = append(deps, dep)
			}
		}
	}
	for _, c := range d.connections {
		if c.ToNodeID == nodeID && !seen[c.FromNodeID] {
			seen[c.FromNodeID] = true
			deps = append(deps, c.FromNodeID)
		}
	}
	return deps
}

// ExecutionOrder returns a topological order over both explicit
// depends_on edges and connection-implied edges. Ties are broken by node
// declaration order: the algorithm repeatedly scans the node list in
// declaration order and emits every node whose dependencies are already
// emitted. When no further progress can be made (a cycle), the partial
// order computed so far is returned; callers detect incompleteness by
// comparing its length to NodeCount.
func (d *Definition) ExecutionOrder() []string {
	order := make([]string, 0, len(d.nodes))
	completed := make(map[string]bool, len(d.nodes))
	remaining := len(d.nodes)

	for remaining > 0 {
		progress := false
		for _, n := range d.nodes {
			if completed[n.ID] {
				continue
			}
			ready := true
			for _, dep := range d.dependenciesOf(n.ID) {
				if !completed[dep] {
					ready = false
					break
				}
			}
			if ready {
				order = append(order, n.ID)
				completed[n.ID] = true
				remaining--
				progress = true
			}
		}
		if !progress {
			break
		}
	}
	return order
}

// HasCycles reports whether the graph contains a dependency cycle,
// considering both connection edges and explicit depends_on edges.
func (d *Definition) HasCycles() bool {
	visited := make(map[string]bool, len(d.nodes))
	recStack := make(map[string]bool, len(d.nodes))

	var visit func(nodeID string) bool
	visit = func(nodeID string) bool {
		visited[nodeID] = true
		recStack[nodeID] = true

		for _, c := range d.connections {
			if c.FromNodeID != nodeID {
				continue
			}
			if !visited[c.ToNodeID] {
				if visit(c.ToNodeID) {
					return true
				}
			} else if recStack[c.ToNodeID] {
				return true
			}
		}

		if n, ok := d.GetNode(nodeID); ok {
			for _, dep := range n.DependsOn {
				if !visited[dep] {
					if visit(dep) {
						return true
					}
				} else if recStack[dep] {
					return true
				}
			}
		}

		recStack[nodeID] = false
		return false
	}

	for _, n := range d.nodes {
		if !visited[n.ID] {
			if visit(n.ID) {
				return true
			}
		}
	}
	return false
}

// ExecutionLevels partitions the nodes into ordered batches: level N
// contains exactly the nodes whose dependencies are fully satisfied by
// levels before N. Nodes within one level have no dependency relation
// and are eligible for concurrent execution. On a cycle the levels
// computed so far are returned.
func (d *Definition) ExecutionLevels() [][]string {
	var levels [][]string
	assigned := make(map[string]bool, len(d.nodes))
	remaining := len(d.nodes)

	for remaining > 0 {
		var level []string
		for _, n := range d.nodes {
			if assigned[n.ID] {
				continue
			}
			ready := true
			for _, dep := range d.dependenciesOf(n.ID) {
				if !assigned[dep] {
					ready = false
					break
				}
			}
			if ready {
				level = append(level, n.ID)
			}
		}
		if len(level) == 0 {
			break
		}
		for _, id := range level {
			assigned[id] = true
		}
		remaining -= len(level)
		levels = append(levels, level)
	}
	return levels
}

// NodeTypes returns the type of every node in declaration order.
func (d *Definition) NodeTypes() []string {
	types := make([]string, len(d.nodes))
	for i, n := range d.nodes {
		types[i] = n.Type
	}
	return types
}

// DisconnectedNodes returns the ids of nodes that appear in no
// connection.
func (d *Definition) DisconnectedNodes() []string {
	connected := make(map[string]bool)
	for _, c := range d.connections {
		connected[c.FromNodeID] = true
		connected[c.ToNodeID] = true
	}
	var out []string
	for _, n := range d.nodes {
		if !connected[n.ID] {
			out = append(out, n.ID)
		}
	}
	return out
}

// NodeDepths returns each node's dependency depth: zero for nodes with
// no dependencies, otherwise one more than the deepest dependency. Nodes
// unreachable because of a cycle are absent from the map.
func (d *Definition) NodeDepths() map[string]int {
	depths := make(map[string]int)
	for _, id := range d.ExecutionOrder() {
		depth := 0
		for _, dep := range d.dependenciesOf(id) {
			if dd, ok := depths[dep]; ok && dd+1 > depth {
				depth = dd + 1
			}
		}
		depths[id] = depth
	}
	return depths
}

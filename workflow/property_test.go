package workflow

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genDAG builds a random graph over n nodes. Edges only ever point from
// a lower index to a higher one, so the result is guaranteed acyclic.
func genDAG() gopter.Gen {
	return gen.IntRange(1, 12).FlatMap(func(v interface{}) gopter.Gen {
		n := v.(int)
		return gen.SliceOf(gen.Bool()).Map(func(bits []bool) *Definition {
			def := NewDefinition("prop", "Property")
			for i := 0; i < n; i++ {
				def.AddNode(NewNode(fmt.Sprintf("n%d", i), "task"))
			}
			k := 0
			for i := 0; i < n; i++ {
				for j := i + 1; j < n; j++ {
					if k < len(bits) && bits[k] {
						def.AddConnection(NewConnection(
							fmt.Sprintf("n%d", i), "output",
							fmt.Sprintf("n%d", j), "input",
						))
					}
					k++
				}
			}
			return def
		})
	}, reflect.TypeOf(&Definition{}))
}

func TestProperty_AcyclicGraphsOrderCompletely(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("acyclic graphs produce a complete execution order", prop.ForAll(
		func(def *Definition) bool {
			if def.HasCycles() {
				t.Logf("generator produced a cycle")
				return false
			}
			order := def.ExecutionOrder()
			if len(order) != def.NodeCount() {
				t.Logf("partial order %d of %d", len(order), def.NodeCount())
				return false
			}
			seen := make(map[string]bool)
			for _, id := range order {
				if seen[id] {
					t.Logf("duplicate node %s in order", id)
					return false
				}
				seen[id] = true
			}
			return true
		},
		genDAG(),
	))

	properties.TestingRun(t)
}

func TestProperty_OrderRespectsEdges(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("every connection source precedes its target", prop.ForAll(
		func(def *Definition) bool {
			pos := make(map[string]int)
			for i, id := range def.ExecutionOrder() {
				pos[id] = i
			}
			for _, c := range def.Connections() {
				if pos[c.FromNodeID] >= pos[c.ToNodeID] {
					t.Logf("edge %s -> %s violated", c.FromNodeID, c.ToNodeID)
					return false
				}
			}
			return true
		},
		genDAG(),
	))

	properties.TestingRun(t)
}

func TestProperty_LevelsPartitionAndRespectDependencies(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("levels partition the nodes and each dependency sits in an earlier level", prop.ForAll(
		func(def *Definition) bool {
			levels := def.ExecutionLevels()

			levelOf := make(map[string]int)
			total := 0
			for i, level := range levels {
				for _, id := range level {
					if _, dup := levelOf[id]; dup {
						t.Logf("node %s in two levels", id)
						return false
					}
					levelOf[id] = i
					total++
				}
			}
			if total != def.NodeCount() {
				t.Logf("levels hold %d of %d nodes", total, def.NodeCount())
				return false
			}

			for _, n := range def.Nodes() {
				for _, dep := range def.dependenciesOf(n.ID) {
					if levelOf[dep] >= levelOf[n.ID] {
						t.Logf("dependency %s of %s not in an earlier level", dep, n.ID)
						return false
					}
				}
			}
			return true
		},
		genDAG(),
	))

	properties.TestingRun(t)
}

func TestProperty_AddedBackEdgeCreatesCycle(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("reversing an existing edge always creates a cycle", prop.ForAll(
		func(def *Definition) bool {
			conns := def.Connections()
			if len(conns) == 0 {
				return true
			}
			c := conns[0]
			def.AddConnection(NewConnection(c.ToNodeID, "output", c.FromNodeID, "input"))
			return def.HasCycles()
		},
		genDAG(),
	))

	properties.TestingRun(t)
}

package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildDiamond creates: a -> b, a -> c, b -> d, c -> d
func buildDiamond() *Definition {
	def := NewDefinition("diamond", "Diamond")
	def.AddNode(NewNode("a", "task"))
	def.AddNode(NewNode("b", "task"))
	def.AddNode(NewNode("c", "task"))
	def.AddNode(NewNode("d", "task"))
	def.AddConnection(NewConnection("a", "output", "b", "input"))
	def.AddConnection(NewConnection("a", "output", "c", "input"))
	def.AddConnection(NewConnection("b", "output", "d", "left"))
	def.AddConnection(NewConnection("c", "output", "d", "right"))
	return def
}

// ---------------------------------------------------------------------------
// ExecutionOrder
// ---------------------------------------------------------------------------

func TestExecutionOrder_Linear(t *testing.T) {
	t.Parallel()
	def := NewDefinition("wf", "Test")
	def.AddNode(NewNode("first", "task"))
	def.AddNode(NewNode("second", "task"))
	def.AddNode(NewNode("third", "task"))
	def.AddConnection(NewConnection("first", "output", "second", "input"))
	def.AddConnection(NewConnection("second", "output", "third", "input"))

	assert.Equal(t, []string{"first", "second", "third"}, def.ExecutionOrder())
}

func TestExecutionOrder_Diamond_DeclarationOrderTieBreak(t *testing.T) {
	t.Parallel()
	def := buildDiamond()
	// b and c are both ready after a; declaration order decides.
	assert.Equal(t, []string{"a", "b", "c", "d"}, def.ExecutionOrder())
}

func TestExecutionOrder_IndependentNodes(t *testing.T) {
	t.Parallel()
	def := NewDefinition("wf", "Test")
	def.AddNode(NewNode("z", "task"))
	def.AddNode(NewNode("a", "task"))
	def.AddNode(NewNode("m", "task"))

	// No edges at all: pure declaration order.
	assert.Equal(t, []string{"z", "a", "m"}, def.ExecutionOrder())
}

func TestExecutionOrder_DependsOnEdges(t *testing.T) {
	t.Parallel()
	def := NewDefinition("wf", "Test")
	def.AddNode(NewNode("cleanup", "task"))
	setup := NewNode("setup", "task")
	def.AddNode(setup)
	cleanup, _ := def.GetNode("cleanup")
	cleanup.DependsOn = []string{"setup"}
	def.AddNode(cleanup)

	assert.Equal(t, []string{"setup", "cleanup"}, def.ExecutionOrder())
}

func TestExecutionOrder_CycleReturnsPartial(t *testing.T) {
	t.Parallel()
	def := NewDefinition("wf", "Test")
	def.AddNode(NewNode("free", "task"))
	def.AddNode(NewNode("a", "task"))
	def.AddNode(NewNode("b", "task"))
	def.AddConnection(NewConnection("a", "output", "b", "input"))
	def.AddConnection(NewConnection("b", "output", "a", "input"))

	order := def.ExecutionOrder()
	assert.Equal(t, []string{"free"}, order)
}

// ---------------------------------------------------------------------------
// HasCycles
// ---------------------------------------------------------------------------

func TestHasCycles(t *testing.T) {
	t.Parallel()
	def := buildDiamond()
	assert.False(t, def.HasCycles())

	def.AddConnection(NewConnection("d", "output", "a", "input"))
	assert.True(t, def.HasCycles())
}

func TestHasCycles_SelfLoop(t *testing.T) {
	t.Parallel()
	def := NewDefinition("wf", "Test")
	def.AddNode(NewNode("a", "task"))
	def.AddConnection(NewConnection("a", "output", "a", "input"))
	assert.True(t, def.HasCycles())
}

func TestHasCycles_DependsOnCycle(t *testing.T) {
	t.Parallel()
	def := NewDefinition("wf", "Test")
	a := NewNode("a", "task")
	a.DependsOn = []string{"b"}
	b := NewNode("b", "task")
	b.DependsOn = []string{"a"}
	def.AddNode(a)
	def.AddNode(b)
	assert.True(t, def.HasCycles())
}

func TestHasCycles_Empty(t *testing.T) {
	t.Parallel()
	def := NewDefinition("wf", "Test")
	assert.False(t, def.HasCycles())
}

// ---------------------------------------------------------------------------
// ExecutionLevels
// ---------------------------------------------------------------------------

func TestExecutionLevels_Diamond(t *testing.T) {
	t.Parallel()
	def := buildDiamond()
	levels := def.ExecutionLevels()
	require.Len(t, levels, 3)
	assert.Equal(t, []string{"a"}, levels[0])
	assert.ElementsMatch(t, []string{"b", "c"}, levels[1])
	assert.Equal(t, []string{"d"}, levels[2])
}

func TestExecutionLevels_AllIndependent(t *testing.T) {
	t.Parallel()
	def := NewDefinition("wf", "Test")
	def.AddNode(NewNode("a", "task"))
	def.AddNode(NewNode("b", "task"))
	levels := def.ExecutionLevels()
	require.Len(t, levels, 1)
	assert.ElementsMatch(t, []string{"a", "b"}, levels[0])
}

func TestExecutionLevels_IncludesDisabledNodes(t *testing.T) {
	t.Parallel()
	def := NewDefinition("wf", "Test")
	mid := NewNode("mid", "task")
	mid.Enabled = false
	def.AddNode(NewNode("start", "task"))
	def.AddNode(mid)
	def.AddNode(NewNode("end", "task"))
	def.AddConnection(NewConnection("start", "output", "mid", "input"))
	def.AddConnection(NewConnection("mid", "output", "end", "input"))

	// Leveling ignores the enabled flag so downstream nodes still place.
	levels := def.ExecutionLevels()
	require.Len(t, levels, 3)
	assert.Equal(t, []string{"mid"}, levels[1])
}

func TestExecutionLevels_CycleStopsLeveling(t *testing.T) {
	t.Parallel()
	def := NewDefinition("wf", "Test")
	def.AddNode(NewNode("a", "task"))
	def.AddNode(NewNode("b", "task"))
	def.AddConnection(NewConnection("a", "output", "b", "input"))
	def.AddConnection(NewConnection("b", "output", "a", "input"))

	assert.Empty(t, def.ExecutionLevels())
}

// ---------------------------------------------------------------------------
// Graph queries
// ---------------------------------------------------------------------------

func TestNodeTypes(t *testing.T) {
	t.Parallel()
	def := NewDefinition("wf", "Test")
	def.AddNode(NewNode("a", "fetch"))
	def.AddNode(NewNode("b", "transform"))
	def.AddNode(NewNode("c", "fetch"))

	assert.Equal(t, []string{"fetch", "transform", "fetch"}, def.NodeTypes())
}

func TestDisconnectedNodes(t *testing.T) {
	t.Parallel()
	def := buildDiamond()
	def.AddNode(NewNode("island", "task"))

	assert.Equal(t, []string{"island"}, def.DisconnectedNodes())
}

func TestNodeDepths(t *testing.T) {
	t.Parallel()
	def := buildDiamond()
	depths := def.NodeDepths()
	assert.Equal(t, 0, depths["a"])
	assert.Equal(t, 1, depths["b"])
	assert.Equal(t, 1, depths["c"])
	assert.Equal(t, 2, depths["d"])
}

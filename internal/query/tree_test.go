package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procman/internal/proc"
)

func child(pid, parent int, name string) proc.Record {
	return proc.Record{PID: pid, Name: name, ParentPID: parent, HasParent: true}
}

func TestBuildTreeForest(t *testing.T) {
	records := []proc.Record{
		{PID: 1, Name: "init"},
		child(20, 1, "sshd"),
		child(21, 20, "bash"),
		child(30, 99, "orphan"), // parent not in snapshot
		child(22, 20, "vim"),
	}
	forest := BuildTree(records)
	require.Len(t, forest, 2)
	assert.Equal(t, 1, forest[0].PID)
	assert.Equal(t, 30, forest[1].PID)

	sshd := forest[0].Children[0]
	assert.Equal(t, 20, sshd.PID)
	require.Len(t, sshd.Children, 2)
	assert.Equal(t, 21, sshd.Children[0].PID)
	assert.Equal(t, 22, sshd.Children[1].PID)
	assert.Equal(t, len(records), Count(forest))
}

func TestBuildTreeBreaksTwoNodeCycle(t *testing.T) {
	records := []proc.Record{child(5, 6, "a"), child(6, 5, "b")}

	finished := make(chan []*Node, 1)
	go func() { finished <- BuildTree(records) }()

	var forest []*Node
	select {
	case forest = <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("BuildTree did not return on a cyclic snapshot")
	}

	require.Len(t, forest, 1)
	assert.Equal(t, 6, forest[0].PID)
	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, 5, forest[0].Children[0].PID)
	assert.Empty(t, forest[0].Children[0].Children)
	assert.Equal(t, 2, Count(forest))
}

func TestBuildTreeLongerCycleAndSelfParent(t *testing.T) {
	records := []proc.Record{
		child(1, 3, "a"),
		child(2, 1, "b"),
		child(3, 2, "c"),
		child(9, 9, "self"),
		child(10, 2, "leaf"),
	}
	forest := BuildTree(records)
	assert.Equal(t, len(records), Count(forest), "every node appears exactly once")

	var roots []int
	for _, n := range forest {
		roots = append(roots, n.PID)
	}
	// Walking from pid 1: 1 -> 3 -> 2 -> 1 closes the loop at pid 2.
	assert.ElementsMatch(t, []int{2, 9}, roots)
}

func TestWalkPreOrderDepth(t *testing.T) {
	records := []proc.Record{
		{PID: 1, Name: "init"},
		child(2, 1, "a"),
		child(3, 2, "b"),
		child(4, 1, "c"),
	}
	var visited []int
	var depths []int
	Walk(BuildTree(records), func(n *Node, depth int) {
		visited = append(visited, n.PID)
		depths = append(depths, depth)
	})
	assert.Equal(t, []int{1, 2, 3, 4}, visited)
	assert.Equal(t, []int{0, 1, 2, 1}, depths)
}

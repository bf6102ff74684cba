package query

import "procman/internal/proc"

// Node is one process in a parent/child forest.
type Node struct {
	PID      int     `json:"pid"`
	Name     string  `json:"name"`
	Children []*Node `json:"children,omitempty"`
}

const (
	unvisited = iota
	visiting
	done
)

// BuildTree arranges records into a forest. A record becomes a root when its
// parent is not in records, or when attaching it would close a parent cycle.
// Roots and children keep snapshot order.
func BuildTree(records []proc.Record) []*Node {
	nodes := make([]*Node, len(records))
	index := make(map[int]int, len(records))
	for i, r := range records {
		nodes[i] = &Node{PID: r.PID, Name: r.Name}
		if _, dup := index[r.PID]; !dup {
			index[r.PID] = i
		}
	}

	// parent[i] is the resolved parent index, or -1 for a root.
	parent := make([]int, len(records))
	for i, r := range records {
		parent[i] = -1
		if !r.HasParent {
			continue
		}
		if j, ok := index[r.ParentPID]; ok && j != i {
			parent[i] = j
		}
	}

	// Walk each unresolved chain upward. Meeting a node still marked visiting
	// means the last link closes a cycle; that link is cut.
	state := make([]int, len(records))
	chain := make([]int, 0, 16)
	for start := range records {
		if state[start] != unvisited {
			continue
		}
		chain = chain[:0]
		cur := start
		for cur >= 0 && state[cur] == unvisited {
			state[cur] = visiting
			chain = append(chain, cur)
			next := parent[cur]
			if next >= 0 && state[next] == visiting {
				parent[cur] = -1
				break
			}
			cur = next
		}
		for _, i := range chain {
			state[i] = done
		}
	}

	var roots []*Node
	for i, n := range nodes {
		if p := parent[i]; p >= 0 {
			nodes[p].Children = append(nodes[p].Children, n)
			continue
		}
		roots = append(roots, n)
	}
	return roots
}

// Walk visits every node depth-first in pre-order.
func Walk(forest []*Node, fn func(n *Node, depth int)) {
	type frame struct {
		node  *Node
		depth int
	}
	stack := make([]frame, 0, len(forest))
	for i := len(forest) - 1; i >= 0; i-- {
		stack = append(stack, frame{forest[i], 0})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(f.node, f.depth)
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.node.Children[i], f.depth + 1})
		}
	}
}

// Count returns the number of nodes in the forest.
func Count(forest []*Node) int {
	n := 0
	Walk(forest, func(*Node, int) { n++ })
	return n
}

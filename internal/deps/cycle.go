package deps

import (
	"fmt"
	"strings"
)

// CycleError reports a reference cycle between entries.
type CycleError struct {
	Cycle []string // qualified names forming the cycle, first and last are the same
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("reference cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

const (
	unvisited = iota
	inProgress
	done
)

// DetectCycles returns a CycleError for the first cycle found, or nil.
func (g *Graph) DetectCycles() error {
	state := make(map[string]int)
	var path []string

	var visit func(node *Node) error
	visit = func(node *Node) error {
		switch state[node.QName] {
		case done:
			return nil
		case inProgress:
			for i, p := range path {
				if p == node.QName {
					cycle := append(append([]string(nil), path[i:]...), node.QName)
					return &CycleError{Cycle: cycle}
				}
			}
			return &CycleError{Cycle: []string{node.QName}}
		}

		state[node.QName] = inProgress
		path = append(path, node.QName)
		for _, edge := range node.Children {
			if err := visit(edge.To); err != nil {
				return err
			}
		}
		state[node.QName] = done
		path = path[:len(path)-1]
		return nil
	}

	for _, node := range g.All() {
		if err := visit(node); err != nil {
			return err
		}
	}
	return nil
}

// FindAllCycles lists every cycle closed by a back edge of a depth-first
// walk in node order. Self references count as cycles of one entry.
func (g *Graph) FindAllCycles() [][]string {
	var cycles [][]string
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var path []string

	var dfs func(node *Node)
	dfs = func(node *Node) {
		visited[node.QName] = true
		onStack[node.QName] = true
		path = append(path, node.QName)

		for _, edge := range node.Children {
			child := edge.To
			if !visited[child.QName] {
				dfs(child)
				continue
			}
			if !onStack[child.QName] {
				continue
			}
			for i, p := range path {
				if p == child.QName {
					cycle := make([]string, len(path)-i+1)
					copy(cycle, path[i:])
					cycle[len(cycle)-1] = child.QName
					cycles = append(cycles, cycle)
					break
				}
			}
		}

		path = path[:len(path)-1]
		onStack[node.QName] = false
	}

	for _, node := range g.All() {
		if !visited[node.QName] {
			dfs(node)
		}
	}
	return cycles
}

// Order returns the nodes with every entry after the entries it references.
// It fails on a cycle.
func (g *Graph) Order() ([]*Node, error) {
	if err := g.DetectCycles(); err != nil {
		return nil, err
	}

	var result []*Node
	visited := make(map[string]bool)

	var visit func(node *Node)
	visit = func(node *Node) {
		if visited[node.QName] {
			return
		}
		visited[node.QName] = true
		for _, edge := range node.Children {
			visit(edge.To)
		}
		result = append(result, node)
	}

	for _, node := range g.All() {
		visit(node)
	}
	return result, nil
}

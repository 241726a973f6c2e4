// Package graph schedules declarations by their references.
// One graph is built per name space; strongly connected components are
// returned dependencies first so that every group is compiled after the
// groups it refers to.
package graph

import "fmt"

// Node is an opaque handle into the graph's name index.
type Node int

// Graph is a directed graph over declaration names.
// An edge runs from a declaration to every name its body references.
type Graph struct {
	names []string
	index map[string]Node
	edges [][]Node
	seen  []map[Node]bool
}

func New() *Graph {
	return &Graph{index: make(map[string]Node)}
}

// AddNode returns the node for name, creating it on first use.
// Nodes are numbered in insertion order.
func (g *Graph) AddNode(name string) Node {
	if n, ok := g.index[name]; ok {
		return n
	}
	n := Node(len(g.names))
	g.names = append(g.names, name)
	g.index[name] = n
	g.edges = append(g.edges, nil)
	g.seen = append(g.seen, make(map[Node]bool))
	return n
}

// Lookup finds the node of a previously added name.
func (g *Graph) Lookup(name string) (Node, bool) {
	n, ok := g.index[name]
	return n, ok
}

func (g *Graph) Name(n Node) string {
	return g.names[n]
}

func (g *Graph) Len() int {
	return len(g.names)
}

// AddEdge records that from references to. Duplicate edges are ignored.
func (g *Graph) AddEdge(from, to Node) {
	g.check(from)
	g.check(to)
	if g.seen[from][to] {
		return
	}
	g.seen[from][to] = true
	g.edges[from] = append(g.edges[from], to)
}

func (g *Graph) HasEdge(from, to Node) bool {
	return g.seen[from][to]
}

// Successors returns the referenced nodes in insertion order.
func (g *Graph) Successors(n Node) []Node {
	return g.edges[n]
}

func (g *Graph) check(n Node) {
	if n < 0 || int(n) >= len(g.names) {
		panic(fmt.Sprintf("graph: node %d out of range", n))
	}
}

// StronglyConnectedComponents runs Tarjan's algorithm.
// Components come out in processing order: every edge leaving a component
// points into the same component or an earlier one. Inside a component the
// nodes are listed in insertion order, and roots are visited in insertion
// order, so the result depends only on the order of AddNode/AddEdge calls.
func (g *Graph) StronglyConnectedComponents() [][]Node {
	t := tarjan{
		graph:   g,
		index:   make([]int, len(g.names)),
		lowlink: make([]int, len(g.names)),
		onStack: make([]bool, len(g.names)),
	}
	for i := range t.index {
		t.index[i] = -1
	}
	for n := range g.names {
		if t.index[n] == -1 {
			t.connect(Node(n))
		}
	}
	return t.components
}

type tarjan struct {
	graph      *Graph
	counter    int
	index      []int
	lowlink    []int
	onStack    []bool
	stack      []Node
	components [][]Node
}

func (t *tarjan) connect(v Node) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.graph.edges[v] {
		if t.index[w] == -1 {
			t.connect(w)
			t.lowlink[v] = min(t.lowlink[v], t.lowlink[w])
		} else if t.onStack[w] {
			t.lowlink[v] = min(t.lowlink[v], t.index[w])
		}
	}

	if t.lowlink[v] != t.index[v] {
		return
	}
	var component []Node
	for {
		w := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack[w] = false
		component = append(component, w)
		if w == v {
			break
		}
	}
	sortNodes(component)
	t.components = append(t.components, component)
}

func sortNodes(nodes []Node) {
	for i := 1; i < len(nodes); i++ {
		for j := i; j > 0 && nodes[j] < nodes[j-1]; j-- {
			nodes[j], nodes[j-1] = nodes[j-1], nodes[j]
		}
	}
}

// IsCyclic reports whether a component needs recursion support:
// it has several members, or its single member references itself.
func (g *Graph) IsCyclic(component []Node) bool {
	if len(component) > 1 {
		return true
	}
	return len(component) == 1 && g.HasEdge(component[0], component[0])
}

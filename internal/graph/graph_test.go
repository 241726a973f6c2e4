package graph

import (
	"fmt"
	"testing"
)

func build(names []string, edges [][2]string) *Graph {
	g := New()
	for _, name := range names {
		g.AddNode(name)
	}
	for _, e := range edges {
		g.AddEdge(g.AddNode(e[0]), g.AddNode(e[1]))
	}
	return g
}

func componentNames(g *Graph, components [][]Node) [][]string {
	result := make([][]string, len(components))
	for i, c := range components {
		for _, n := range c {
			result[i] = append(result[i], g.Name(n))
		}
	}
	return result
}

func TestEdgelessGraphYieldsSingletons(t *testing.T) {
	for _, size := range []int{0, 1, 5, 40} {
		g := New()
		for i := 0; i < size; i++ {
			g.AddNode(fmt.Sprintf("n%d", i))
		}
		components := g.StronglyConnectedComponents()
		if len(components) != size {
			t.Fatalf("size %d: expected %d components, got %d", size, size, len(components))
		}
		for i, c := range components {
			if len(c) != 1 {
				t.Fatalf("size %d: component %d has %d members", size, i, len(c))
			}
			if g.IsCyclic(c) {
				t.Errorf("size %d: singleton %s should not be cyclic", size, g.Name(c[0]))
			}
		}
	}
}

func TestFullyConnectedGraphYieldsOneComponent(t *testing.T) {
	names := []string{"a", "b", "c", "d"}
	var edges [][2]string
	for _, from := range names {
		for _, to := range names {
			edges = append(edges, [2]string{from, to})
		}
	}
	g := build(names, edges)
	components := g.StronglyConnectedComponents()
	if len(components) != 1 {
		t.Fatalf("expected 1 component, got %d", len(components))
	}
	got := componentNames(g, components)[0]
	for i, name := range names {
		if got[i] != name {
			t.Fatalf("component members = %v, want %v", got, names)
		}
	}
}

func TestComponentsComeDependenciesFirst(t *testing.T) {
	// main -> helper -> (even <-> odd) -> base
	g := build(
		[]string{"main", "helper", "even", "odd", "base"},
		[][2]string{
			{"main", "helper"},
			{"helper", "even"},
			{"even", "odd"},
			{"odd", "even"},
			{"odd", "base"},
		},
	)
	components := g.StronglyConnectedComponents()
	position := make(map[string]int)
	for i, c := range components {
		for _, n := range c {
			position[g.Name(n)] = i
		}
	}
	if position["even"] != position["odd"] {
		t.Fatalf("even and odd must share a component")
	}
	for n := range g.names {
		for _, succ := range g.Successors(Node(n)) {
			from, to := g.Name(Node(n)), g.Name(succ)
			if position[to] > position[from] {
				t.Errorf("edge %s -> %s points to a later component", from, to)
			}
		}
	}
	if !g.IsCyclic(components[position["even"]]) {
		t.Errorf("even/odd component should be cyclic")
	}
}

func TestSelfLoopIsCyclic(t *testing.T) {
	g := build([]string{"list"}, [][2]string{{"list", "list"}})
	components := g.StronglyConnectedComponents()
	if len(components) != 1 || !g.IsCyclic(components[0]) {
		t.Fatalf("self-referencing node should form one cyclic component")
	}
}

func TestDeterministicOrder(t *testing.T) {
	edges := [][2]string{{"a", "c"}, {"b", "c"}, {"c", "d"}, {"d", "c"}}
	first := componentNames(build([]string{"a", "b", "c", "d"}, edges), build([]string{"a", "b", "c", "d"}, edges).StronglyConnectedComponents())
	second := componentNames(build([]string{"a", "b", "c", "d"}, edges), build([]string{"a", "b", "c", "d"}, edges).StronglyConnectedComponents())
	if fmt.Sprint(first) != fmt.Sprint(second) {
		t.Fatalf("order differs between runs: %v vs %v", first, second)
	}
	want := "[[c d] [a] [b]]"
	if got := fmt.Sprint(first); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

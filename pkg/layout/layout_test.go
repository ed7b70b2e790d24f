package layout

import (
	"math"
	"testing"
)

func chain(n int) Graph {
	g := Graph{}
	for i := 1; i <= n; i++ {
		g.Nodes = append(g.Nodes, int64(i))
		if i > 1 {
			g.Edges = append(g.Edges, Edge{From: int64(i - 1), To: int64(i)})
		}
	}
	return g
}

var box = Rect{X: 100, Y: 50, Width: 600, Height: 400}

func TestEnginesStayInsideBox(t *testing.T) {
	for _, name := range Algorithms {
		t.Run(name, func(t *testing.T) {
			engine, err := New(name, DefaultConfig())
			if err != nil {
				t.Fatalf("New(%q): %v", name, err)
			}
			positions, err := engine.Compute(chain(7), box)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			if len(positions) != 7 {
				t.Fatalf("got %d positions, want 7", len(positions))
			}
			for id, p := range positions {
				if !box.Contains(p) {
					t.Errorf("node %d at %+v outside %+v", id, p, box)
				}
			}
		})
	}
}

func TestEmptyGraph(t *testing.T) {
	for _, name := range Algorithms {
		engine, _ := New(name, DefaultConfig())
		positions, err := engine.Compute(Graph{}, box)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(positions) != 0 {
			t.Errorf("%s: expected no positions, got %d", name, len(positions))
		}
	}
}

func TestSingleNodeCentered(t *testing.T) {
	for _, name := range []string{"circular", "force"} {
		engine, _ := New(name, DefaultConfig())
		positions, _ := engine.Compute(Graph{Nodes: []int64{42}}, box)
		p := positions[42]
		if p.X != 400 || p.Y != 250 {
			t.Errorf("%s: single node at %+v, want centre", name, p)
		}
	}
}

func TestUnknownAlgorithm(t *testing.T) {
	if _, err := New("spiral", DefaultConfig()); err == nil {
		t.Error("expected error for unknown algorithm")
	}
}

func TestCircularEquidistant(t *testing.T) {
	engine, _ := New("circular", DefaultConfig())
	positions, _ := engine.Compute(chain(6), box)
	c := box.center()
	want := distance(positions[1], c)
	for id, p := range positions {
		if d := distance(p, c); math.Abs(d-want) > 0.001 {
			t.Errorf("node %d radius %f, want %f", id, d, want)
		}
	}
}

func TestForceDeterministic(t *testing.T) {
	engine := NewForceDirectedLayout(DefaultConfig())
	first, _ := engine.Compute(chain(5), box)
	second, _ := engine.Compute(chain(5), box)
	for id := range first {
		if first[id] != second[id] {
			t.Errorf("node %d moved between runs: %+v vs %+v", id, first[id], second[id])
		}
	}
}

func TestHierarchicalBFSLevels(t *testing.T) {
	engine, _ := New("hierarchical", DefaultConfig())
	g := Graph{
		Nodes: []int64{1, 2, 3, 4},
		Edges: []Edge{{From: 1, To: 2}, {From: 1, To: 3}},
	}
	positions, _ := engine.Compute(g, box)

	if positions[2].Y != positions[3].Y {
		t.Errorf("children on different levels: %v vs %v", positions[2].Y, positions[3].Y)
	}
	if positions[1].Y >= positions[2].Y {
		t.Errorf("root %v not above child %v", positions[1].Y, positions[2].Y)
	}
	// 4 has no incoming edges so it is a root too
	if positions[4].Y != positions[1].Y {
		t.Errorf("unconnected node on level %v, want root level %v", positions[4].Y, positions[1].Y)
	}
}

func TestHierarchicalExplicitTiers(t *testing.T) {
	engine, _ := New("hierarchical", DefaultConfig())
	g := Graph{
		Nodes: []int64{10, 20, 30},
		Tiers: map[int64]int{10: 2, 20: 0, 30: 1},
	}
	positions, _ := engine.Compute(g, box)
	if !(positions[20].Y < positions[30].Y && positions[30].Y < positions[10].Y) {
		t.Errorf("tiers out of order: %+v", positions)
	}
}

func TestContainers(t *testing.T) {
	cfg := DefaultConfig()
	boxes := Containers(4, cfg)
	if len(boxes) != 4 {
		t.Fatalf("got %d containers", len(boxes))
	}
	if boxes[0].Y != boxes[2].Y {
		t.Error("first row should hold three containers")
	}
	if boxes[3].Y <= boxes[0].Y || boxes[3].X != boxes[0].X {
		t.Errorf("fourth container should start the second row: %+v", boxes[3])
	}
	for i := 1; i < 3; i++ {
		if boxes[i].X < boxes[i-1].X+cfg.SiteWidth {
			t.Errorf("containers %d and %d overlap", i-1, i)
		}
	}
}

func TestNormalize(t *testing.T) {
	in := map[int64]Position{1: {X: -50, Y: 10}, 2: {X: 150, Y: 30}}
	out := normalize(in, box)
	if out[1] != (Position{X: box.X, Y: box.Y}) {
		t.Errorf("min corner %+v", out[1])
	}
	if out[2] != (Position{X: box.X + box.Width, Y: box.Y + box.Height}) {
		t.Errorf("max corner %+v", out[2])
	}
}

func distance(a, b Position) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

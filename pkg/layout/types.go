package layout

import "fmt"

// Position is a 2D canvas coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned box on the canvas
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether p lies inside r, edges included
func (r Rect) Contains(p Position) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

func (r Rect) center() Position {
	return Position{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Config configures layout parameters
type Config struct {
	SiteWidth  float64 // width of one site container
	SiteHeight float64 // height of one site container
	Gap        float64 // space between site containers
	Columns    int     // site containers per row
	Iterations int     // iterations for force-directed layout
	Padding    float64 // padding inside a container
}

func DefaultConfig() Config {
	return Config{
		SiteWidth:  600,
		SiteHeight: 400,
		Gap:        40,
		Columns:    3,
		Iterations: 50,
		Padding:    40,
	}
}

type Edge struct {
	From, To int64
}

// Graph is the input to a layout engine. Tiers optionally assigns each node
// a level for hierarchical layout, lowest first.
type Graph struct {
	Nodes []int64
	Edges []Edge
	Tiers map[int64]int
}

// Engine computes node positions inside a box
type Engine interface {
	Compute(g Graph, box Rect) (map[int64]Position, error)
}

// Algorithms lists the names accepted by New
var Algorithms = []string{"grid", "circular", "force", "hierarchical"}

// New returns the engine for a named algorithm
func New(name string, cfg Config) (Engine, error) {
	switch name {
	case "grid", "":
		return &GridLayout{config: cfg}, nil
	case "circular":
		return &CircularLayout{config: cfg}, nil
	case "force":
		return NewForceDirectedLayout(cfg), nil
	case "hierarchical":
		return &HierarchicalLayout{config: cfg}, nil
	}
	return nil, fmt.Errorf("unknown layout %q", name)
}

// Containers places n site boxes in rows of cfg.Columns
func Containers(n int, cfg Config) []Rect {
	cols := max(cfg.Columns, 1)
	out := make([]Rect, n)
	for i := range out {
		row, col := i/cols, i%cols
		out[i] = Rect{
			X:      cfg.Gap + float64(col)*(cfg.SiteWidth+cfg.Gap),
			Y:      cfg.Gap + float64(row)*(cfg.SiteHeight+cfg.Gap),
			Width:  cfg.SiteWidth,
			Height: cfg.SiteHeight,
		}
	}
	return out
}

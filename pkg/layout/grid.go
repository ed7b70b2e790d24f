package layout

import "math"

// GridLayout places nodes row by row in a near-square grid
type GridLayout struct {
	config Config
}

func (gl *GridLayout) Compute(g Graph, box Rect) (map[int64]Position, error) {
	positions := make(map[int64]Position, len(g.Nodes))
	if len(g.Nodes) == 0 {
		return positions, nil
	}

	cols := int(math.Ceil(math.Sqrt(float64(len(g.Nodes)))))
	rows := (len(g.Nodes) + cols - 1) / cols
	inner := inset(box, gl.config.Padding)
	dx := inner.Width / float64(cols)
	dy := inner.Height / float64(rows)

	for i, id := range g.Nodes {
		positions[id] = Position{
			X: inner.X + dx*(float64(i%cols)+0.5),
			Y: inner.Y + dy*(float64(i/cols)+0.5),
		}
	}
	return positions, nil
}

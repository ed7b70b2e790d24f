package layout

import "math"

// CircularLayout arranges nodes in a circle
type CircularLayout struct {
	config Config
}

func (cl *CircularLayout) Compute(g Graph, box Rect) (map[int64]Position, error) {
	positions := make(map[int64]Position, len(g.Nodes))
	if len(g.Nodes) == 0 {
		return positions, nil
	}

	c := box.center()
	if len(g.Nodes) == 1 {
		positions[g.Nodes[0]] = c
		return positions, nil
	}
	radius := math.Max(math.Min(box.Width, box.Height)/2-cl.config.Padding, 0)
	step := 2 * math.Pi / float64(len(g.Nodes))

	for i, id := range g.Nodes {
		angle := float64(i) * step
		positions[id] = Position{
			X: c.X + radius*math.Cos(angle),
			Y: c.Y + radius*math.Sin(angle),
		}
	}
	return positions, nil
}

package layout

import (
	"math"
	"math/rand/v2"
)

// ForceDirectedLayout is a Fruchterman-Reingold layout. Initial positions
// are seeded from the node ids so the same graph always lays out the same.
type ForceDirectedLayout struct {
	config Config
}

func NewForceDirectedLayout(cfg Config) *ForceDirectedLayout {
	if cfg.Iterations == 0 {
		cfg.Iterations = 50
	}
	return &ForceDirectedLayout{config: cfg}
}

func (fdl *ForceDirectedLayout) Compute(g Graph, box Rect) (map[int64]Position, error) {
	positions := make(map[int64]Position, len(g.Nodes))
	if len(g.Nodes) == 0 {
		return positions, nil
	}
	if len(g.Nodes) == 1 {
		positions[g.Nodes[0]] = box.center()
		return positions, nil
	}

	var seed uint64
	for _, id := range g.Nodes {
		seed = seed*31 + uint64(id)
	}
	rng := rand.New(rand.NewPCG(seed, uint64(len(g.Nodes))))
	for _, id := range g.Nodes {
		positions[id] = Position{X: rng.Float64() * box.Width, Y: rng.Float64() * box.Height}
	}

	neighbours := make(map[int64][]int64)
	for _, e := range g.Edges {
		if e.From == e.To {
			continue
		}
		neighbours[e.From] = append(neighbours[e.From], e.To)
		neighbours[e.To] = append(neighbours[e.To], e.From)
	}

	k := math.Sqrt(box.Width * box.Height / float64(len(g.Nodes)))
	temperature := box.Width / 10

	for iter := 0; iter < fdl.config.Iterations; iter++ {
		forces := make(map[int64]Position, len(g.Nodes))

		for i, a := range g.Nodes {
			for _, b := range g.Nodes[i+1:] {
				dx := positions[a].X - positions[b].X
				dy := positions[a].Y - positions[b].Y
				dist := math.Max(math.Hypot(dx, dy), 0.01)
				f := k * k / dist
				fa, fb := forces[a], forces[b]
				forces[a] = Position{X: fa.X + dx/dist*f, Y: fa.Y + dy/dist*f}
				forces[b] = Position{X: fb.X - dx/dist*f, Y: fb.Y - dy/dist*f}
			}
		}

		for _, a := range g.Nodes {
			for _, b := range neighbours[a] {
				pb, ok := positions[b]
				if !ok {
					continue
				}
				dx := positions[a].X - pb.X
				dy := positions[a].Y - pb.Y
				dist := math.Hypot(dx, dy)
				if dist < 0.01 {
					continue
				}
				f := dist * dist / k
				fa := forces[a]
				forces[a] = Position{X: fa.X - dx/dist*f, Y: fa.Y - dy/dist*f}
			}
		}

		cool := 1 - float64(iter)/float64(fdl.config.Iterations)
		for _, id := range g.Nodes {
			f := forces[id]
			mag := math.Hypot(f.X, f.Y)
			if mag == 0 {
				continue
			}
			step := math.Min(mag, temperature) * cool
			p := positions[id]
			positions[id] = Position{X: p.X + f.X/mag*step, Y: p.Y + f.Y/mag*step}
		}
		temperature *= 0.95
	}

	return normalize(positions, inset(box, fdl.config.Padding)), nil
}

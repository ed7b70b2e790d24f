package layout

import "slices"

// HierarchicalLayout arranges nodes in horizontal tiers. Explicit tiers
// are used when the graph has them; otherwise tiers come from a
// breadth-first walk out of the nodes that no edge points at.
type HierarchicalLayout struct {
	config Config
}

func (hl *HierarchicalLayout) Compute(g Graph, box Rect) (map[int64]Position, error) {
	positions := make(map[int64]Position, len(g.Nodes))
	if len(g.Nodes) == 0 {
		return positions, nil
	}

	var levels [][]int64
	if len(g.Tiers) > 0 {
		levels = explicitLevels(g)
	} else {
		levels = bfsLevels(g)
	}

	inner := inset(box, hl.config.Padding)
	levelHeight := inner.Height / float64(len(levels))
	for i, level := range levels {
		y := inner.Y + float64(i)*levelHeight + levelHeight/2
		spacing := inner.Width / float64(len(level)+1)
		for j, id := range level {
			positions[id] = Position{X: inner.X + spacing*float64(j+1), Y: y}
		}
	}
	return positions, nil
}

func explicitLevels(g Graph) [][]int64 {
	byTier := make(map[int][]int64)
	for _, id := range g.Nodes {
		tier := g.Tiers[id]
		byTier[tier] = append(byTier[tier], id)
	}
	tiers := make([]int, 0, len(byTier))
	for t := range byTier {
		tiers = append(tiers, t)
	}
	slices.Sort(tiers)
	levels := make([][]int64, 0, len(tiers))
	for _, t := range tiers {
		levels = append(levels, byTier[t])
	}
	return levels
}

func bfsLevels(g Graph) [][]int64 {
	inDegree := make(map[int64]int, len(g.Nodes))
	out := make(map[int64][]int64)
	for _, e := range g.Edges {
		inDegree[e.To]++
		out[e.From] = append(out[e.From], e.To)
	}

	var roots []int64
	for _, id := range g.Nodes {
		if inDegree[id] == 0 {
			roots = append(roots, id)
		}
	}
	if len(roots) == 0 {
		roots = []int64{g.Nodes[0]}
	}

	visited := make(map[int64]bool, len(g.Nodes))
	for _, id := range roots {
		visited[id] = true
	}
	var levels [][]int64
	for current := roots; len(current) > 0; {
		levels = append(levels, current)
		var next []int64
		for _, id := range current {
			for _, to := range out[id] {
				if !visited[to] {
					visited[to] = true
					next = append(next, to)
				}
			}
		}
		current = next
	}

	for _, id := range g.Nodes {
		if !visited[id] {
			levels[len(levels)-1] = append(levels[len(levels)-1], id)
		}
	}
	return levels
}

package layout

import "math"

func inset(r Rect, padding float64) Rect {
	p := math.Min(padding, math.Min(r.Width, r.Height)/2)
	return Rect{X: r.X + p, Y: r.Y + p, Width: r.Width - 2*p, Height: r.Height - 2*p}
}

// normalize scales positions to fill box
func normalize(positions map[int64]Position, box Rect) map[int64]Position {
	if len(positions) == 0 {
		return positions
	}

	minX, maxX := math.MaxFloat64, -math.MaxFloat64
	minY, maxY := math.MaxFloat64, -math.MaxFloat64
	for _, p := range positions {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX < 0.01 {
		rangeX = 1
	}
	if rangeY < 0.01 {
		rangeY = 1
	}

	out := make(map[int64]Position, len(positions))
	for id, p := range positions {
		out[id] = Position{
			X: box.X + (p.X-minX)/rangeX*box.Width,
			Y: box.Y + (p.Y-minY)/rangeY*box.Height,
		}
	}
	return out
}

package sim

import (
	"math"

	"github.com/san-kum/autopark/internal/vehicle"
)

// UnitsPerMeter scales metres to distance sensor units (micrometres).
const UnitsPerMeter = 1_000_000

// Geometry describes a straight wall with one rectangular parking slot
// cut into it. The vehicle starts at the origin heading along +x with the
// wall on Side. Lengths are metres.
type Geometry struct {
	Side       vehicle.Side
	WallOffset float64
	GapStart   float64
	GapWidth   float64
	SlotDepth  float64
	WallLength float64
}

func DefaultGeometry() Geometry {
	return Geometry{
		Side:       vehicle.Left,
		WallOffset: 0.12,
		GapStart:   1.0,
		GapWidth:   0.4,
		SlotDepth:  0.3,
		WallLength: 4.0,
	}
}

// sign maps the wall side onto the world y axis.
func (g Geometry) sign() float64 {
	if g.Side == vehicle.Right {
		return -1
	}
	return 1
}

func (g Geometry) GapEnd() float64 { return g.GapStart + g.GapWidth }

type point struct{ x, y float64 }

type segment struct{ a, b point }

func (g Geometry) segments() []segment {
	s := g.sign()
	y0 := s * g.WallOffset
	y1 := s * (g.WallOffset + g.SlotDepth)
	x0, x1 := g.GapStart, g.GapEnd()
	return []segment{
		{point{-g.WallLength, y0}, point{x0, y0}},
		{point{x1, y0}, point{g.WallLength, y0}},
		{point{x0, y0}, point{x0, y1}},
		{point{x1, y0}, point{x1, y1}},
		{point{x0, y1}, point{x1, y1}},
	}
}

// InSlot reports whether (x, y) lies inside the slot rectangle.
func (g Geometry) InSlot(x, y float64) bool {
	ly := g.sign() * y
	return x > g.GapStart && x < g.GapEnd() && ly > g.WallOffset && ly < g.WallOffset+g.SlotDepth
}

// cast returns the distance along the unit ray (o, d) to the nearest
// segment, or ok=false when nothing is hit.
func cast(segs []segment, o, d point) (float64, bool) {
	best := math.Inf(1)
	for _, sg := range segs {
		ex, ey := sg.b.x-sg.a.x, sg.b.y-sg.a.y
		den := d.x*ey - d.y*ex
		if math.Abs(den) < 1e-12 {
			continue
		}
		wx, wy := sg.a.x-o.x, sg.a.y-o.y
		t := (wx*ey - wy*ex) / den
		u := (wx*d.y - wy*d.x) / den
		if t >= 0 && u >= 0 && u <= 1 && t < best {
			best = t
		}
	}
	if math.IsInf(best, 1) {
		return 0, false
	}
	return best, true
}

// Package export renders stored runs as standalone SVG drawings.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/autopark/internal/sim"
	"github.com/san-kum/autopark/internal/vehicle"
)

// TrajectoryToSVG draws the wall, the slot and the path of the vehicle
// reference point in world coordinates, y up.
func TrajectoryToSVG(g sim.Geometry, trace []sim.Pose, width, height int, strokeColor string) string {
	if len(trace) < 2 {
		return ""
	}

	s := 1.0
	if g.Side == vehicle.Right {
		s = -1
	}
	y0 := s * g.WallOffset
	y1 := s * (g.WallOffset + g.SlotDepth)

	// Find bounds
	minX, maxX := math.Min(0, g.GapStart), g.GapEnd()
	minY, maxY := math.Min(0, math.Min(y0, y1)), math.Max(0, math.Max(y0, y1))
	for _, p := range trace {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	project := func(x, y float64) (float64, float64) {
		return (x - minX) / rangeX * float64(width), float64(height) - (y-minY)/rangeY*float64(height)
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	walls := [][4]float64{
		{minX, y0, g.GapStart, y0},
		{g.GapEnd(), y0, maxX, y0},
		{g.GapStart, y0, g.GapStart, y1},
		{g.GapEnd(), y0, g.GapEnd(), y1},
		{g.GapStart, y1, g.GapEnd(), y1},
	}
	sb.WriteString(`<g stroke="#888888" stroke-width="2">` + "\n")
	for _, w := range walls {
		ax, ay := project(w[0], w[1])
		bx, by := project(w[2], w[3])
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", ax, ay, bx, by))
	}
	sb.WriteString("</g>\n")

	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))
	for i, p := range trace {
		x, y := project(p.X, p.Y)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString(`"/>` + "\n")

	last := trace[len(trace)-1]
	fx, fy := project(last.X, last.Y)
	sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="4" fill="%s"/>`+"\n", fx, fy, strokeColor))
	sb.WriteString("</svg>")
	return sb.String()
}

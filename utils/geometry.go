package utils

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/agrosafe/farmguard/models"
)

// ZoneBound converts a zone's rectangle to an orb.Bound in map
// coordinates. Rotation is ignored; bounds are axis-aligned.
func ZoneBound(g models.ZoneGeometry) orb.Bound {
	return orb.Bound{
		Min: orb.Point{g.X, g.Y},
		Max: orb.Point{g.X + g.Width, g.Y + g.Height},
	}
}

// MapBound converts the map's extent to an orb.Bound anchored at the
// origin.
func MapBound(b models.MapBounds) orb.Bound {
	return orb.Bound{
		Min: orb.Point{0, 0},
		Max: orb.Point{b.Width, b.Height},
	}
}

// ZonesOverlap reports whether two zones' rectangles intersect.
func ZonesOverlap(a, b models.ZoneGeometry) bool {
	return ZoneBound(a).Intersects(ZoneBound(b))
}

// ZoneContainsPoint reports whether a map-space point falls inside the
// zone's rectangle.
func ZoneContainsPoint(g models.ZoneGeometry, x, y float64) bool {
	return ZoneBound(g).Contains(orb.Point{x, y})
}

// ZoneWithinMap reports whether the zone's rectangle lies entirely inside
// the map bounds. Dragging does not enforce this; the flag is surfaced
// for display only.
func ZoneWithinMap(g models.ZoneGeometry, b models.MapBounds) bool {
	zb := ZoneBound(g)
	mb := MapBound(b)
	return mb.Contains(zb.Min) && mb.Contains(zb.Max)
}

// ZoneCenter returns the center point of the zone's rectangle.
func ZoneCenter(g models.ZoneGeometry) orb.Point {
	return ZoneBound(g).Center()
}

// SnapToGrid rounds a coordinate to the nearest grid line. A grid size
// of zero or less leaves the value untouched.
func SnapToGrid(v float64, gridSize int) float64 {
	if gridSize <= 0 {
		return v
	}
	g := float64(gridSize)
	return math.Round(v/g) * g
}

// SnapPosition snaps a zone position according to the map config.
func SnapPosition(x, y float64, cfg models.MapConfig) (float64, float64) {
	if !cfg.SnapToGrid {
		return x, y
	}
	return SnapToGrid(x, cfg.GridSize), SnapToGrid(y, cfg.GridSize)
}

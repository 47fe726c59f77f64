// Package layout extracts orientation guidelines from an SVG map layout
// and answers nearest-heading queries against them.  Only geometry inside
// the "Guidelines" and "Physical" groups is indexed.
package layout

import "math"

// minSegmentLenSq is the squared length below which a segment is treated
// as degenerate and skipped
const minSegmentLenSq = 1e-6

// Segment is a guideline line segment in map pixel coordinates
type Segment struct {
	X1, Y1 float64
	X2, Y2 float64
}

// Heading returns the angle of the segment's direction vector in degrees,
// normalized to [0, 360)
func (s Segment) Heading() float64 {
	deg := math.Atan2(s.Y2-s.Y1, s.X2-s.X1) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// Index answers nearest-heading queries over a set of guideline segments.
// It is immutable once built and safe for concurrent use.  The lookup is
// a linear scan over all segments, which is fine at the scale of a map
// layout; very dense layouts would want a spatial index.
type Index struct {
	segments []Segment
}

// NewIndex builds an Index directly from segments, mainly for callers that
// derive guidelines from something other than an SVG document
func NewIndex(segments []Segment) *Index {
	return &Index{segments: segments}
}

// Len returns the number of indexed segments
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.segments)
}

// Segments returns the indexed segments in document order
func (ix *Index) Segments() []Segment {
	if ix == nil {
		return nil
	}
	return ix.segments
}

// NearestHeading returns the heading of the segment closest to the map
// point (x, y), in degrees normalized to [0, 360).  Distance to a segment
// is measured to the closest point on the segment, found by clamped scalar
// projection.  ok is false when the index is nil or holds no usable
// segments.
//
// A query point exactly equidistant from two segments resolves to
// whichever is enumerated first, since only a strictly smaller distance
// replaces the running best; this tie behavior is deliberate and follows
// document order.
func (ix *Index) NearestHeading(x, y float64) (float64, bool) {

	if ix == nil {
		return 0, false
	}

	minDistSq := math.Inf(1)
	best := 0.0
	ok := false

	for _, s := range ix.segments {

		abX := s.X2 - s.X1
		abY := s.Y2 - s.Y1
		abSq := abX*abX + abY*abY

		if abSq < minSegmentLenSq {
			continue
		}

		t := ((x-s.X1)*abX + (y-s.Y1)*abY) / abSq

		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}

		dx := x - (s.X1 + t*abX)
		dy := y - (s.Y1 + t*abY)
		distSq := dx*dx + dy*dy

		if distSq < minDistSq {
			minDistSq = distSq
			best = s.Heading()
			ok = true
		}
	}

	return best, ok
}

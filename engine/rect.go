package engine

// Tlwh (top-left x, top-left y, width, height) represents a bounding box
// as a 1x4 vector of camera pixel coordinates
type Tlwh []float64

// Rect is a detection bounding box in Tlwh format
type Rect struct {
	Tlwh Tlwh
}

// NewRect creates a Rect from top-left corner, width and height
func NewRect(x, y, width, height float64) Rect {
	return Rect{
		Tlwh: Tlwh{x, y, width, height},
	}
}

// RectFromTlbr creates a Rect from the (x1, y1, x2, y2) corner format used
// by detector outputs
func RectFromTlbr(x1, y1, x2, y2 float64) Rect {
	return NewRect(x1, y1, x2-x1, y2-y1)
}

// X returns the top-left x coordinate
func (r *Rect) X() float64 {
	return r.Tlwh[0]
}

// Y returns the top-left y coordinate
func (r *Rect) Y() float64 {
	return r.Tlwh[1]
}

// Width returns the box width
func (r *Rect) Width() float64 {
	return r.Tlwh[2]
}

// Height returns the box height
func (r *Rect) Height() float64 {
	return r.Tlwh[3]
}

// BRX returns the bottom-right x coordinate
func (r *Rect) BRX() float64 {
	return r.Tlwh[0] + r.Tlwh[2]
}

// BRY returns the bottom-right y coordinate
func (r *Rect) BRY() float64 {
	return r.Tlwh[1] + r.Tlwh[3]
}

// CenterBottom returns the horizontal box center on the bottom edge, the
// usual ground contact reference for upright objects
func (r *Rect) CenterBottom() (float64, float64) {
	return r.Tlwh[0] + r.Tlwh[2]/2, r.Tlwh[1] + r.Tlwh[3]
}

// Center returns the box centroid
func (r *Rect) Center() (float64, float64) {
	return r.Tlwh[0] + r.Tlwh[2]/2, r.Tlwh[1] + r.Tlwh[3]/2
}

// ClipTo clips the box to a width x height frame.  ok is false when
// nothing of the box remains inside the frame.
func (r *Rect) ClipTo(width, height int) (Rect, bool) {

	x1 := clampCoord(r.X(), float64(width-1))
	y1 := clampCoord(r.Y(), float64(height-1))
	x2 := clampCoord(r.BRX(), float64(width-1))
	y2 := clampCoord(r.BRY(), float64(height-1))

	if x1 >= x2 || y1 >= y2 {
		return Rect{}, false
	}

	return RectFromTlbr(x1, y1, x2, y2), true
}

// clampCoord restricts a coordinate to [0, max]
func clampCoord(v, max float64) float64 {

	if v <= 0 {
		return 0
	}

	if v >= max {
		return max
	}

	return v
}

package projection

// Point is a 2D coordinate in either camera pixel or map pixel space
type Point struct {
	X, Y float64
}

// RefMethod selects the box pixel assumed to touch the ground
type RefMethod string

const (
	// RefCenterBottom uses the horizontal box center on the bottom edge
	RefCenterBottom RefMethod = "center_bottom_side"
	// RefCenterBox uses the box centroid
	RefCenterBox RefMethod = "center_box"
)

// ProjMethod selects how the height prior is applied when correcting the
// apparent ground position
type ProjMethod string

const (
	// ProjDownH applies the full object height
	ProjDownH ProjMethod = "down_h"
	// ProjDownH2 applies half the object height, a rough centroid-height
	// heuristic for when the reference point is a silhouette point rather
	// than a true ground contact
	ProjDownH2 ProjMethod = "down_h_2"
	// ProjMatch skips parallax correction entirely
	ProjMatch ProjMethod = "match"
)

// GroundContact is the result of projecting a detection box to the ground
// map.  ImageRef and ImageGround are camera pixel diagnostics: the box
// reference point that was projected, and the corrected map coordinate
// reprojected back into the camera frame.
type GroundContact struct {
	MapCoords   Point
	ImageRef    Point
	ImageGround Point
}

// Projector composes the lens model, homography and parallax model into
// the full camera-to-map projection chain.  It is immutable after
// construction and safe for concurrent use.
type Projector struct {
	lens *LensModel
	hom  *Homography
	par  *ParallaxModel
}

// NewProjector creates a Projector from its three constituent models
func NewProjector(lens *LensModel, hom *Homography, par *ParallaxModel) *Projector {
	return &Projector{
		lens: lens,
		hom:  hom,
		par:  par,
	}
}

// Parallax returns the underlying parallax model
func (g *Projector) Parallax() *ParallaxModel {
	return g.par
}

// ImageToMap projects a raw camera pixel to map coordinates.  A non-zero h
// additionally corrects the result for the point sitting h meters above
// the ground plane.
func (g *Projector) ImageToMap(u, v, h float64) Point {

	uu, vu := g.lens.Undistort(u, v)
	x, y := g.hom.ToMap(uu, vu)

	if h != 0 {
		x, y = g.par.CorrectApparentToReal(x, y, h)
	}

	return Point{X: x, Y: y}
}

// MapToImage projects a map coordinate back to a raw camera pixel.  A
// non-zero h treats the map coordinate as the true ground position of a
// point h meters above the ground plane and returns where that point's
// ground projection appears in the camera frame.
func (g *Projector) MapToImage(x, y, h float64) Point {

	if h != 0 {
		x, y = g.par.ProjectRealToApparent(x, y, h)
	}

	uu, vu := g.hom.ToImage(x, y)
	u, v := g.lens.DistortProject(uu, vu)

	return Point{X: u, Y: v}
}

// GroundContactFromBox projects a detection box (x, y, width, height in
// raw camera pixels) to its ground contact point on the map.  heightM is
// the object's physical height prior in meters, applied according to
// proj; ref selects which box pixel is assumed to touch the ground.
func (g *Projector) GroundContactFromBox(bx, by, bw, bh, heightM float64,
	ref RefMethod, proj ProjMethod) GroundContact {

	cx := bx + bw/2
	cy := by + bh/2

	if ref == RefCenterBottom {
		cy = by + bh
	}

	apparent := g.ImageToMap(cx, cy, 0)

	final := apparent

	switch proj {
	case ProjDownH:
		x, y := g.par.CorrectApparentToReal(apparent.X, apparent.Y, heightM)
		final = Point{X: x, Y: y}
	case ProjDownH2:
		x, y := g.par.CorrectApparentToReal(apparent.X, apparent.Y, heightM/2)
		final = Point{X: x, Y: y}
	}

	ground := g.MapToImage(final.X, final.Y, 0)

	return GroundContact{
		MapCoords:   final,
		ImageRef:    Point{X: cx, Y: cy},
		ImageGround: ground,
	}
}

// FloorToImage3D lifts a 4-point ground footprint polygon (map
// coordinates, height 0) to the 8 corners of a 3D wireframe box in raw
// camera pixels.  The first 4 output points are the floor corners, the
// last 4 the ceiling corners at heightM, in input corner order.  Callers
// draw floor[i]-floor[i+1], ceiling[i]-ceiling[i+1] and floor[i]-ceiling[i]
// edges to render the box.
func (g *Projector) FloorToImage3D(floor [4]Point, heightM float64) [8]Point {

	var out [8]Point

	for i, p := range floor {
		out[i] = g.MapToImage(p.X, p.Y, 0)
	}

	// the ceiling corner of a box at height h appears on the ground plane
	// at its parallax-projected apparent position
	for i, p := range floor {
		ax, ay := g.par.ProjectRealToApparent(p.X, p.Y, heightM)
		out[4+i] = g.MapToImage(ax, ay, 0)
	}

	return out
}

package kinematics

// Point is a map pixel coordinate observed for a track
type Point struct {
	X, Y float64
}

// Window is a bounded history of the most recent positions of one track.
// Pushing beyond the size cap drops the oldest point.  A window is owned
// by exactly one smoother and needs no locking.
type Window struct {
	// size is the maximum number of most recent points to keep
	size   int
	points []Point
}

// NewWindow returns a new bounded position window holding at most size
// points
func NewWindow(size int) *Window {
	if size < 1 {
		size = 1
	}
	return &Window{size: size}
}

// Push appends a point, dropping the oldest when the cap is exceeded
func (w *Window) Push(p Point) {
	w.points = append(w.points, p)

	if len(w.points) > w.size {
		w.points = w.points[1:]
	}
}

// Len returns the number of points currently held
func (w *Window) Len() int {
	return len(w.points)
}

// At returns the i'th oldest point
func (w *Window) At(i int) Point {
	return w.points[i]
}

// Last returns the most recently pushed point
func (w *Window) Last() Point {
	return w.points[len(w.points)-1]
}

// Points returns the held points, oldest first.  The slice aliases the
// window's storage and must not be mutated.
func (w *Window) Points() []Point {
	return w.points
}

// Bounds returns the per-axis minimum and maximum over the held points.
// It must not be called on an empty window.
func (w *Window) Bounds() (min Point, max Point) {

	min = w.points[0]
	max = w.points[0]

	for _, p := range w.points[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}

	return min, max
}

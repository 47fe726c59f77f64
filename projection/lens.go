package projection

const (
	// undistortIterations caps the fixed point iteration inverting the
	// distortion polynomial
	undistortIterations = 20

	// undistortEps stops the iteration once the estimate has converged
	undistortEps = 1e-12
)

// LensModel maps raw camera pixels to undistorted pixels and back using a
// pinhole intrinsic matrix with radial and tangential (Brown-Conrady)
// distortion coefficients.  The same intrinsic matrix is used as both the
// source and the reprojection matrix, which preserves the pixel scale and
// frame but does not crop away invalid borders.
type LensModel struct {
	fx, fy float64
	cx, cy float64
	skew   float64
	// distortion coefficients k1, k2, p1, p2, k3
	k1, k2, p1, p2, k3 float64
}

// NewLensModel creates a LensModel from a row-major 3x3 intrinsic matrix
// and a distortion coefficient vector of up to five entries (k1, k2, p1,
// p2, k3), with missing trailing entries treated as zero.
func NewLensModel(k [][]float64, d []float64) (*LensModel, error) {

	if len(k) != 3 || len(k[0]) != 3 || len(k[1]) != 3 || len(k[2]) != 3 {
		return nil, &ConfigError{Param: "K", Reason: "intrinsic matrix must be 3x3"}
	}

	if k[0][0] == 0 || k[1][1] == 0 {
		return nil, &ConfigError{Param: "K", Reason: "zero focal length"}
	}

	if len(d) > 5 {
		return nil, &ConfigError{Param: "D", Reason: "expected at most 5 distortion coefficients"}
	}

	coeffs := make([]float64, 5)
	copy(coeffs, d)

	return &LensModel{
		fx:   k[0][0],
		fy:   k[1][1],
		cx:   k[0][2],
		cy:   k[1][2],
		skew: k[0][1],
		k1:   coeffs[0],
		k2:   coeffs[1],
		p1:   coeffs[2],
		p2:   coeffs[3],
		k3:   coeffs[4],
	}, nil
}

// Undistort maps a raw camera pixel to undistorted pixel space by
// iteratively inverting the distortion model.  Points far outside the image
// may land where the model is not invertible; the result is then large or
// meaningless but never panics, so callers must tolerate such outputs.
func (l *LensModel) Undistort(u, v float64) (float64, float64) {

	// normalized camera ray of the distorted pixel
	y := (v - l.cy) / l.fy
	x := (u - l.cx - l.skew*y) / l.fx

	x0, y0 := x, y

	// fixed point iteration: repeatedly undo the distortion that the
	// current estimate would produce
	for i := 0; i < undistortIterations; i++ {

		r2 := x*x + y*y
		radial := 1 + r2*(l.k1+r2*(l.k2+r2*l.k3))

		if radial == 0 {
			break
		}

		dx := 2*l.p1*x*y + l.p2*(r2+2*x*x)
		dy := l.p1*(r2+2*y*y) + 2*l.p2*x*y

		nx := (x0 - dx) / radial
		ny := (y0 - dy) / radial

		moved := (nx-x)*(nx-x) + (ny-y)*(ny-y)
		x, y = nx, ny

		if moved < undistortEps {
			break
		}
	}

	return l.fx*x + l.skew*y + l.cx, l.fy*y + l.cy
}

// DistortProject maps an undistorted pixel back to raw pixel space by
// treating it as a normalized ray and reprojecting it through the full
// distortion model.  It is the inverse of Undistort for points inside the
// valid image region.
func (l *LensModel) DistortProject(u, v float64) (float64, float64) {

	y := (v - l.cy) / l.fy
	x := (u - l.cx - l.skew*y) / l.fx

	r2 := x*x + y*y
	radial := 1 + r2*(l.k1+r2*(l.k2+r2*l.k3))

	xd := x*radial + 2*l.p1*x*y + l.p2*(r2+2*x*x)
	yd := y*radial + l.p1*(r2+2*y*y) + 2*l.p2*x*y

	return l.fx*xd + l.skew*yd + l.cx, l.fy*yd + l.cy
}

package projection

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Homography maps undistorted camera pixels to ground map pixels through a
// 3x3 projective transform.  The inverse is derived once at construction,
// which fails when the matrix is singular.
type Homography struct {
	h    *mat.Dense
	hInv *mat.Dense
}

// NewHomography creates a Homography from a row-major 3x3 matrix mapping
// undistorted pixels to map pixels.  A singular matrix is rejected with a
// ConfigError.
func NewHomography(h [][]float64) (*Homography, error) {

	if len(h) != 3 || len(h[0]) != 3 || len(h[1]) != 3 || len(h[2]) != 3 {
		return nil, &ConfigError{Param: "H", Reason: "homography matrix must be 3x3"}
	}

	m := mat.NewDense(3, 3, []float64{
		h[0][0], h[0][1], h[0][2],
		h[1][0], h[1][1], h[1][2],
		h[2][0], h[2][1], h[2][2],
	})

	if det := mat.Det(m); math.Abs(det) < 1e-12 || math.IsNaN(det) {
		return nil, &ConfigError{Param: "H", Reason: "homography matrix is singular"}
	}

	var inv mat.Dense

	if err := inv.Inverse(m); err != nil {
		return nil, &ConfigError{Param: "H", Reason: "homography matrix is not invertible"}
	}

	return &Homography{h: m, hInv: &inv}, nil
}

// ToMap projects an undistorted pixel to map pixel coordinates.  A point
// whose projective divisor is near zero yields Inf/NaN coordinates which
// propagate rather than panic.
func (hm *Homography) ToMap(u, v float64) (float64, float64) {
	return applyProjective(hm.h, u, v)
}

// ToImage projects a map pixel back to undistorted pixel coordinates
func (hm *Homography) ToImage(x, y float64) (float64, float64) {
	return applyProjective(hm.hInv, x, y)
}

// applyProjective computes [x', y', w] = m * [x, y, 1] and divides by w
func applyProjective(m *mat.Dense, x, y float64) (float64, float64) {

	px := m.At(0, 0)*x + m.At(0, 1)*y + m.At(0, 2)
	py := m.At(1, 0)*x + m.At(1, 1)*y + m.At(1, 2)
	w := m.At(2, 0)*x + m.At(2, 1)*y + m.At(2, 2)

	return px / w, py / w
}

package layout

import (
	"math"
	"regexp"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// transformOpRe matches a single SVG transform operator, eg: rotate(45, 10, 10)
var transformOpRe = regexp.MustCompile(`(\w+)\s*\(([^)]+)\)`)

// argSplitRe splits operator arguments on spaces and/or commas
var argSplitRe = regexp.MustCompile(`[ ,]+`)

// identity3 returns a new 3x3 identity matrix
func identity3() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
}

// parseTransform converts an SVG transform attribute into a 3x3 affine
// matrix.  Supported operators are translate(tx[,ty]), rotate(deg[,cx,cy])
// and matrix(a,b,c,d,e,f), composed left to right in document order.
// Unknown operators and malformed arguments are ignored, leaving the
// running composition untouched.
func parseTransform(txt string) *mat.Dense {

	m := identity3()

	if txt == "" {
		return m
	}

	for _, op := range transformOpRe.FindAllStringSubmatch(txt, -1) {

		vals := parseArgs(op[2])

		if len(vals) == 0 {
			continue
		}

		var t *mat.Dense

		switch op[1] {
		case "translate":
			ty := 0.0
			if len(vals) > 1 {
				ty = vals[1]
			}
			t = identity3()
			t.Set(0, 2, vals[0])
			t.Set(1, 2, ty)

		case "rotate":
			rad := vals[0] * math.Pi / 180
			c, s := math.Cos(rad), math.Sin(rad)

			r := mat.NewDense(3, 3, []float64{
				c, -s, 0,
				s, c, 0,
				0, 0, 1,
			})

			if len(vals) == 3 {
				// rotation about a pivot: translate to the pivot,
				// rotate, translate back
				cx, cy := vals[1], vals[2]
				t1 := identity3()
				t1.Set(0, 2, cx)
				t1.Set(1, 2, cy)
				t2 := identity3()
				t2.Set(0, 2, -cx)
				t2.Set(1, 2, -cy)

				t = mat.NewDense(3, 3, nil)
				t.Mul(t1, r)
				t.Mul(t, t2)
			} else {
				t = r
			}

		case "matrix":
			if len(vals) < 6 {
				continue
			}
			t = mat.NewDense(3, 3, []float64{
				vals[0], vals[2], vals[4],
				vals[1], vals[3], vals[5],
				0, 0, 1,
			})

		default:
			continue
		}

		res := mat.NewDense(3, 3, nil)
		res.Mul(m, t)
		m = res
	}

	return m
}

// parseArgs splits an operator argument list into floats, dropping tokens
// that fail to parse
func parseArgs(args string) []float64 {

	var vals []float64

	for _, tok := range argSplitRe.Split(args, -1) {
		if tok == "" {
			continue
		}

		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			continue
		}

		vals = append(vals, v)
	}

	return vals
}

// applyAffine transforms the point (x, y) by the 3x3 affine matrix m
func applyAffine(m *mat.Dense, x, y float64) (float64, float64) {
	return m.At(0, 0)*x + m.At(0, 1)*y + m.At(0, 2),
		m.At(1, 0)*x + m.At(1, 1)*y + m.At(1, 2)
}

// alignmentMatrix builds the 3x3 alignment matrix from an optional 2x3
// affine A mapping layout coordinates into map pixels.  A nil or empty A
// yields the identity.
func alignmentMatrix(a [][]float64) *mat.Dense {

	m := identity3()

	if len(a) != 2 {
		return m
	}

	for i := 0; i < 2; i++ {
		if len(a[i]) != 3 {
			return identity3()
		}
		for j := 0; j < 3; j++ {
			m.Set(i, j, a[i][j])
		}
	}

	return m
}

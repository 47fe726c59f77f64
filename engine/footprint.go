package engine

import (
	"math"

	"github.com/duy-phamduc68/trafficlab-3d/projection"
)

// orientedFloorBox builds the 4-corner ground footprint of an object at
// the given map position, rotated to its heading.  The rectangle's long
// axis follows the direction of travel; corners are returned in a
// consistent winding so the 3D lift connects them in order.
func orientedFloorBox(center projection.Point, headingDeg, widthM, lengthM,
	pxPerMeter float64) [4]projection.Point {

	rad := headingDeg * math.Pi / 180
	c, s := math.Cos(rad), math.Sin(rad)

	dx := lengthM * pxPerMeter / 2
	dy := widthM * pxPerMeter / 2

	corners := [4][2]float64{
		{dx, dy},
		{dx, -dy},
		{-dx, -dy},
		{-dx, dy},
	}

	var out [4]projection.Point

	for i, p := range corners {
		out[i] = projection.Point{
			X: center.X + c*p[0] - s*p[1],
			Y: center.Y + s*p[0] + c*p[1],
		}
	}

	return out
}

package engine

import (
	"fmt"
	"image"
	"math"

	clipper "github.com/ctessum/go.clipper"
	"gocv.io/x/gocv"

	"github.com/duy-phamduc68/trafficlab-3d/projection"
)

// ROIMethod selects how much of a box must fall inside the region of
// interest for the detection to survive
type ROIMethod string

const (
	// ROIPartial keeps a box with any overlap with the region
	ROIPartial ROIMethod = "partial"
	// ROIIn requires all four box corners inside the region
	ROIIn ROIMethod = "in"
)

// clipperScale converts pixel coordinates to clipper's integer space with
// two decimal places of precision
const clipperScale = 100

// ROI gates detections against a region of interest, either a raster mask
// image or a polygon in camera pixel coordinates.  Boxes are expected to
// be clipped to the frame before testing.
type ROI struct {
	method ROIMethod

	// raster mode
	mask []bool
	w, h int

	// polygon mode
	polygon clipper.Path
}

// LoadROIMask builds a raster ROI from a mask image.  An RGBA mask marks
// the region where the inverted alpha exceeds 128 (ie: transparent areas
// are the region); a plain color mask marks it where the gray level
// exceeds 10.  The mask is resized to the camera resolution with nearest
// neighbor sampling when the sizes differ.
func LoadROIMask(path string, method ROIMethod, width, height int) (*ROI, error) {

	img := gocv.IMRead(path, gocv.IMReadUnchanged)

	if img.Empty() {
		return nil, fmt.Errorf("error reading ROI mask %s", path)
	}

	defer img.Close()

	if img.Cols() != width || img.Rows() != height {
		gocv.Resize(img, &img, image.Pt(width, height), 0, 0,
			gocv.InterpolationNearestNeighbor)
	}

	mask := make([]bool, width*height)

	if img.Channels() == 4 {

		chans := gocv.Split(img)
		alpha := chans[3]

		for row := 0; row < height; row++ {
			for col := 0; col < width; col++ {
				mask[row*width+col] = 255-int(alpha.GetUCharAt(row, col)) > 128
			}
		}

		for _, c := range chans {
			c.Close()
		}

	} else {

		gray := gocv.NewMat()
		defer gray.Close()

		if img.Channels() == 3 {
			gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
		} else {
			img.CopyTo(&gray)
		}

		for row := 0; row < height; row++ {
			for col := 0; col < width; col++ {
				mask[row*width+col] = gray.GetUCharAt(row, col) > 10
			}
		}
	}

	return &ROI{
		method: method,
		mask:   mask,
		w:      width,
		h:      height,
	}, nil
}

// NewROIPolygon builds a polygon ROI from region corners in camera pixel
// coordinates
func NewROIPolygon(points []projection.Point, method ROIMethod) *ROI {

	path := make(clipper.Path, 0, len(points))

	for _, p := range points {
		path = append(path, &clipper.IntPoint{
			X: clipper.CInt(math.Round(p.X * clipperScale)),
			Y: clipper.CInt(math.Round(p.Y * clipperScale)),
		})
	}

	return &ROI{
		method:  method,
		polygon: path,
	}
}

// Allows reports whether a frame-clipped box passes the region gate
func (r *ROI) Allows(rect Rect) bool {

	if r.mask != nil {
		return r.allowsMask(rect)
	}

	return r.allowsPolygon(rect)
}

// allowsMask tests the box against the raster mask
func (r *ROI) allowsMask(rect Rect) bool {

	x1 := int(rect.X())
	y1 := int(rect.Y())
	x2 := int(rect.BRX())
	y2 := int(rect.BRY())

	if r.method == ROIIn {

		corners := [4][2]int{{x1, y1}, {x2, y1}, {x1, y2}, {x2, y2}}

		for _, c := range corners {
			if !r.maskAt(c[0], c[1]) {
				return false
			}
		}

		return true
	}

	for row := y1; row < y2; row++ {
		for col := x1; col < x2; col++ {
			if r.maskAt(col, row) {
				return true
			}
		}
	}

	return false
}

// maskAt reads the mask with bounds clamping
func (r *ROI) maskAt(x, y int) bool {

	if x < 0 {
		x = 0
	} else if x >= r.w {
		x = r.w - 1
	}

	if y < 0 {
		y = 0
	} else if y >= r.h {
		y = r.h - 1
	}

	return r.mask[y*r.w+x]
}

// allowsPolygon tests the box against the polygon region by intersection
// area: any overlap passes the partial method, while the in method wants
// the intersection to cover the whole box
func (r *ROI) allowsPolygon(rect Rect) bool {

	box := clipper.Path{
		&clipper.IntPoint{X: scaleCoord(rect.X()), Y: scaleCoord(rect.Y())},
		&clipper.IntPoint{X: scaleCoord(rect.BRX()), Y: scaleCoord(rect.Y())},
		&clipper.IntPoint{X: scaleCoord(rect.BRX()), Y: scaleCoord(rect.BRY())},
		&clipper.IntPoint{X: scaleCoord(rect.X()), Y: scaleCoord(rect.BRY())},
	}

	c := clipper.NewClipper(clipper.IoNone)
	c.AddPath(box, clipper.PtSubject, true)
	c.AddPath(r.polygon, clipper.PtClip, true)

	solution, ok := c.Execute1(clipper.CtIntersection,
		clipper.PftNonZero, clipper.PftNonZero)

	if !ok {
		return false
	}

	overlap := 0.0
	for _, path := range solution {
		overlap += math.Abs(pathArea(path))
	}

	if r.method == ROIIn {
		boxArea := math.Abs(pathArea(box))
		return boxArea > 0 && overlap >= boxArea*0.999
	}

	return overlap > 0
}

// scaleCoord converts a pixel coordinate into clipper integer space
func scaleCoord(v float64) clipper.CInt {
	return clipper.CInt(math.Round(v * clipperScale))
}

// pathArea computes the signed shoelace area of a clipper path
func pathArea(path clipper.Path) float64 {

	if len(path) < 3 {
		return 0
	}

	area := 0.0
	j := len(path) - 1

	for i := range path {
		area += float64(path[j].X+path[i].X) * float64(path[j].Y-path[i].Y)
		j = i
	}

	return area / 2
}

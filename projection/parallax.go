package projection

import "math"

// parallaxSingularity is the camera-height to object-height gap below
// which ProjectRealToApparent falls back to the identity mapping.  The
// scale factor diverges as the gap approaches zero; the threshold and
// fallback value are part of the model's contract and must not be retuned.
const parallaxSingularity = 0.01

// ParallaxModel corrects for the apparent displacement of elevated points
// on the ground map.  A camera at ground footprint C and height zCam sees
// the ground projection of an elevated point pulled away from C compared
// to the point's true ground position.
type ParallaxModel struct {
	zCam       float64
	camX, camY float64
	pxPerMeter float64
}

// NewParallaxModel creates a ParallaxModel.  zCam is the camera height
// above the ground plane in meters, camX/camY the camera ground footprint
// in map pixels.  A degenerate pxPerMeter (<= 0.001) is defaulted to 1.0.
func NewParallaxModel(zCam, camX, camY, pxPerMeter float64) *ParallaxModel {

	if pxPerMeter <= 0.001 {
		pxPerMeter = 1.0
	}

	return &ParallaxModel{
		zCam:       zCam,
		camX:       camX,
		camY:       camY,
		pxPerMeter: pxPerMeter,
	}
}

// PxPerMeter returns the map scale in pixels per real-world meter
func (p *ParallaxModel) PxPerMeter() float64 {
	return p.pxPerMeter
}

// CamHeight returns the camera height above the ground plane in meters
func (p *ParallaxModel) CamHeight() float64 {
	return p.zCam
}

// CorrectApparentToReal maps the apparent ground position of a point at
// height h to its true ground position.  With the camera at ground level
// (zCam == 0) there is no parallax and the point is returned unchanged.
// Callers must not pass h > zCam; the factor then goes negative and
// mirrors the point through the camera footprint, without crashing.
func (p *ParallaxModel) CorrectApparentToReal(x, y, h float64) (float64, float64) {

	if p.zCam == 0 {
		return x, y
	}

	factor := (p.zCam - h) / p.zCam

	return p.camX + (x-p.camX)*factor, p.camY + (y-p.camY)*factor
}

// ProjectRealToApparent maps the true ground position of a point at height
// h to where its ground projection appears.  It is the inverse of
// CorrectApparentToReal for 0 < h < zCam.  When the object height is
// within parallaxSingularity of the camera height the factor diverges and
// the point is returned unchanged as a numerically safe fallback.
func (p *ParallaxModel) ProjectRealToApparent(x, y, h float64) (float64, float64) {

	if math.Abs(p.zCam-h) < parallaxSingularity {
		return x, y
	}

	factor := p.zCam / (p.zCam - h)

	return p.camX + (x-p.camX)*factor, p.camY + (y-p.camY)*factor
}

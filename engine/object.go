package engine

import (
	"github.com/duy-phamduc68/trafficlab-3d/projection"
)

// Detection is one detected object supplied by the external
// detector/tracker for a frame
type Detection struct {
	// Rect is the bounding box of the detected object
	Rect Rect
	// Class is the detector's class label, eg: car
	Class string
	// Confidence is the detection score
	Confidence float64
	// TrackID is the tracker-assigned identity, valid only when Tracked
	// is set; untracked detections are projected but get no kinematics
	TrackID int64
	Tracked bool
}

// Object is the per-object result record produced for each detection that
// passes the region-of-interest gate
type Object struct {
	// Index is the detection's position within its frame
	Index int
	// TrackID echoes the input identity, valid only when Tracked is set
	TrackID int64
	Tracked bool
	// Class echoes the detector class label
	Class string
	// Confidence echoes the detection score
	Confidence float64
	// Box echoes the input bounding box
	Box Rect

	// ReferencePoint is the camera pixel projected to the ground
	ReferencePoint projection.Point
	// MapCoords is the object's ground position in map pixels
	MapCoords projection.Point

	// HaveMeasurements is set when a physical dimension prior exists for
	// the class; without it all 3D footprint output is skipped
	HaveMeasurements bool
	// HaveHeading is set when Heading holds a usable value
	HaveHeading bool
	// DefaultHeading marks a heading taken from a guideline rather than
	// observed motion
	DefaultHeading bool
	// Heading is the smoothed travel direction in degrees [0, 360)
	Heading float64
	// SpeedKMH is the smoothed speed, zero when no heading is available
	SpeedKMH float64

	// FloorBox is the oriented 4-point ground footprint in map pixels,
	// nil when heading or measurements are missing
	FloorBox []projection.Point
	// Box3D is the 8-point 3D wireframe in camera pixels, floor corners
	// first then ceiling corners, nil when FloorBox is nil
	Box3D []projection.Point
}

// FrameResult is the engine's output for one video frame
type FrameResult struct {
	// FrameIndex is the caller-supplied frame number
	FrameIndex int
	// Objects holds one record per surviving detection, in input order
	Objects []Object
}

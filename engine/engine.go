// Package engine wires the projection, layout and kinematics cores into a
// per-frame pipeline for callers that supply detections with stable track
// identities.  The engine owns one kinematic smoother per track id and
// must be fed frames in increasing order.
package engine

import (
	"fmt"

	trafficlab "github.com/duy-phamduc68/trafficlab-3d"
	"github.com/duy-phamduc68/trafficlab-3d/kinematics"
	"github.com/duy-phamduc68/trafficlab-3d/layout"
	"github.com/duy-phamduc68/trafficlab-3d/projection"
)

// defaultFPS is assumed when the caller does not supply a frame rate
const defaultFPS = 30.0

// Options configures an Engine beyond what the calibration file provides
type Options struct {
	// FPS is the footage frame rate used to derive per-track dt values;
	// zero assumes 30
	FPS float64
	// Kinematics tunes the per-track smoothers; zero values take defaults
	Kinematics kinematics.Config
	// Dimensions supplies class physical size priors; classes without an
	// entry get no 3D footprint output
	Dimensions trafficlab.DimensionSet
	// TrackExpiryFrames drops a track's smoother after this many missed
	// frames.  Zero keeps smoother state resident for the whole run,
	// matching the historic behavior.
	TrackExpiryFrames int
}

// trackEntry pairs a track's smoother with bookkeeping for dt computation
// and eviction
type trackEntry struct {
	smoother *kinematics.Smoother
	lastSeen int
}

// Engine is the per-frame processing pipeline.  It is not safe for
// concurrent use: frames must be processed one at a time, in order.
type Engine struct {
	proj  *projection.Projector
	index *layout.Index
	roi   *ROI
	dims  trafficlab.DimensionSet

	refMethod  projection.RefMethod
	projMethod projection.ProjMethod

	width, height int
	fps           float64
	kinCfg        kinematics.Config
	expiry        int

	tracks map[int64]*trackEntry
}

// NewEngine builds the full pipeline from a loaded calibration.  The
// guideline index and region-of-interest gate are only constructed when
// the calibration enables them.
func NewEngine(cal *trafficlab.Calibration, opts Options) (*Engine, error) {

	lens, err := projection.NewLensModel(cal.Undistort.K, cal.Undistort.D)

	if err != nil {
		return nil, err
	}

	hom, err := projection.NewHomography(cal.Homograph.H)

	if err != nil {
		return nil, err
	}

	par := projection.NewParallaxModel(
		cal.Parallax.ZCamMeters,
		cal.Parallax.XCamSat,
		cal.Parallax.YCamSat,
		cal.Parallax.PxPerMeter,
	)

	e := &Engine{
		proj:       projection.NewProjector(lens, hom, par),
		dims:       opts.Dimensions,
		refMethod:  projection.RefMethod(cal.RefMethod),
		projMethod: projection.ProjMethod(cal.ProjMethod),
		fps:        opts.FPS,
		kinCfg:     opts.Kinematics,
		expiry:     opts.TrackExpiryFrames,
		tracks:     make(map[int64]*trackEntry),
	}

	if e.refMethod == "" {
		e.refMethod = projection.RefCenterBottom
	}

	if e.projMethod == "" {
		e.projMethod = projection.ProjDownH
	}

	if e.fps <= 0 {
		e.fps = defaultFPS
	}

	if len(cal.Undistort.Resolution) == 2 {
		e.width = cal.Undistort.Resolution[0]
		e.height = cal.Undistort.Resolution[1]
	}

	if cal.UseSVG && cal.Inputs.LayoutPath != "" {

		e.index, err = layout.Load(cal.ResolvePath(cal.Inputs.LayoutPath), cal.LayoutSVG.A)

		if err != nil {
			return nil, fmt.Errorf("error loading guideline layout: %w", err)
		}
	}

	if cal.UseROI && cal.Inputs.ROIPath != "" {

		if e.width == 0 || e.height == 0 {
			return nil, fmt.Errorf("ROI enabled but undistort.resolution is unset")
		}

		method := ROIMethod(cal.ROIMethod)
		if method == "" {
			method = ROIPartial
		}

		e.roi, err = LoadROIMask(cal.ResolvePath(cal.Inputs.ROIPath), method,
			e.width, e.height)

		if err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Projector returns the underlying ground projector
func (e *Engine) Projector() *projection.Projector {
	return e.proj
}

// Guidelines returns the loaded guideline index, nil when the calibration
// does not use a layout
func (e *Engine) Guidelines() *layout.Index {
	return e.index
}

// SetROI replaces the region-of-interest gate, mainly to install a
// polygon ROI built with NewROIPolygon
func (e *Engine) SetROI(roi *ROI) {
	e.roi = roi
}

// Reset clears all per-track smoother state
func (e *Engine) Reset() {
	e.tracks = make(map[int64]*trackEntry)
}

// TrackState returns the smoother state for a track id, for diagnostics
func (e *Engine) TrackState(id int64) (kinematics.State, bool) {

	entry, ok := e.tracks[id]

	if !ok {
		return kinematics.Uninitialized, false
	}

	return entry.smoother.State(), true
}

// ProcessFrame runs one frame's detections through the pipeline.
// frameIdx must increase across calls; gaps are fine and widen the dt
// seen by the affected tracks.
func (e *Engine) ProcessFrame(frameIdx int, detections []Detection) FrameResult {

	result := FrameResult{FrameIndex: frameIdx}

	for i, det := range detections {

		if e.roi != nil {

			clipped, ok := det.Rect.ClipTo(e.width, e.height)

			if !ok || !e.roi.Allows(clipped) {
				continue
			}
		}

		dims, haveMeasurements := e.dims.Lookup(det.Class)

		heightM := 0.0
		if haveMeasurements {
			heightM = dims.Height
		}

		gc := e.proj.GroundContactFromBox(
			det.Rect.X(), det.Rect.Y(), det.Rect.Width(), det.Rect.Height(),
			heightM, e.refMethod, e.projMethod)

		obj := Object{
			Index:            i,
			TrackID:          det.TrackID,
			Tracked:          det.Tracked,
			Class:            det.Class,
			Confidence:       det.Confidence,
			Box:              det.Rect,
			ReferencePoint:   gc.ImageRef,
			MapCoords:        gc.MapCoords,
			HaveMeasurements: haveMeasurements,
		}

		if det.Tracked {

			est := e.updateTrack(det.TrackID, frameIdx, gc.MapCoords)

			obj.Heading = est.Heading
			obj.HaveHeading = est.HaveHeading
			obj.DefaultHeading = est.DefaultHeading
			obj.SpeedKMH = est.SpeedKMH
		}

		// a speed with no direction is not reportable
		if !obj.HaveHeading {
			obj.SpeedKMH = 0
		}

		// only a heading observed from motion is trusted to orient the
		// 3D footprint
		if obj.HaveHeading && !obj.DefaultHeading && haveMeasurements {

			floor := orientedFloorBox(gc.MapCoords, obj.Heading,
				dims.Width, dims.Length, e.proj.Parallax().PxPerMeter())

			box3d := e.proj.FloorToImage3D(floor, heightM)

			obj.FloorBox = floor[:]
			obj.Box3D = box3d[:]
		}

		result.Objects = append(result.Objects, obj)
	}

	e.evict(frameIdx)

	return result
}

// updateTrack feeds one observation to the track's smoother, creating it
// on first sighting
func (e *Engine) updateTrack(id int64, frameIdx int, pos projection.Point) kinematics.Estimate {

	entry, ok := e.tracks[id]

	if !ok {
		entry = &trackEntry{
			smoother: kinematics.NewSmoother(e.kinCfg),
			lastSeen: frameIdx - 1,
		}
		e.tracks[id] = entry
	}

	dt := float64(frameIdx-entry.lastSeen) / e.fps

	if dt <= 0 {
		dt = 1 / e.fps
	}

	obs := kinematics.Observation{
		X:          pos.X,
		Y:          pos.Y,
		DT:         dt,
		PxPerMeter: e.proj.Parallax().PxPerMeter(),
	}

	if e.index != nil {
		if h, ok := e.index.NearestHeading(pos.X, pos.Y); ok {
			obs.GuidelineHeading = h
			obs.HaveGuideline = true
		}
	}

	est := entry.smoother.Update(obs)
	entry.lastSeen = frameIdx

	return est
}

// evict drops smoother state for tracks that have been missing longer
// than the expiry window
func (e *Engine) evict(frameIdx int) {

	if e.expiry <= 0 {
		return
	}

	for id, entry := range e.tracks {
		if frameIdx-entry.lastSeen > e.expiry {
			delete(e.tracks, id)
		}
	}
}

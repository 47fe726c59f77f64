// Package kinematics turns a stream of noisy per-frame ground positions
// for one tracked object into stable speed and heading estimates.  Each
// Smoother owns the state for exactly one track id and must be updated
// once per frame in frame order; different tracks may be updated
// concurrently since they share nothing.
package kinematics

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	// maxPhysicsSpeedKMH is the plausibility cap; a single-frame
	// displacement implying more than this rejects the update, which
	// suppresses tracking glitches and ID-swap teleports
	maxPhysicsSpeedKMH = 200.0

	// regressionWindow is the position history length used for the
	// regression heading fit
	regressionWindow = 8

	// minRegressionDispPx is the minimum first-to-last displacement for
	// the regression fit to be meaningful
	minRegressionDispPx = 2.0

	// minBearingDispPx is the minimum two-point displacement for the raw
	// bearing fallback
	minBearingDispPx = 0.5

	// velocityAlpha is the fixed low-pass factor of the intermediate
	// velocity-direction stage that absorbs single-frame direction noise
	// before the main heading filter
	velocityAlpha = 0.25

	// snapGateDeg and snapPull control guideline snapping: headings
	// within the gate of the guideline are pulled this fraction toward it
	snapGateDeg = 15.0
	snapPull    = 0.3
)

// State is the smoother's position in its update cycle
type State int

const (
	// Uninitialized means no usable estimate exists yet
	Uninitialized State = iota
	// Gated means the last update was rejected by the physics speed cap
	Gated
	// Jittering means the track is held stationary by jitter detection
	Jittering
	// Tracking means estimates are being produced normally
	Tracking
)

// String returns the state name
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Gated:
		return "gated"
	case Jittering:
		return "jittering"
	case Tracking:
		return "tracking"
	}
	return "unknown"
}

// Observation is one frame's input for a track
type Observation struct {
	// X, Y is the track's current ground position in map pixels
	X, Y float64
	// DT is the time since the track's previous observation, seconds
	DT float64
	// PxPerMeter converts map pixel distances to meters
	PxPerMeter float64
	// GuidelineHeading is the nearest guideline heading in degrees,
	// valid only when HaveGuideline is set
	GuidelineHeading float64
	HaveGuideline    bool
}

// Estimate is the smoothed output for one update
type Estimate struct {
	// SpeedKMH is the smoothed speed, zero before the first measurement
	SpeedKMH float64
	// Heading is the smoothed heading in degrees [0, 360), valid only
	// when HaveHeading is set
	Heading     float64
	HaveHeading bool
	// DefaultHeading marks a heading taken directly from a guideline
	// rather than observed motion; such headings should not drive 3D
	// footprint construction
	DefaultHeading bool
}

// Smoother is the per-track kinematic state machine.  It consumes one
// Observation per frame and produces smoothed speed and heading, with a
// physics gate against teleports, jitter suppression for stationary
// tracks, a regression heading over a bounded window, vector-domain
// heading smoothing with an adaptive alpha and a per-update jump clamp,
// and optional snapping toward guideline headings.
type Smoother struct {
	cfg   Config
	state State

	// smoothed speed in km/h
	speed     float64
	haveSpeed bool

	// smoothed heading unit vector
	headingX, headingY float64
	haveHeading        bool

	// intermediate low-pass velocity direction
	velX, velY float64
	haveVel    bool

	window *Window
	jitter *Window
}

// NewSmoother creates a Smoother for one track.  Zero values in cfg take
// defaults.
func NewSmoother(cfg Config) *Smoother {

	cfg = cfg.withDefaults()

	return &Smoother{
		cfg:    cfg,
		state:  Uninitialized,
		window: NewWindow(regressionWindow),
		jitter: NewWindow(cfg.JitterFrames),
	}
}

// State returns the smoother's current state
func (s *Smoother) State() State {
	return s.state
}

// Update consumes one frame's observation and returns the smoothed
// estimate.  Updates must arrive in frame order.
func (s *Smoother) Update(obs Observation) Estimate {

	// physics gate: reject displacements no real object could produce
	if obs.DT > 0 && s.window.Len() > 0 {

		prev := s.window.Last()
		distM := math.Hypot(obs.X-prev.X, obs.Y-prev.Y) / obs.PxPerMeter

		if (distM/obs.DT)*3.6 > maxPhysicsSpeedKMH {
			s.state = Gated
			return s.currentEstimate()
		}
	}

	s.window.Push(Point{X: obs.X, Y: obs.Y})
	s.jitter.Push(Point{X: obs.X, Y: obs.Y})

	isJittering := s.checkJitter(obs.PxPerMeter)

	rawSpeed := 0.0
	rawHeading := 0.0
	haveRawHeading := false

	if obs.DT > 0 && s.window.Len() >= 2 {

		prev := s.window.At(s.window.Len() - 2)
		distPx := math.Hypot(obs.X-prev.X, obs.Y-prev.Y)
		rawSpeed = (distPx / obs.PxPerMeter / obs.DT) * 3.6

		if reg, ok := s.regressionHeading(); ok {
			rawHeading = reg
			haveRawHeading = true
		} else if distPx > minBearingDispPx {
			rawHeading = vecToDeg(obs.X-prev.X, obs.Y-prev.Y)
			haveRawHeading = true
		}
	}

	s.smoothSpeed(rawSpeed)

	est := Estimate{SpeedKMH: s.speed}

	if rawSpeed > s.cfg.HeadingMinSpeedForUpdate && !isJittering && haveRawHeading {

		heading := s.smoothHeading(rawHeading, rawSpeed)

		if obs.HaveGuideline {
			heading = snapToGuideline(heading, obs.GuidelineHeading)
		}

		est.Heading = heading
		est.HaveHeading = true
	} else if s.haveHeading {
		est.Heading = vecToDeg(s.headingX, s.headingY)
		est.HaveHeading = true
	} else if obs.HaveGuideline {
		est.Heading = obs.GuidelineHeading
		est.HaveHeading = true
		est.DefaultHeading = true
	}

	switch {
	case isJittering:
		s.state = Jittering
	case s.haveHeading || haveRawHeading:
		s.state = Tracking
	default:
		s.state = Uninitialized
	}

	return est
}

// currentEstimate reports the held state without consuming an observation
func (s *Smoother) currentEstimate() Estimate {

	est := Estimate{SpeedKMH: s.speed}

	if s.haveHeading {
		est.Heading = vecToDeg(s.headingX, s.headingY)
		est.HaveHeading = true
	}

	return est
}

// checkJitter reports whether the recent positions fit inside the
// configured stationary radius
func (s *Smoother) checkJitter(pxPerMeter float64) bool {

	if s.jitter.Len() < 2 {
		return false
	}

	min, max := s.jitter.Bounds()

	return math.Hypot(max.X-min.X, max.Y-min.Y) < s.cfg.JitterRadius*pxPerMeter
}

// smoothSpeed folds a raw speed sample into the EMA speed state
func (s *Smoother) smoothSpeed(raw float64) {

	if !s.haveSpeed {
		s.speed = raw
		s.haveSpeed = true
		return
	}

	a := s.cfg.SpeedEMAAlpha
	s.speed = a*raw + (1-a)*s.speed
}

// regressionHeading fits a line through the position window and returns
// its direction, disambiguated by the first-to-last displacement so the
// line points in the direction of travel.  The fit is the total least
// squares axis, ie the principal eigenvector of the window covariance.
func (s *Smoother) regressionHeading() (float64, bool) {

	n := s.window.Len()

	if n < 3 {
		return 0, false
	}

	first := s.window.At(0)
	last := s.window.Last()

	dispX := last.X - first.X
	dispY := last.Y - first.Y

	if math.Hypot(dispX, dispY) < minRegressionDispPx {
		return 0, false
	}

	data := mat.NewDense(n, 2, nil)
	for i, p := range s.window.Points() {
		data.Set(i, 0, p.X)
		data.Set(i, 1, p.Y)
	}

	cov := mat.NewSymDense(2, nil)
	stat.CovarianceMatrix(cov, data, nil)

	var eig mat.EigenSym
	if !eig.Factorize(cov, true) {
		return 0, false
	}

	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// eigenvalues are ascending, the principal axis is the last column
	vx := vecs.At(0, 1)
	vy := vecs.At(1, 1)

	if dispX*vx+dispY*vy < 0 {
		vx, vy = -vx, -vy
	}

	return vecToDeg(vx, vy), true
}

// smoothHeading folds a raw heading sample into the heading state and
// returns the new heading in degrees.  The sample first passes through
// the fixed velocity-direction EMA, then blends with the previous heading
// under an alpha that grows with speed, and finally the applied change is
// clamped to the configured per-update maximum.
func (s *Smoother) smoothHeading(rawDeg, speedKMH float64) float64 {

	curX, curY := degToVec(rawDeg)

	if !s.haveVel {
		s.velX, s.velY = curX, curY
		s.haveVel = true
	} else {
		vx := velocityAlpha*curX + (1-velocityAlpha)*s.velX
		vy := velocityAlpha*curY + (1-velocityAlpha)*s.velY

		if n := math.Hypot(vx, vy); n > 1e-9 {
			s.velX, s.velY = vx/n, vy/n
		}
	}

	curX, curY = s.velX, s.velY

	if !s.haveHeading {
		s.headingX, s.headingY = curX, curY
		s.haveHeading = true
		return vecToDeg(curX, curY)
	}

	// adaptive alpha: faster objects adapt heading faster
	ratio := math.Min(1, speedKMH/3.6/s.cfg.HeadingEMA.SpeedRef)
	alpha := s.cfg.HeadingEMA.AlphaMin +
		(s.cfg.HeadingEMA.AlphaMax-s.cfg.HeadingEMA.AlphaMin)*ratio

	newX := alpha*curX + (1-alpha)*s.headingX
	newY := alpha*curY + (1-alpha)*s.headingY

	if n := math.Hypot(newX, newY); n > 1e-9 {
		newX, newY = newX/n, newY/n
	}

	targetDeg := vecToDeg(newX, newY)
	prevDeg := vecToDeg(s.headingX, s.headingY)

	delta := wrap180(targetDeg - prevDeg)

	if math.Abs(delta) > s.cfg.HeadingMaxJump {
		delta = clampF(delta, -s.cfg.HeadingMaxJump, s.cfg.HeadingMaxJump)
		targetDeg = norm360(prevDeg + delta)
	}

	s.headingX, s.headingY = degToVec(targetDeg)

	return targetDeg
}

// snapToGuideline pulls a heading partway toward the nearest guideline
// heading when they are already close.  Snapping never moves a heading by
// more than the gate allows and is not persisted into the smoother state.
func snapToGuideline(headingDeg, guidelineDeg float64) float64 {

	diff := wrap180(headingDeg - guidelineDeg)

	if math.Abs(diff) < snapGateDeg {
		return norm360(headingDeg - diff*snapPull)
	}

	return headingDeg
}

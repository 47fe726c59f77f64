package kinematics

import (
	"math"
	"testing"
)

// almostEqual checks if two float64 values are approximately equal
func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

// obsAt builds a plain observation at the given map position with one
// second between frames and a 1:1 pixel scale
func obsAt(x, y float64) Observation {
	return Observation{X: x, Y: y, DT: 1, PxPerMeter: 1}
}

// driveEast feeds n observations moving +10 px per second along the x
// axis starting at (x0, 0), establishing heading 0
func driveEast(s *Smoother, x0 float64, n int) Estimate {

	var est Estimate

	for i := 0; i < n; i++ {
		est = s.Update(obsAt(x0+float64(i)*10, 0))
	}

	return est
}

// TestSmootherFirstObservation checks the initial update produces no
// heading and zero speed
func TestSmootherFirstObservation(t *testing.T) {

	s := NewSmoother(Config{})

	est := s.Update(obsAt(0, 0))

	if est.HaveHeading {
		t.Error("first observation should not produce a heading")
	}

	if est.SpeedKMH != 0 {
		t.Errorf("first observation speed = %v, expected 0", est.SpeedKMH)
	}

	if s.State() != Uninitialized {
		t.Errorf("state = %v, expected uninitialized", s.State())
	}
}

// TestSmootherSpeedEMA checks the speed low-pass with the default alpha:
// constant 10 px/s motion at 1 px/m is 36 km/h raw, folded in at 0.4
func TestSmootherSpeedEMA(t *testing.T) {

	s := NewSmoother(Config{})

	s.Update(obsAt(0, 0))
	est := s.Update(obsAt(10, 0))

	// 0.4*36 + 0.6*0
	if !almostEqual(est.SpeedKMH, 14.4, 1e-9) {
		t.Errorf("second update speed = %v, expected 14.4", est.SpeedKMH)
	}

	est = s.Update(obsAt(20, 0))

	// 0.4*36 + 0.6*14.4
	if !almostEqual(est.SpeedKMH, 23.04, 1e-9) {
		t.Errorf("third update speed = %v, expected 23.04", est.SpeedKMH)
	}
}

// TestSmootherHeadingFromMotion checks steady motion along +x produces
// heading 0 and the tracking state
func TestSmootherHeadingFromMotion(t *testing.T) {

	s := NewSmoother(Config{})

	est := driveEast(s, 0, 4)

	if !est.HaveHeading {
		t.Fatal("expected a heading from steady motion")
	}

	if !almostEqual(est.Heading, 0, 1e-9) {
		t.Errorf("heading = %v, expected 0", est.Heading)
	}

	if est.DefaultHeading {
		t.Error("motion-derived heading must not be marked default")
	}

	if s.State() != Tracking {
		t.Errorf("state = %v, expected tracking", s.State())
	}
}

// TestSmootherPhysicsGate checks a displacement implying over 200 km/h
// is rejected wholesale: state held, position not ingested
func TestSmootherPhysicsGate(t *testing.T) {

	s := NewSmoother(Config{})

	est := driveEast(s, 0, 3)
	speedBefore := est.SpeedKMH

	// 1000 px in one second at 1 px/m is 3600 km/h
	est = s.Update(obsAt(1030, 0))

	if s.State() != Gated {
		t.Fatalf("state = %v, expected gated", s.State())
	}

	if est.SpeedKMH != speedBefore {
		t.Errorf("gated speed = %v, expected held at %v", est.SpeedKMH, speedBefore)
	}

	if !est.HaveHeading || !almostEqual(est.Heading, 0, 1e-9) {
		t.Errorf("gated heading = %v (have=%v), expected held at 0",
			est.Heading, est.HaveHeading)
	}

	// the teleport was not pushed into the history, so resuming normal
	// motion is not itself gated
	est = s.Update(obsAt(30, 0))

	if s.State() == Gated {
		t.Error("normal motion after a gated frame should not be gated")
	}
}

// TestSmootherPhysicsGateNoPrior checks the very first observation large
// jump cannot be gated since there is no prior position
func TestSmootherPhysicsGateNoPrior(t *testing.T) {

	s := NewSmoother(Config{})

	est := s.Update(obsAt(100000, 0))

	if s.State() == Gated {
		t.Error("first observation must not be gated")
	}

	if est.SpeedKMH != 0 {
		t.Errorf("speed = %v, expected 0", est.SpeedKMH)
	}
}

// TestSmootherJitterFreezesHeading checks a stationary track keeps its
// last stable heading unchanged, never marked default
func TestSmootherJitterFreezesHeading(t *testing.T) {

	s := NewSmoother(Config{})

	est := driveEast(s, 0, 4)
	frozen := est.Heading

	// small oscillation well inside the default 0.6m jitter radius
	for i := 0; i < 12; i++ {

		dx := 0.05 * float64(i%2)
		est = s.Update(obsAt(30+dx, 0))

		if !est.HaveHeading {
			t.Fatal("heading must persist through jitter")
		}

		if est.DefaultHeading {
			t.Error("held heading must not be marked default")
		}

		if !almostEqual(est.Heading, frozen, 1e-9) {
			t.Errorf("heading drifted to %v during jitter, expected %v",
				est.Heading, frozen)
		}
	}

	if s.State() != Jittering {
		t.Errorf("state = %v, expected jittering", s.State())
	}
}

// TestSmootherHeadingJumpClamp checks a direction reversal changes the
// heading by at most the configured jump per update
func TestSmootherHeadingJumpClamp(t *testing.T) {

	s := NewSmoother(Config{})

	est := driveEast(s, 0, 5)
	prev := est.Heading

	// reverse direction, slightly off axis so the motion is not exactly
	// collinear with the established heading
	x, y := 40.0, 0.0

	for i := 0; i < 30; i++ {

		x -= 10
		y += 1

		est = s.Update(Observation{X: x, Y: y, DT: 1, PxPerMeter: 1})

		if !est.HaveHeading {
			t.Fatal("expected a heading throughout the reversal")
		}

		delta := math.Abs(wrap180(est.Heading - prev))

		if delta > 5+1e-9 {
			t.Fatalf("update %d jumped %v degrees, expected at most 5", i, delta)
		}

		prev = est.Heading
	}
}

// TestSmootherDefaultHeadingFromGuideline checks a track with no usable
// motion adopts the guideline heading and marks it default
func TestSmootherDefaultHeadingFromGuideline(t *testing.T) {

	s := NewSmoother(Config{})

	obs := obsAt(0, 0)
	obs.GuidelineHeading = 135
	obs.HaveGuideline = true

	est := s.Update(obs)

	if !est.HaveHeading {
		t.Fatal("expected the guideline heading")
	}

	if est.Heading != 135 {
		t.Errorf("heading = %v, expected 135", est.Heading)
	}

	if !est.DefaultHeading {
		t.Error("guideline-sourced heading must be marked default")
	}
}

// TestSmootherGuidelineSnapping checks a motion heading within the snap
// gate is pulled 30% toward the guideline, and one outside is untouched
func TestSmootherGuidelineSnapping(t *testing.T) {

	tests := []struct {
		name      string
		guideline float64
		want      float64
	}{
		// heading 0, diff -10 within the gate: 0 - (-10*0.3) = 3
		{"inside gate pulls toward guideline", 10, 3},
		// diff -90 outside the gate: unchanged
		{"outside gate leaves heading alone", 90, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {

			s := NewSmoother(Config{})

			driveEast(s, 0, 4)

			obs := obsAt(40, 0)
			obs.GuidelineHeading = tt.guideline
			obs.HaveGuideline = true

			est := s.Update(obs)

			if !est.HaveHeading || est.DefaultHeading {
				t.Fatal("expected a non-default motion heading")
			}

			if !almostEqual(est.Heading, tt.want, 1e-9) {
				t.Errorf("heading = %v, expected %v", est.Heading, tt.want)
			}
		})
	}
}

// TestSmootherSnapNotPersisted checks snapping adjusts the reported
// heading only; the internal state continues from the unsnapped value
func TestSmootherSnapNotPersisted(t *testing.T) {

	s := NewSmoother(Config{})

	driveEast(s, 0, 4)

	obs := obsAt(40, 0)
	obs.GuidelineHeading = 10
	obs.HaveGuideline = true
	s.Update(obs)

	// without a guideline the heading comes straight from the state,
	// which the snap must not have moved
	est := s.Update(obsAt(50, 0))

	if !almostEqual(est.Heading, 0, 1e-9) {
		t.Errorf("heading = %v, expected 0 (snap leaked into state)", est.Heading)
	}
}

// TestSmootherRegressionHeadingDirection checks the window regression
// points the fitted line in the direction of travel, including straight
// vertical motion
func TestSmootherRegressionHeadingDirection(t *testing.T) {

	s := NewSmoother(Config{})

	var est Estimate

	// move in -y: bearing and regression both give 270
	for i := 0; i < 5; i++ {
		est = s.Update(obsAt(0, -float64(i)*10))
	}

	if !est.HaveHeading {
		t.Fatal("expected a heading")
	}

	if !almostEqual(est.Heading, 270, 1e-9) {
		t.Errorf("heading = %v, expected 270", est.Heading)
	}
}

// TestSmootherBelowMinSpeedHoldsHeading checks sub-threshold motion does
// not update the heading but keeps reporting the last one
func TestSmootherBelowMinSpeedHoldsHeading(t *testing.T) {

	cfg := Config{HeadingMinSpeedForUpdate: 50}

	s := NewSmoother(cfg)

	// 36 km/h raw is below the 50 km/h threshold, so after the motion
	// no heading should ever have been produced from it
	est := driveEast(s, 0, 4)

	if est.HaveHeading {
		t.Error("expected no heading below the speed threshold")
	}
}

// TestSmootherZeroDT checks a non-positive dt yields no speed sample and
// no crash
func TestSmootherZeroDT(t *testing.T) {

	s := NewSmoother(Config{})

	s.Update(obsAt(0, 0))

	est := s.Update(Observation{X: 10, Y: 0, DT: 0, PxPerMeter: 1})

	if est.SpeedKMH != 0 {
		t.Errorf("speed = %v, expected 0 for dt=0", est.SpeedKMH)
	}
}

// TestStateString covers the state names
func TestStateString(t *testing.T) {

	tests := []struct {
		state State
		want  string
	}{
		{Uninitialized, "uninitialized"},
		{Gated, "gated"},
		{Jittering, "jittering"},
		{Tracking, "tracking"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, expected %q", tt.state, got, tt.want)
		}
	}
}

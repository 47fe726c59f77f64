package kinematics

import "math"

// vecToDeg converts a direction vector to degrees in [0, 360)
func vecToDeg(x, y float64) float64 {
	return norm360(math.Atan2(y, x) * 180 / math.Pi)
}

// degToVec converts degrees to a unit direction vector
func degToVec(deg float64) (float64, float64) {
	rad := deg * math.Pi / 180
	return math.Cos(rad), math.Sin(rad)
}

// norm360 wraps an angle into [0, 360)
func norm360(deg float64) float64 {
	return math.Mod(math.Mod(deg, 360)+360, 360)
}

// wrap180 returns the shortest signed angular difference, in [-180, 180).
// An exact 180 degree difference resolves to -180, so reversals clamp in
// the negative direction.
func wrap180(deg float64) float64 {
	return math.Mod(math.Mod(deg+180, 360)+360, 360) - 180
}

// clampF restricts val to the range [min, max]
func clampF(val, min, max float64) float64 {

	if val <= min {
		return min
	}

	if val >= max {
		return max
	}

	return val
}

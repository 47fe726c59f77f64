package kinematics

// HeadingEMA tunes the adaptive exponential moving average applied to the
// heading vector: alpha ramps from AlphaMin at standstill to AlphaMax at
// SpeedRef meters per second, so faster objects adapt heading faster.
type HeadingEMA struct {
	AlphaMin float64 `yaml:"alpha_min" json:"alpha_min"`
	AlphaMax float64 `yaml:"alpha_max" json:"alpha_max"`
	SpeedRef float64 `yaml:"speed_ref" json:"speed_ref"`
}

// Config tunes the per-track kinematic smoother.  Zero values take the
// defaults from DefaultConfig, so a partially filled config is usable.
type Config struct {
	// HeadingEMA tunes the adaptive heading filter
	HeadingEMA HeadingEMA `yaml:"heading_ema" json:"heading_ema"`
	// HeadingMaxJump is the largest heading change applied per update,
	// in degrees
	HeadingMaxJump float64 `yaml:"heading_max_jump" json:"heading_max_jump"`
	// HeadingMinSpeedForUpdate is the minimum raw speed in km/h below
	// which a new heading estimate is not trusted
	HeadingMinSpeedForUpdate float64 `yaml:"heading_min_speed_for_update" json:"heading_min_speed_for_update"`
	// JitterRadius is the stationary detection radius in meters
	JitterRadius float64 `yaml:"heading_sat_coords_jitter_radius" json:"heading_sat_coords_jitter_radius"`
	// JitterFrames is the stationary detection window length
	JitterFrames int `yaml:"heading_sat_coords_jitter_frames" json:"heading_sat_coords_jitter_frames"`
	// SpeedEMAAlpha is the speed low-pass factor
	SpeedEMAAlpha float64 `yaml:"speed_ema_alpha" json:"speed_ema_alpha"`
}

// DefaultConfig returns the smoother tuning used when options are not
// configured
func DefaultConfig() Config {
	return Config{
		HeadingEMA: HeadingEMA{
			AlphaMin: 0.05,
			AlphaMax: 0.6,
			SpeedRef: 5.0,
		},
		HeadingMaxJump:           5,
		HeadingMinSpeedForUpdate: 0.1,
		JitterRadius:             0.6,
		JitterFrames:             8,
		SpeedEMAAlpha:            0.4,
	}
}

// withDefaults fills zero values from DefaultConfig
func (c Config) withDefaults() Config {

	def := DefaultConfig()

	if c.HeadingEMA.AlphaMin == 0 {
		c.HeadingEMA.AlphaMin = def.HeadingEMA.AlphaMin
	}
	if c.HeadingEMA.AlphaMax == 0 {
		c.HeadingEMA.AlphaMax = def.HeadingEMA.AlphaMax
	}
	if c.HeadingEMA.SpeedRef == 0 {
		c.HeadingEMA.SpeedRef = def.HeadingEMA.SpeedRef
	}
	if c.HeadingMaxJump == 0 {
		c.HeadingMaxJump = def.HeadingMaxJump
	}
	if c.HeadingMinSpeedForUpdate == 0 {
		c.HeadingMinSpeedForUpdate = def.HeadingMinSpeedForUpdate
	}
	if c.JitterRadius == 0 {
		c.JitterRadius = def.JitterRadius
	}
	if c.JitterFrames == 0 {
		c.JitterFrames = def.JitterFrames
	}
	if c.SpeedEMAAlpha == 0 {
		c.SpeedEMAAlpha = def.SpeedEMAAlpha
	}

	return c
}

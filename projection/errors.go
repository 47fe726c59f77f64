package projection

import "fmt"

// ConfigError reports calibration parameters that cannot produce a working
// projection, such as a singular homography or a malformed intrinsic
// matrix.  It is returned at construction time only; per-point numeric
// degeneracies are handled locally with fallback values instead.
type ConfigError struct {
	// Param names the offending calibration parameter
	Param string
	// Reason describes why it was rejected
	Reason string
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("projection config %s: %s", e.Param, e.Reason)
}

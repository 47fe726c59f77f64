package trafficlab

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Calibration is the per-location calibration file written by the
// calibration UI.  All matrices are row major.  Input paths are relative
// to the calibration file itself.
type Calibration struct {
	Meta      Meta            `json:"meta"`
	Inputs    Inputs          `json:"inputs"`
	Undistort UndistortParams `json:"undistort"`
	Homograph HomographParams `json:"homography"`
	Parallax  ParallaxParams  `json:"parallax"`

	UseSVG    bool      `json:"use_svg"`
	LayoutSVG LayoutSVG `json:"layout_svg"`

	UseROI    bool   `json:"use_roi"`
	ROIMethod string `json:"roi_method"`

	RefMethod  string `json:"ref_method"`
	ProjMethod string `json:"proj_method"`

	// BaseDir is the directory holding the calibration file, used to
	// resolve the relative paths in Inputs.  Set by Load.
	BaseDir string `json:"-"`
}

// Meta identifies the calibration session.
type Meta struct {
	LocationCode string `json:"location_code"`
	Timestamp    string `json:"timestamp"`
}

// Inputs holds paths to the companion assets, relative to the calibration
// file.
type Inputs struct {
	CCTVPath   string `json:"cctv_path"`
	SatPath    string `json:"sat_path"`
	LayoutPath string `json:"layout_path"`
	ROIPath    string `json:"roi_path"`
	Note       string `json:"note,omitempty"`
}

// UndistortParams holds the camera intrinsics and distortion coefficients.
type UndistortParams struct {
	// Resolution is the camera frame size as [width, height]
	Resolution []int `json:"resolution"`
	// K is the 3x3 intrinsic matrix
	K [][]float64 `json:"K"`
	// D is the distortion coefficient vector (k1, k2, p1, p2, k3)
	D []float64 `json:"D"`
	// Model names the distortion model, eg: radial_tangential
	Model string `json:"model,omitempty"`
}

// HomographParams holds the undistorted-pixel to map-pixel projective
// transform.
type HomographParams struct {
	// H is the 3x3 homography matrix
	H [][]float64 `json:"H"`
}

// ParallaxParams holds the camera pose used for height parallax correction.
type ParallaxParams struct {
	// XCamSat and YCamSat are the camera ground footprint in map pixels
	XCamSat float64 `json:"x_cam_coords_sat"`
	YCamSat float64 `json:"y_cam_coords_sat"`
	// ZCamMeters is the camera height above the ground plane
	ZCamMeters float64 `json:"z_cam_meters"`
	// PxPerMeter is the map scale in pixels per real-world meter
	PxPerMeter float64 `json:"px_per_meter"`
}

// LayoutSVG holds the transform aligning the vector layout's local
// coordinate space with map pixels.
type LayoutSVG struct {
	// A is the 2x3 affine alignment matrix, empty when unset
	A [][]float64 `json:"A"`
}

// Load reads and validates a calibration file.  BaseDir is set to the
// directory holding the file so the relative Inputs paths can be resolved
// with ResolvePath.
func Load(path string) (*Calibration, error) {

	data, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("error reading calibration file: %w", err)
	}

	var cal Calibration

	if err := json.Unmarshal(data, &cal); err != nil {
		return nil, fmt.Errorf("error parsing calibration file: %w", err)
	}

	cal.BaseDir = filepath.Dir(path)

	if err := cal.Validate(); err != nil {
		return nil, err
	}

	return &cal, nil
}

// Validate checks the calibration for structural problems that would make
// the projection core unusable.  Degenerate but recoverable values
// (px_per_meter <= 0) are left for the consuming constructor to default.
func (c *Calibration) Validate() error {

	if err := checkMatrix(c.Undistort.K, 3, 3, "undistort.K"); err != nil {
		return err
	}

	if len(c.Undistort.D) > 5 {
		return fmt.Errorf("undistort.D has %d coefficients, expected at most 5",
			len(c.Undistort.D))
	}

	if err := checkMatrix(c.Homograph.H, 3, 3, "homography.H"); err != nil {
		return err
	}

	if c.Parallax.ZCamMeters < 0 {
		return fmt.Errorf("parallax.z_cam_meters is negative: %f",
			c.Parallax.ZCamMeters)
	}

	if len(c.LayoutSVG.A) != 0 {
		if err := checkMatrix(c.LayoutSVG.A, 2, 3, "layout_svg.A"); err != nil {
			return err
		}
	}

	return nil
}

// ResolvePath resolves one of the Inputs paths against the calibration
// file's directory.  Absolute paths are returned unchanged.
func (c *Calibration) ResolvePath(rel string) string {
	if rel == "" || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(c.BaseDir, rel)
}

// checkMatrix verifies a row-major matrix has the expected shape
func checkMatrix(m [][]float64, rows, cols int, name string) error {

	if len(m) != rows {
		return fmt.Errorf("%s has %d rows, expected %d", name, len(m), rows)
	}

	for i, row := range m {
		if len(row) != cols {
			return fmt.Errorf("%s row %d has %d columns, expected %d",
				name, i, len(row), cols)
		}
	}

	return nil
}

package trafficlab

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// validCalibrationJSON is a minimal but complete calibration file body
const validCalibrationJSON = `{
	"meta": {"location_code": "site_a", "timestamp": "2024-03-01T10:00:00"},
	"inputs": {
		"cctv_path": "frame.png",
		"sat_path": "sat.png",
		"layout_path": "layout.svg",
		"roi_path": "roi.png"
	},
	"undistort": {
		"resolution": [1920, 1080],
		"K": [[1000, 0, 960], [0, 1000, 540], [0, 0, 1]],
		"D": [-0.28, 0.07, 0.001, -0.0005, 0],
		"model": "radial_tangential"
	},
	"homography": {
		"H": [[1, 0, 0], [0, 1, 0], [0, 0, 1]]
	},
	"parallax": {
		"x_cam_coords_sat": 512.5,
		"y_cam_coords_sat": 300.25,
		"z_cam_meters": 12.5,
		"px_per_meter": 3.2
	},
	"use_svg": true,
	"layout_svg": {"A": [[1, 0, 10], [0, 1, 20]]},
	"use_roi": true,
	"roi_method": "partial",
	"ref_method": "center_bottom_side",
	"proj_method": "down_h"
}`

// writeCalibration drops calibration JSON into a temp dir and returns the
// file path
func writeCalibration(t *testing.T, content string) string {

	t.Helper()

	path := filepath.Join(t.TempDir(), "calibration.json")

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("error writing calibration file: %v", err)
	}

	return path
}

// TestLoadCalibration checks a valid file round trips into the expected
// struct fields
func TestLoadCalibration(t *testing.T) {

	path := writeCalibration(t, validCalibrationJSON)

	cal, err := Load(path)

	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cal.Meta.LocationCode != "site_a" {
		t.Errorf("location_code = %q", cal.Meta.LocationCode)
	}

	if cal.Undistort.K[0][0] != 1000 || cal.Undistort.K[1][2] != 540 {
		t.Error("intrinsic matrix not parsed correctly")
	}

	if cal.Undistort.D[0] != -0.28 {
		t.Errorf("D[0] = %v, expected -0.28", cal.Undistort.D[0])
	}

	if cal.Parallax.XCamSat != 512.5 || cal.Parallax.YCamSat != 300.25 {
		t.Error("camera footprint coordinates not parsed correctly")
	}

	if cal.Parallax.ZCamMeters != 12.5 || cal.Parallax.PxPerMeter != 3.2 {
		t.Error("camera height or map scale not parsed correctly")
	}

	if !cal.UseSVG || !cal.UseROI {
		t.Error("feature flags not parsed correctly")
	}

	if cal.LayoutSVG.A[0][2] != 10 || cal.LayoutSVG.A[1][2] != 20 {
		t.Error("layout alignment matrix not parsed correctly")
	}

	if cal.BaseDir != filepath.Dir(path) {
		t.Errorf("BaseDir = %q, expected %q", cal.BaseDir, filepath.Dir(path))
	}
}

// TestLoadCalibrationMissingFile checks the error path
func TestLoadCalibrationMissingFile(t *testing.T) {

	if _, err := Load("no_such_calibration.json"); err == nil {
		t.Error("expected an error for a missing file")
	}
}

// TestLoadCalibrationBadJSON checks malformed content is rejected
func TestLoadCalibrationBadJSON(t *testing.T) {

	path := writeCalibration(t, "{not json")

	if _, err := Load(path); err == nil {
		t.Error("expected a parse error")
	}
}

// TestCalibrationValidate checks the structural validation rules
func TestCalibrationValidate(t *testing.T) {

	valid := func() Calibration {
		return Calibration{
			Undistort: UndistortParams{
				K: [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
				D: []float64{0, 0, 0, 0, 0},
			},
			Homograph: HomographParams{
				H: [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
			},
			Parallax: ParallaxParams{ZCamMeters: 10, PxPerMeter: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Calibration)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Calibration) {},
		},
		{
			name: "K wrong row count",
			mutate: func(c *Calibration) {
				c.Undistort.K = c.Undistort.K[:2]
			},
			wantErr: "undistort.K",
		},
		{
			name: "K ragged row",
			mutate: func(c *Calibration) {
				c.Undistort.K[1] = []float64{0, 1}
			},
			wantErr: "undistort.K",
		},
		{
			name: "too many distortion coefficients",
			mutate: func(c *Calibration) {
				c.Undistort.D = []float64{0, 0, 0, 0, 0, 0}
			},
			wantErr: "undistort.D",
		},
		{
			name: "H wrong shape",
			mutate: func(c *Calibration) {
				c.Homograph.H = [][]float64{{1, 0}, {0, 1}}
			},
			wantErr: "homography.H",
		},
		{
			name: "negative camera height",
			mutate: func(c *Calibration) {
				c.Parallax.ZCamMeters = -1
			},
			wantErr: "z_cam_meters",
		},
		{
			name: "bad alignment shape",
			mutate: func(c *Calibration) {
				c.LayoutSVG.A = [][]float64{{1, 0}, {0, 1}}
			},
			wantErr: "layout_svg.A",
		},
		{
			name: "empty alignment allowed",
			mutate: func(c *Calibration) {
				c.LayoutSVG.A = nil
			},
		},
	}

	for _, tc := range tests {

		cal := valid()
		tc.mutate(&cal)

		err := cal.Validate()

		if tc.wantErr == "" {
			if err != nil {
				t.Errorf("%s: unexpected error: %v", tc.name, err)
			}
			continue
		}

		if err == nil {
			t.Errorf("%s: expected an error", tc.name)
			continue
		}

		if !strings.Contains(err.Error(), tc.wantErr) {
			t.Errorf("%s: error %q does not mention %q", tc.name, err, tc.wantErr)
		}
	}
}

// TestResolvePath checks relative paths resolve against the calibration
// directory while absolute paths pass through
func TestResolvePath(t *testing.T) {

	cal := Calibration{BaseDir: "/data/site_a"}

	if got := cal.ResolvePath("roi.png"); got != filepath.Join("/data/site_a", "roi.png") {
		t.Errorf("relative path resolved to %q", got)
	}

	if got := cal.ResolvePath("/abs/roi.png"); got != "/abs/roi.png" {
		t.Errorf("absolute path changed to %q", got)
	}

	if got := cal.ResolvePath(""); got != "" {
		t.Errorf("empty path changed to %q", got)
	}
}

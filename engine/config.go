package engine

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/duy-phamduc68/trafficlab-3d/kinematics"
)

// RunConfig is the tuning surface of one named processing run
type RunConfig struct {
	// ConfigName identifies the run when the file holds a single config
	ConfigName string `yaml:"config_name"`
	// Kinematics tunes the per-track smoothers
	Kinematics kinematics.Config `yaml:"kinematics"`
	// PriorDimensions names the dimension set to use for 3D footprints
	PriorDimensions string `yaml:"prior_dimensions"`
	// Frames bounds the processing run
	Frames FrameLimits `yaml:"frames"`
	// TrackExpiryFrames drops a track's smoother state after this many
	// missed frames; zero keeps state resident for the whole run
	TrackExpiryFrames int `yaml:"track_expiry_frames"`
}

// FrameLimits bounds a processing run
type FrameLimits struct {
	// MaxFrame stops processing after this many frames, -1 for all
	MaxFrame int `yaml:"max_frame"`
}

// runConfigFile is the on-disk YAML shape: either a single RunConfig at
// the top level, or a configs map of named RunConfigs
type runConfigFile struct {
	Configs   map[string]RunConfig `yaml:"configs"`
	RunConfig `yaml:",inline"`
}

// LoadRunConfig reads a run configuration YAML file.  When the file holds
// a configs map, name selects the entry; an empty or unknown name falls
// back to the lexicographically first entry.  The chosen config's name is
// returned alongside it.
func LoadRunConfig(path, name string) (RunConfig, string, error) {

	data, err := os.ReadFile(path)

	if err != nil {
		return RunConfig{}, "", fmt.Errorf("error reading run config: %w", err)
	}

	var file runConfigFile

	if err := yaml.Unmarshal(data, &file); err != nil {
		return RunConfig{}, "", fmt.Errorf("error parsing run config: %w", err)
	}

	if len(file.Configs) == 0 {

		cfgName := file.ConfigName
		if cfgName == "" {
			cfgName = "default"
		}

		return file.RunConfig, cfgName, nil
	}

	if cfg, ok := file.Configs[name]; ok && name != "" {
		return cfg, name, nil
	}

	keys := make([]string, 0, len(file.Configs))
	for k := range file.Configs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	first := keys[0]

	return file.Configs[first], first, nil
}

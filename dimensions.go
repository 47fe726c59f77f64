package trafficlab

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Dimensions holds the physical size prior for one object class, in meters.
type Dimensions struct {
	Height float64 `json:"height"`
	Width  float64 `json:"width"`
	Length float64 `json:"length"`
}

// DimensionSet maps an object class name to its physical size prior.
// Lookups are case insensitive and ignore surrounding whitespace.
type DimensionSet map[string]Dimensions

// Lookup returns the dimensions for a class name, normalizing the key the
// same way NewDimensionSet does.  ok is false when the class has no prior,
// in which case all 3D footprint logic must be skipped for the object.
func (ds DimensionSet) Lookup(class string) (Dimensions, bool) {
	d, ok := ds[normalizeClass(class)]
	return d, ok
}

// NewDimensionSet builds a DimensionSet from raw class keys, normalizing
// them to lower-cased trimmed form.
func NewDimensionSet(raw map[string]Dimensions) DimensionSet {

	ds := make(DimensionSet, len(raw))

	for k, v := range raw {
		ds[normalizeClass(k)] = v
	}

	return ds
}

// LoadDimensions reads a prior dimensions file containing named sets of
// class measurements and returns the requested set.  It should contain a
// JSON object mapping set names to class maps, eg:
//
//	{"measurements_visdrone": {"car": {"height": 1.6, ...}}}
func LoadDimensions(file string, set string) (DimensionSet, error) {

	data, err := os.ReadFile(file)

	if err != nil {
		return nil, fmt.Errorf("error reading dimensions file: %w", err)
	}

	var sets map[string]map[string]Dimensions

	if err := json.Unmarshal(data, &sets); err != nil {
		return nil, fmt.Errorf("error parsing dimensions file: %w", err)
	}

	raw, ok := sets[set]

	if !ok {
		return nil, fmt.Errorf("dimensions file has no set named %q", set)
	}

	return NewDimensionSet(raw), nil
}

// normalizeClass folds a class label to its lookup key
func normalizeClass(class string) string {
	return strings.ToLower(strings.TrimSpace(class))
}

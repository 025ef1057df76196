// Package config defines the attribute map used to tune the plane
// extraction engine, and the defaults from which a caller's overrides are
// merged.
package config

import (
	"fmt"

	"github.com/pkg/errors"
)

// AttributeMap is a string-keyed, loosely-typed configuration dictionary.
// It mirrors the shape of a parsed JSON object: numeric values may arrive as
// int, int32, int64, or float64 depending on how the caller built the map,
// and the typed accessors below normalize across those representations.
type AttributeMap map[string]interface{}

// Has reports whether name is present in the map.
func (am AttributeMap) Has(name string) bool {
	_, has := am[name]
	return has
}

// GetString returns the string value for name, or def if absent.
func (am AttributeMap) GetString(name, def string) string {
	x, has := am[name]
	if !has {
		return def
	}
	s, ok := x.(string)
	if !ok {
		panic(fmt.Errorf("wanted a string for (%s) but got (%v) %T", name, x, x))
	}
	return s
}

// GetBool returns the bool value for name, or def if absent.
func (am AttributeMap) GetBool(name string, def bool) bool {
	x, has := am[name]
	if !has {
		return def
	}
	v, ok := x.(bool)
	if !ok {
		panic(fmt.Errorf("wanted a bool for (%s) but got (%v) %T", name, x, x))
	}
	return v
}

// GetInt returns the int value for name, or def if absent. Float-valued
// entries (the default for JSON-decoded numbers) are truncated.
func (am AttributeMap) GetInt(name string, def int) int {
	x, has := am[name]
	if !has {
		return def
	}
	switch v := x.(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float32:
		return int(v)
	case float64:
		return int(v)
	default:
		panic(fmt.Errorf("wanted an int for (%s) but got (%v) %T", name, x, x))
	}
}

// GetFloat returns the float64 value for name, or def if absent.
func (am AttributeMap) GetFloat(name string, def float64) float64 {
	x, has := am[name]
	if !has {
		return def
	}
	switch v := x.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	default:
		panic(fmt.Errorf("wanted a float for (%s) but got (%v) %T", name, x, x))
	}
}

// Keys used by the engine, and their defaults, per the Configuration table.
const (
	KeyPatchSize                     = "patchSize"
	KeyHistogramBinsPerCoord         = "histogramBinsPerCoord"
	KeyMinCosAngleForMerge           = "minCosAngleForMerge"
	KeyMaxMergeDist                  = "maxMergeDist"
	KeyMinRegionGrowingCandidateSize = "minRegionGrowingCandidateSize"
	KeyMinRegionGrowingCellsActivated = "minRegionGrowingCellsActivated"
	KeyMinRegionPlanarityScore       = "minRegionPlanarityScore"
	KeyDoRefinement                  = "doRefinement"
	KeyRefinementMultiplierCoeff     = "refinementMultiplierCoeff"
	KeyDepthSigmaCoeff               = "depthSigmaCoeff"
	KeyDepthSigmaMargin              = "depthSigmaMargin"
	KeyMinPtsPerCell                 = "minPtsPerCell"
	KeyDepthDiscontinuityThreshold   = "depthDiscontinuityThreshold"
	KeyMaxNumberDepthDiscontinuity   = "maxNumberDepthDiscontinuity"
)

// minMergeDistFloor is the "dmin = 20.0" floor on the per-cell merge distance
// tolerance used by the region grower. It is not exposed as a configuration
// key.
const minMergeDistFloor = 20.0

// MinMergeDistFloor returns the lower clamp on the per-cell distance
// tolerance used by the region grower.
func MinMergeDistFloor() float64 { return minMergeDistFloor }

// Defaults returns a fresh AttributeMap populated with every default from
// the Configuration table.
func Defaults() AttributeMap {
	return AttributeMap{
		KeyPatchSize:                      12,
		KeyHistogramBinsPerCoord:          20,
		KeyMinCosAngleForMerge:            0.93,
		KeyMaxMergeDist:                   500.0,
		KeyMinRegionGrowingCandidateSize:  5,
		KeyMinRegionGrowingCellsActivated: 4,
		KeyMinRegionPlanarityScore:        50.0,
		KeyDoRefinement:                   true,
		KeyRefinementMultiplierCoeff:      15.0,
		KeyDepthSigmaCoeff:                1.425e-6,
		KeyDepthSigmaMargin:               10.0,
		KeyMinPtsPerCell:                  3,
		KeyDepthDiscontinuityThreshold:    160.0,
		KeyMaxNumberDepthDiscontinuity:    1,
	}
}

// WithDefaults returns a copy of overrides merged on top of Defaults(): any
// key present in overrides wins, every other key falls back to its default.
// Unknown keys in overrides are rejected as a configuration error.
func WithDefaults(overrides AttributeMap) (AttributeMap, error) {
	merged := Defaults()
	for k, v := range overrides {
		if !merged.Has(k) {
			return nil, errors.Errorf("unknown configuration key %q", k)
		}
		merged[k] = v
	}
	return merged, nil
}

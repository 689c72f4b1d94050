package kernel

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/types"
)

// defaultRouteTypeCompatibility is the value returned for any
// (planned, accident) pair not present in the loaded matrix, including
// every pair touching RouteUnknown.
const defaultRouteTypeCompatibility = 0.5

// RouteTypeMatrix is the 7x7 (planned, accident) compatibility table
// committed to version control as data (see data/route_type_matrix.yaml)
// rather than as code, per the specification's Open Question resolution.
type RouteTypeMatrix map[types.RouteType]map[types.RouteType]float64

// LoadRouteTypeMatrix reads and parses the YAML asset at path.
func LoadRouteTypeMatrix(path string) (RouteTypeMatrix, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading route type matrix %s: %w", path, err)
	}

	var decoded map[string]map[string]float64
	if err := yaml.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("parsing route type matrix %s: %w", path, err)
	}

	matrix := make(RouteTypeMatrix, len(decoded))
	for planned, row := range decoded {
		typedRow := make(map[types.RouteType]float64, len(row))
		for accident, v := range row {
			typedRow[types.RouteType(accident)] = v
		}
		matrix[types.RouteType(planned)] = typedRow
	}

	return matrix, nil
}

// Lookup returns matrix[planned][accident], or the default compatibility
// value (0.5) if either route type is unrecognized or the pair is not
// present.
func (m RouteTypeMatrix) Lookup(planned, accident types.RouteType) float64 {
	row, ok := m[planned]
	if !ok {
		return defaultRouteTypeCompatibility
	}
	v, ok := row[accident]
	if !ok {
		return defaultRouteTypeCompatibility
	}
	return v
}

// RouteType looks up the compatibility for a given planned/accident
// pair via the Config's loaded matrix.
func (c *Config) RouteType(planned, accident types.RouteType) float64 {
	return c.RouteTypeMatrix.Lookup(planned, accident)
}

package kernel

import (
	"math"
	"testing"

	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/types"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := NewDefaultConfig("data/route_type_matrix.yaml")
	if err != nil {
		t.Fatalf("NewDefaultConfig: %v", err)
	}
	return cfg
}

func TestHaversineZeroDistance(t *testing.T) {
	d := HaversineKM(40.255, -105.615, 40.255, -105.615)
	if d > 1e-9 {
		t.Errorf("HaversineKM same point = %v, want ~0", d)
	}
}

func TestSpatialIdenticalCoordinates(t *testing.T) {
	cfg := testConfig(t)
	w := cfg.Spatial(types.RouteAlpine, 0)
	if w != 1.0 {
		t.Errorf("Spatial at d=0 = %v, want 1.0", w)
	}
}

func TestSpatialDecaysWithDistance(t *testing.T) {
	cfg := testConfig(t)
	near := cfg.Spatial(types.RouteSport, 10)
	far := cfg.Spatial(types.RouteSport, 100)
	if !(near > far) {
		t.Errorf("expected spatial weight to decay with distance: near=%v far=%v", near, far)
	}
}

func TestTemporalSameDateIsSeasonalBoostOnly(t *testing.T) {
	cfg := testConfig(t)
	w := cfg.Temporal(types.RouteAlpine, 0, 7, 7)
	if math.Abs(w-SeasonalBoost) > 1e-9 {
		t.Errorf("Temporal at n=0 same month = %v, want %v", w, SeasonalBoost)
	}
}

func TestTemporalSeasonalBoostIsModular(t *testing.T) {
	cfg := testConfig(t)
	w := cfg.Temporal(types.RouteAlpine, 0, 1, 12)
	if math.Abs(w-SeasonalBoost) > 1e-9 {
		t.Errorf("Temporal across year boundary (Jan/Dec) = %v, want %v", w, SeasonalBoost)
	}
}

func TestTemporalNegativeDaysClampedToZero(t *testing.T) {
	cfg := testConfig(t)
	w := cfg.Temporal(types.RouteAlpine, -5, 7, 7)
	w0 := cfg.Temporal(types.RouteAlpine, 0, 7, 7)
	if w != w0 {
		t.Errorf("Temporal with negative n = %v, want clamped to n=0 value %v", w, w0)
	}
}

func TestElevationMissingIsNeutral(t *testing.T) {
	cfg := testConfig(t)
	if w := cfg.Elevation(types.RouteAlpine, nil, nil); w != 1.0 {
		t.Errorf("Elevation with missing inputs = %v, want 1.0", w)
	}
}

func TestElevationDownhillIsNeutral(t *testing.T) {
	cfg := testConfig(t)
	accident := 3000.0
	route := 4000.0
	if w := cfg.Elevation(types.RouteAlpine, &accident, &route); w != 1.0 {
		t.Errorf("Elevation with accident below route = %v, want 1.0", w)
	}
}

func TestElevationUphillDecays(t *testing.T) {
	cfg := testConfig(t)
	route := 3000.0
	near := 3100.0
	far := 5000.0
	wNear := cfg.Elevation(types.RouteAlpine, &near, &route)
	wFar := cfg.Elevation(types.RouteAlpine, &far, &route)
	if !(wNear > wFar) {
		t.Errorf("expected elevation weight to decay with height above route: near=%v far=%v", wNear, wFar)
	}
	if wNear > 1.0 || wFar < 0 {
		t.Errorf("elevation weight out of [0,1]: near=%v far=%v", wNear, wFar)
	}
}

func TestSeverityBoosterRange(t *testing.T) {
	cfg := testConfig(t)
	cases := map[types.Severity]float64{
		types.SeverityFatal:    1.30,
		types.SeveritySerious:  1.20,
		types.SeverityModerate: 1.10,
		types.SeverityMinor:    1.00,
		types.SeverityUnknown:  1.00,
	}
	for sev, want := range cases {
		if got := cfg.Severity(sev); got != want {
			t.Errorf("Severity(%s) = %v, want %v", sev, got, want)
		}
	}
}

package scaling

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"PriceCast/internal/domain/models"
	domsvc "PriceCast/internal/domain/service"
)

// Artifact is the persisted form of fitted min/max parameters.
type Artifact struct {
	DataMin      []float64  `json:"data_min"`
	DataMax      []float64  `json:"data_max"`
	FeatureRange [2]float64 `json:"feature_range"`
}

// MinMax scales each feature to a fixed range using bounds fitted offline.
// It is immutable after construction and safe for concurrent use.
type MinMax struct {
	dataMin []float64
	dataMax []float64
	scale   []float64
	min     []float64
	lo, hi  float64
}

// New builds a scaler from an artifact.
func New(a Artifact) (*MinMax, error) {
	n := len(a.DataMin)
	if n == 0 {
		return nil, fmt.Errorf("scaler: no features")
	}
	if len(a.DataMax) != n {
		return nil, &models.DimensionMismatchError{What: "scaler data_max", Expected: n, Got: len(a.DataMax)}
	}
	lo, hi := a.FeatureRange[0], a.FeatureRange[1]
	if lo == 0 && hi == 0 {
		hi = 1
	}
	if lo >= hi {
		return nil, fmt.Errorf("scaler: invalid feature range [%g, %g]", lo, hi)
	}

	s := &MinMax{
		dataMin: append([]float64(nil), a.DataMin...),
		dataMax: append([]float64(nil), a.DataMax...),
		scale:   make([]float64, n),
		min:     make([]float64, n),
		lo:      lo,
		hi:      hi,
	}
	for i := 0; i < n; i++ {
		if math.IsNaN(a.DataMin[i]) || math.IsNaN(a.DataMax[i]) || math.IsInf(a.DataMin[i], 0) || math.IsInf(a.DataMax[i], 0) {
			return nil, fmt.Errorf("scaler: feature %d has non-finite bounds", i)
		}
		if a.DataMax[i] < a.DataMin[i] {
			return nil, fmt.Errorf("scaler: feature %d max %g below min %g", i, a.DataMax[i], a.DataMin[i])
		}
		rng := a.DataMax[i] - a.DataMin[i]
		if rng == 0 {
			rng = 1 // constant feature
		}
		s.scale[i] = (hi - lo) / rng
		s.min[i] = lo - a.DataMin[i]*s.scale[i]
	}
	return s, nil
}

// Load reads a JSON artifact from path.
func Load(path string) (*MinMax, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scaler: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("parse scaler: %w", err)
	}
	s, err := New(a)
	if err != nil {
		return nil, fmt.Errorf("build scaler %s: %w", path, err)
	}
	return s, nil
}

// Fit computes bounds from rows. It is meant for producing artifacts offline.
func Fit(rows [][]float64, lo, hi float64) (*MinMax, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("scaler: fit on empty data")
	}
	n := len(rows[0])
	a := Artifact{
		DataMin:      make([]float64, n),
		DataMax:      make([]float64, n),
		FeatureRange: [2]float64{lo, hi},
	}
	copy(a.DataMin, rows[0])
	copy(a.DataMax, rows[0])
	for r, row := range rows {
		if len(row) != n {
			return nil, &models.DimensionMismatchError{What: fmt.Sprintf("fit row %d width", r), Expected: n, Got: len(row)}
		}
		for i, v := range row {
			a.DataMin[i] = math.Min(a.DataMin[i], v)
			a.DataMax[i] = math.Max(a.DataMax[i], v)
		}
	}
	return New(a)
}

// Artifact returns the persisted form of the parameters.
func (s *MinMax) Artifact() Artifact {
	return Artifact{
		DataMin:      append([]float64(nil), s.dataMin...),
		DataMax:      append([]float64(nil), s.dataMax...),
		FeatureRange: [2]float64{s.lo, s.hi},
	}
}

// Save writes the artifact as JSON.
func (s *MinMax) Save(path string) error {
	b, err := json.MarshalIndent(s.Artifact(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scaler: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write scaler: %w", err)
	}
	return nil
}

// Features returns the fitted feature count.
func (s *MinMax) Features() int { return len(s.scale) }

// Transform maps raw rows into the normalized domain.
func (s *MinMax) Transform(rows [][]float64) ([][]float64, error) {
	return s.apply(rows, func(i int, v float64) float64 { return v*s.scale[i] + s.min[i] })
}

// Inverse maps normalized rows back to raw values.
func (s *MinMax) Inverse(rows [][]float64) ([][]float64, error) {
	return s.apply(rows, func(i int, v float64) float64 { return (v - s.min[i]) / s.scale[i] })
}

// TransformValue normalizes a single value of a one-feature scaler.
func (s *MinMax) TransformValue(v float64) (float64, error) {
	if err := s.single(); err != nil {
		return 0, err
	}
	return v*s.scale[0] + s.min[0], nil
}

// InverseValue denormalizes a single value of a one-feature scaler.
func (s *MinMax) InverseValue(v float64) (float64, error) {
	if err := s.single(); err != nil {
		return 0, err
	}
	return (v - s.min[0]) / s.scale[0], nil
}

func (s *MinMax) single() error {
	if len(s.scale) != 1 {
		return &models.DimensionMismatchError{What: "scalar value features", Expected: len(s.scale), Got: 1}
	}
	return nil
}

func (s *MinMax) apply(rows [][]float64, fn func(i int, v float64) float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for r, row := range rows {
		if len(row) != len(s.scale) {
			return nil, &models.DimensionMismatchError{What: fmt.Sprintf("row %d features", r), Expected: len(s.scale), Got: len(row)}
		}
		dst := make([]float64, len(row))
		for i, v := range row {
			dst[i] = fn(i, v)
		}
		out[r] = dst
	}
	return out, nil
}

var _ domsvc.Scaler = (*MinMax)(nil)

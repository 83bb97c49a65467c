package model

import (
	"errors"
	"fmt"
)

// Scaler standardizes columns as (x - mean) / scale.
type Scaler struct {
	mean  []float64
	scale []float64
}

type scalerFile struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// NewScaler returns a scaler. A nil mean centers nothing and a nil scale divides by 1; at
// least one of them must be given. A zero scale entry is treated as 1, matching how
// constant training columns are standardized.
func NewScaler(mean, scale []float64) (*Scaler, error) {
	switch {
	case mean == nil && scale == nil:
		return nil, errors.New("scaler has neither mean nor scale")
	case mean == nil:
		mean = make([]float64, len(scale))
	case scale == nil:
		scale = make([]float64, len(mean))
		for i := range scale {
			scale[i] = 1
		}
	case len(mean) != len(scale):
		return nil, fmt.Errorf("scaler: mean has %d entries but scale has %d", len(mean), len(scale))
	}
	s := &Scaler{
		mean:  append([]float64(nil), mean...),
		scale: append([]float64(nil), scale...),
	}
	for i, v := range s.scale {
		if v == 0 {
			s.scale[i] = 1
		}
	}
	return s, nil
}

// LoadScaler reads a scaler artifact ({"mean": [...], "scale": [...]}).
func LoadScaler(path string) (*Scaler, error) {
	var sf scalerFile
	if err := readJSON(path, &sf); err != nil {
		return nil, err
	}
	return NewScaler(sf.Mean, sf.Scale)
}

// Dim returns the number of columns the scaler expects.
func (s *Scaler) Dim() int {
	return len(s.scale)
}

// Transform returns the standardized copy of x.
func (s *Scaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.scale) {
		return nil, &DimensionError{Stage: "scaler", Want: len(s.scale), Source: "input", Got: len(x)}
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - s.mean[i]) / s.scale[i]
	}
	return out, nil
}

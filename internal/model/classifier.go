package model

import "fmt"

// Classifier is a fitted binary classifier.
type Classifier interface {
	// PredictProba returns one [P(not data), P(data)] pair per input row.
	PredictProba(X [][]float64) ([][]float64, error)
	// Dim returns the number of input columns the classifier was fitted on.
	Dim() int
	Close() error
}

// inputWidth resolves the classifier width from the input shape a graph declares and
// the configured width. Dynamic axes are declared as -1. A configured width must
// agree with a fixed declared one, and is required when the graph leaves it dynamic.
func inputWidth(shape []int64, configured int) (int, error) {
	if configured < 0 {
		return 0, fmt.Errorf("dimensions must not be negative, got %d", configured)
	}
	declared := 0
	if len(shape) > 0 && shape[len(shape)-1] > 0 {
		declared = int(shape[len(shape)-1])
	}
	switch {
	case declared == 0 && configured == 0:
		return 0, fmt.Errorf("input shape %v has no fixed width; set model.dimensions", shape)
	case declared == 0:
		return configured, nil
	case configured != 0 && configured != declared:
		return 0, &DimensionError{Stage: "classifier", Want: declared, Source: "model.dimensions setting", Got: configured}
	}
	return declared, nil
}

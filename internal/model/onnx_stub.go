//go:build !cgo
// +build !cgo

package model

import (
	"errors"
)

// ONNXClassifier stub type when built without CGO (see onnx.go for real implementation).
type ONNXClassifier struct{}

// NewONNXClassifier returns an error when built without CGO (ONNX not available).
func NewONNXClassifier(_ string, _ int) (*ONNXClassifier, error) {
	return nil, errors.New("ONNX classifier requires CGO; build with CGO_ENABLED=1 and onnxruntime")
}

// PredictProba is unreachable because NewONNXClassifier always fails.
func (c *ONNXClassifier) PredictProba(_ [][]float64) ([][]float64, error) {
	return nil, errors.New("ONNX classifier requires CGO")
}

// Dim returns 0.
func (c *ONNXClassifier) Dim() int { return 0 }

// Close is a no-op.
func (c *ONNXClassifier) Close() error { return nil }

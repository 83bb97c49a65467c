//go:build cgo
// +build cgo

package model

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXClassifier runs a classifier exported to ONNX. It requires CGO and the onnxruntime
// shared library. The graph must take "float_input" of shape [1, dim] and produce
// "probabilities" of shape [1, 2].
type ONNXClassifier struct {
	session      *ort.AdvancedSession
	dimensions   int
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	mu           sync.Mutex
}

// NewONNXClassifier creates an ONNX classifier. InitializeEnvironment is called if not already done.
// The input width is read from the graph; dimensions overrides it only when the graph
// leaves the width dynamic, and is otherwise checked against it. Zero means unset.
func NewONNXClassifier(modelPath string, dimensions int) (*ONNXClassifier, error) {
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
		}
	}

	inputs, _, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read ONNX model inputs: %w", err)
	}
	var shape ort.Shape
	found := false
	for _, in := range inputs {
		if in.Name == "float_input" {
			shape, found = in.Dimensions, true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("ONNX model %s has no float_input input", modelPath)
	}
	dimensions, err = inputWidth(shape, dimensions)
	if err != nil {
		return nil, fmt.Errorf("onnx classifier: %w", err)
	}

	inputTensor, err := ort.NewTensor(ort.NewShape(1, int64(dimensions)), make([]float32, dimensions))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	outputTensor, err := ort.NewTensor(ort.NewShape(1, 2), make([]float32, 2))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"float_input"},
		[]string{"probabilities"},
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
		nil,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &ONNXClassifier{
		session:      session,
		dimensions:   dimensions,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

// PredictProba runs the session once per row.
func (c *ONNXClassifier) PredictProba(X [][]float64) ([][]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([][]float64, len(X))
	for r, x := range X {
		if len(x) != c.dimensions {
			return nil, &DimensionError{Stage: "classifier", Want: c.dimensions, Source: "input", Got: len(x)}
		}
		in := c.inputTensor.GetData()
		for i, v := range x {
			in[i] = float32(v)
		}
		if err := c.session.Run(); err != nil {
			return nil, fmt.Errorf("inference failed: %w", err)
		}
		probs := c.outputTensor.GetData()
		out[r] = []float64{float64(probs[0]), float64(probs[1])}
	}
	return out, nil
}

// Dim returns the input width.
func (c *ONNXClassifier) Dim() int {
	return c.dimensions
}

// Close destroys the session and tensors.
func (c *ONNXClassifier) Close() error {
	var err error
	if c.session != nil {
		err = c.session.Destroy()
		c.session = nil
	}
	if c.inputTensor != nil {
		_ = c.inputTensor.Destroy()
		c.inputTensor = nil
	}
	if c.outputTensor != nil {
		_ = c.outputTensor.Destroy()
		c.outputTensor = nil
	}
	return err
}

package model

import (
	"errors"
	"fmt"

	"github.com/hyperjump/datadetector/pkg/utils"
)

const leaf = -1

// TreeNode is one node of a regression tree. Rows with x[Feature] <= Threshold go Left.
// A node with Left == -1 is a leaf carrying Value.
type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// Tree is a flat array of nodes rooted at index 0.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// TreeEnsemble is a binary gradient-boosted tree classifier exported as JSON. The
// positive-class probability is sigmoid(InitLogOdds + LearningRate * sum of leaf values).
type TreeEnsemble struct {
	LearningRate       float64   `json:"learning_rate"`
	InitLogOdds        float64   `json:"init_log_odds"`
	NFeatures          int       `json:"n_features,omitempty"`
	Trees              []Tree    `json:"trees"`
	FeatureImportances []float64 `json:"feature_importances"`
}

// LoadTreeEnsemble reads and validates a tree ensemble artifact.
func LoadTreeEnsemble(path string) (*TreeEnsemble, error) {
	var e TreeEnsemble
	if err := readJSON(path, &e); err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("load tree ensemble: %w", err)
	}
	return &e, nil
}

// Validate checks that every tree is well formed for the ensemble's input width.
func (e *TreeEnsemble) Validate() error {
	dim := e.Dim()
	if dim <= 0 {
		return errors.New("tree ensemble has no input features")
	}
	if len(e.Trees) == 0 {
		return errors.New("tree ensemble has no trees")
	}
	for t, tr := range e.Trees {
		if len(tr.Nodes) == 0 {
			return fmt.Errorf("tree %d is empty", t)
		}
		for i, n := range tr.Nodes {
			if n.Left == leaf {
				continue
			}
			if n.Feature < 0 || n.Feature >= dim {
				return fmt.Errorf("tree %d node %d: feature %d out of range [0,%d)", t, i, n.Feature, dim)
			}
			// Children always follow their parent, which also rules out cycles.
			if n.Left <= i || n.Left >= len(tr.Nodes) || n.Right <= i || n.Right >= len(tr.Nodes) {
				return fmt.Errorf("tree %d node %d: invalid children %d/%d", t, i, n.Left, n.Right)
			}
		}
	}
	return nil
}

// Dim returns the input width: NFeatures when set, otherwise the length of the feature
// importances.
func (e *TreeEnsemble) Dim() int {
	if e.NFeatures > 0 {
		return e.NFeatures
	}
	return len(e.FeatureImportances)
}

// PredictProba scores each row.
func (e *TreeEnsemble) PredictProba(X [][]float64) ([][]float64, error) {
	dim := e.Dim()
	out := make([][]float64, len(X))
	for r, x := range X {
		if len(x) != dim {
			return nil, &DimensionError{Stage: "classifier", Want: dim, Source: "input", Got: len(x)}
		}
		p := utils.Sigmoid(e.decision(x))
		out[r] = []float64{1 - p, p}
	}
	return out, nil
}

func (e *TreeEnsemble) decision(x []float64) float64 {
	var sum float64
	for _, tr := range e.Trees {
		sum += tr.eval(x)
	}
	return e.InitLogOdds + e.LearningRate*sum
}

func (tr Tree) eval(x []float64) float64 {
	i := 0
	for {
		n := tr.Nodes[i]
		if n.Left == leaf {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Close is a no-op.
func (e *TreeEnsemble) Close() error {
	return nil
}

package model

import (
	"context"
	"fmt"

	"github.com/hyperjump/datadetector/internal/config"
	"github.com/hyperjump/datadetector/internal/features"
)

// Pipeline chains vectorizer, scaler and classifier and reports the positive-class
// probability of each feature vector.
type Pipeline struct {
	vectorizer *Vectorizer
	scaler     *Scaler
	classifier Classifier
}

// NewPipeline checks that all three parts agree on the input width.
func NewPipeline(v *Vectorizer, s *Scaler, c Classifier) (*Pipeline, error) {
	if c.Dim() != v.Dim() {
		return nil, &DimensionError{Stage: "classifier", Want: c.Dim(), Source: "vectorizer", Got: v.Dim()}
	}
	if c.Dim() != s.Dim() {
		return nil, &DimensionError{Stage: "classifier", Want: c.Dim(), Source: "scaler", Got: s.Dim()}
	}
	return &Pipeline{vectorizer: v, scaler: s, classifier: c}, nil
}

// Load reads the artifacts named by cfg and builds a pipeline.
func Load(cfg config.ModelConfig) (*Pipeline, error) {
	v, err := LoadVectorizer(cfg.VectorizerPath)
	if err != nil {
		return nil, fmt.Errorf("load vectorizer: %w", err)
	}
	s, err := LoadScaler(cfg.ScalerPath)
	if err != nil {
		return nil, fmt.Errorf("load scaler: %w", err)
	}

	var c Classifier
	switch cfg.Runtime {
	case config.RuntimeONNX:
		c, err = NewONNXClassifier(cfg.ClassifierPath, cfg.Dimensions)
	case config.RuntimeTrees, "":
		c, err = LoadTreeEnsemble(cfg.ClassifierPath)
	default:
		err = fmt.Errorf("unknown runtime %q", cfg.Runtime)
	}
	if err != nil {
		return nil, fmt.Errorf("load classifier: %w", err)
	}

	p, err := NewPipeline(v, s, c)
	if err != nil {
		c.Close()
		return nil, err
	}
	return p, nil
}

// Score returns P(data) for each vector.
func (p *Pipeline) Score(ctx context.Context, vecs []features.Vector) ([]float64, error) {
	if len(vecs) == 0 {
		return []float64{}, nil
	}
	X := make([][]float64, len(vecs))
	for i, vec := range vecs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		x, err := p.scaler.Transform(p.vectorizer.Transform(vec.Map()))
		if err != nil {
			return nil, err
		}
		X[i] = x
	}
	probs, err := p.classifier.PredictProba(X)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	out := make([]float64, len(probs))
	for i, row := range probs {
		if len(row) < 2 {
			return nil, fmt.Errorf("predict: row %d has %d columns, want 2", i, len(row))
		}
		out[i] = row[1]
	}
	return out, nil
}

// Dim returns the pipeline's input width.
func (p *Pipeline) Dim() int {
	return p.vectorizer.Dim()
}

// Close releases the classifier.
func (p *Pipeline) Close() error {
	return p.classifier.Close()
}

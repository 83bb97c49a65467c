package model

import (
	"errors"
	"fmt"
)

// Vectorizer maps named features onto a fixed column order, the way the training
// pipeline's dictionary vectorizer did. Names it does not know are ignored and names it
// knows but that are absent become 0.
type Vectorizer struct {
	names []string
	index map[string]int
}

type vectorizerFile struct {
	FeatureNames []string `json:"feature_names"`
}

// NewVectorizer returns a vectorizer over names, in column order.
func NewVectorizer(names []string) (*Vectorizer, error) {
	if len(names) == 0 {
		return nil, errors.New("vectorizer has no feature names")
	}
	v := &Vectorizer{
		names: append([]string(nil), names...),
		index: make(map[string]int, len(names)),
	}
	for i, n := range names {
		if _, dup := v.index[n]; dup {
			return nil, fmt.Errorf("vectorizer: duplicate feature name %q", n)
		}
		v.index[n] = i
	}
	return v, nil
}

// LoadVectorizer reads a vectorizer artifact ({"feature_names": [...]}).
func LoadVectorizer(path string) (*Vectorizer, error) {
	var vf vectorizerFile
	if err := readJSON(path, &vf); err != nil {
		return nil, err
	}
	return NewVectorizer(vf.FeatureNames)
}

// Dim returns the number of output columns.
func (v *Vectorizer) Dim() int {
	return len(v.names)
}

// FeatureNames returns the column names in order.
func (v *Vectorizer) FeatureNames() []string {
	return append([]string(nil), v.names...)
}

// Transform lays features out in column order.
func (v *Vectorizer) Transform(features map[string]float64) []float64 {
	out := make([]float64, len(v.names))
	for name, val := range features {
		if i, ok := v.index[name]; ok {
			out[i] = val
		}
	}
	return out
}

// Package model loads the exported vectorizer, scaler and classifier artifacts and chains
// them into the scoring pipeline used by the detector.
package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// readJSON decodes the artifact at path into v, rejecting unknown fields so a file
// exported for a different artifact kind fails early.
func readJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode artifact %s: %w", path, err)
	}
	return nil
}

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Feature category names. The order in which categories appear in a
// FeatureSet is fixed by the orchestrator: first-order, shape, then the
// three texture families.
const (
	CategoryFirstOrder = "first_order"
	CategoryShape      = "shape"
	CategoryGLCM       = "texture_glcm"
	CategoryGLRLM      = "texture_glrlm"
	CategoryGLSZM      = "texture_glszm"
)

// Execution mode labels used in the batch result wire format.
const (
	ModeSequential = "secuencial"
	ModeParallel   = "paralelo"
)

// Feature is a single named scalar descriptor.
type Feature struct {
	Name  string
	Value float64
}

// FeatureCategory is an ordered list of features under one category name.
// Features keep insertion order so output is deterministic run to run.
type FeatureCategory struct {
	Name     string
	Features []Feature
}

// Add appends a named feature to the category.
func (c *FeatureCategory) Add(name string, value float64) {
	c.Features = append(c.Features, Feature{Name: name, Value: value})
}

// Lookup returns the value of a named feature.
func (c FeatureCategory) Lookup(name string) (float64, bool) {
	for _, f := range c.Features {
		if f.Name == name {
			return f.Value, true
		}
	}
	return 0, false
}

// FeatureSet is the per-file collection of feature categories.
type FeatureSet []FeatureCategory

// Count returns the total number of features across all categories.
func (s FeatureSet) Count() int {
	n := 0
	for _, c := range s {
		n += len(c.Features)
	}
	return n
}

// Lookup returns the value of a feature inside a category.
func (s FeatureSet) Lookup(category, name string) (float64, bool) {
	for _, c := range s {
		if c.Name == category {
			return c.Lookup(name)
		}
	}
	return 0, false
}

// Validate checks that every feature value is a finite float64. The engine
// contract promises full-precision finite values; anything else is a
// computation failure for the owning file.
func (s FeatureSet) Validate() error {
	for _, c := range s {
		for _, f := range c.Features {
			if math.IsNaN(f.Value) || math.IsInf(f.Value, 0) {
				return fmt.Errorf("non-finite value for %s/%s", c.Name, f.Name)
			}
		}
	}
	return nil
}

// MarshalJSON renders the set as {categoria: {feature: value}} while
// preserving category and feature order.
func (s FeatureSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.WriteByte('{')
		for j, f := range c.Features {
			if j > 0 {
				buf.WriteByte(',')
			}
			fname, err := json.Marshal(f.Name)
			if err != nil {
				return nil, err
			}
			fval, err := json.Marshal(f.Value)
			if err != nil {
				return nil, err
			}
			buf.Write(fname)
			buf.WriteByte(':')
			buf.Write(fval)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FileResult is the outcome of processing a single input file. Exactly one
// of Features or Error is populated.
type FileResult struct {
	Filename     string     `json:"archivo"`
	Success      bool       `json:"success"`
	FeatureCount int        `json:"num_caracteristicas"`
	Features     FeatureSet `json:"caracteristicas,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// BatchResult is the top-level artifact returned to the calling layer.
// Success is true iff at least one file succeeded.
type BatchResult struct {
	Success   bool         `json:"success"`
	Results   []FileResult `json:"results"`
	TotalTime float64      `json:"tiempo_total"`
	Mode      string       `json:"modo_usado"`
	Processed int          `json:"archivos_procesados"`
	Succeeded int          `json:"archivos_exitosos"`
	Failed    int          `json:"archivos_fallidos"`

	// BatchID correlates log lines for one batch; it is not part of the
	// wire format consumed by the statistics layer.
	BatchID string `json:"-"`
}

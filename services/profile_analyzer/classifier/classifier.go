// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package classifier loads a persisted model artifact and serves
// predictions for the /v1/predict path. The artifact bundles the model
// parameters, the ordered feature-column list, and the language-code
// lookup table so all three always come from the same training run.
package classifier

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Labels returned by Predict. Genuine is 1 to match the training labels.
const (
	LabelFake    = 0
	LabelGenuine = 1
)

//go:embed default_model.json
var defaultArtifact []byte

// artifact is the on-disk shape of a persisted model.
type artifact struct {
	FormatVersion  int            `json:"format_version"`
	TrainedAt      string         `json:"trained_at"`
	Model          modelParams    `json:"model"`
	FeatureColumns []string       `json:"feature_columns"`
	LangCodes      map[string]int `json:"lang_codes"`
}

type modelParams struct {
	Kind    string             `json:"kind"`
	Bias    float64            `json:"bias"`
	Weights map[string]float64 `json:"weights"`
}

// FeatureRow maps feature-column names to values. Columns missing from
// the row are treated as zero, mirroring how training data was filled.
type FeatureRow map[string]float64

// Classifier scores feature rows against a loaded model.
//
// # Thread Safety
//
// Immutable after load. Safe for concurrent use.
type Classifier struct {
	kind      string
	bias      float64
	weights   []float64
	columns   []string
	langCodes map[string]int
	trainedAt string
}

// Load reads a model artifact from disk.
//
// # Inputs
//
//   - path: Filesystem path to the JSON artifact.
//
// # Outputs
//
//   - *Classifier: Ready-to-use classifier.
//   - error: Non-nil if the file is missing or malformed. Callers are
//     expected to continue serving heuristic-only verdicts on failure.
func Load(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	c, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse model artifact %s: %w", path, err)
	}
	return c, nil
}

// LoadDefault builds a classifier from the artifact compiled into the
// binary. Used when no ANALYZER_MODEL_PATH override is configured.
func LoadDefault() (*Classifier, error) {
	c, err := parse(defaultArtifact)
	if err != nil {
		return nil, fmt.Errorf("embedded model artifact: %w", err)
	}
	return c, nil
}

func parse(data []byte) (*Classifier, error) {
	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, err
	}
	if len(art.FeatureColumns) == 0 {
		return nil, fmt.Errorf("artifact has no feature columns")
	}

	// Resolve weights into column order once so inference is a flat loop.
	weights := make([]float64, len(art.FeatureColumns))
	for i, col := range art.FeatureColumns {
		w, ok := art.Model.Weights[col]
		if !ok {
			return nil, fmt.Errorf("artifact missing weight for column %q", col)
		}
		weights[i] = w
	}

	langCodes := art.LangCodes
	if langCodes == nil {
		langCodes = map[string]int{}
	}

	return &Classifier{
		kind:      art.Model.Kind,
		bias:      art.Model.Bias,
		weights:   weights,
		columns:   art.FeatureColumns,
		langCodes: langCodes,
		trainedAt: art.TrainedAt,
	}, nil
}

// Columns returns the ordered feature-column list the model was trained on.
func (c *Classifier) Columns() []string {
	return c.columns
}

// TrainedAt returns the artifact's training timestamp, for logging.
func (c *Classifier) TrainedAt() string {
	return c.trainedAt
}

// LangCode maps a language string to its trained encoding. Unknown
// languages encode as 0, same as the training-time fallback.
func (c *Classifier) LangCode(lang string) int {
	return c.langCodes[lang]
}

// PredictProba returns [P(fake), P(genuine)] for the row.
func (c *Classifier) PredictProba(row FeatureRow) []float64 {
	z := c.bias
	for i, col := range c.columns {
		z += c.weights[i] * row[col]
	}
	pGenuine := 1.0 / (1.0 + math.Exp(-z))
	return []float64{1.0 - pGenuine, pGenuine}
}

// Predict returns LabelGenuine or LabelFake for the row.
func (c *Classifier) Predict(row FeatureRow) int {
	if c.PredictProba(row)[LabelGenuine] >= 0.5 {
		return LabelGenuine
	}
	return LabelFake
}

// Package ml consumes an externally trained phishing classifier and blends
// its calibrated probability with the lexical heuristics into a single
// verdict. The package never trains or persists a model; it only speaks the
// inference contract below.
//
// Failure philosophy: nothing in this package is fatal. A broken, missing,
// or misbehaving classifier degrades to the heuristic-only blend, reported
// through the assessment's mode flag so operators can see which path ran.
package ml

import (
	"context"
	"fmt"
	"log"

	"github.com/shri-birje/Phishguard/pkg/lexical"
)

// PhishingClass is the positive class label in training exports
// (0 = benign, 1 = phishing).
const PhishingClass = 1

// Classifier is the capability surface required from an externally owned
// model artifact. Implementations must be safe for concurrent read-only
// inference.
type Classifier interface {
	// PredictProbabilities runs inference on one feature row (already
	// aligned to the artifact's column order) and returns the per-class
	// probability distribution.
	PredictProbabilities(ctx context.Context, row []float64) ([]float64, error)

	// ClassLabels returns the ordered class labels the probabilities refer
	// to. ok is false when the artifact does not expose them.
	ClassLabels() ([]int, bool)

	// ExpectedColumns returns the feature-column ordering the artifact was
	// trained against. ok is false when unknown, in which case the
	// extractor's native order is used.
	ExpectedColumns() ([]string, bool)
}

// SchemaVersioned is an optional capability: artifacts that know which
// feature schema they were trained against expose it so drift becomes a
// construction-time configuration error instead of a silent zero-fill.
type SchemaVersioned interface {
	SchemaVersion() (int, bool)
}

// Outcome is the explicit result of a classification attempt, consumed
// exhaustively by the blender: either a calibrated probability or an
// unavailability reason, never both.
type Outcome struct {
	Scored      bool
	Probability float64 // P(phishing), only meaningful when Scored
	Reason      string  // why inference was unavailable, only when !Scored
}

// Scored wraps a calibrated phishing probability.
func Scored(p float64) Outcome {
	return Outcome{Scored: true, Probability: p}
}

// Unavailable reports that no probability could be produced.
func Unavailable(format string, args ...any) Outcome {
	return Outcome{Reason: fmt.Sprintf(format, args...)}
}

// Adapter aligns feature vectors to a classifier's expected schema and
// extracts P(phishing) from its output. All optional capabilities are
// resolved once at construction, not per call.
type Adapter struct {
	clf     Classifier
	columns []string // resolved column order for every inference call
}

// NewAdapter validates the classifier once and resolves its column order.
// A schema version mismatch between the artifact and the feature extractor
// is a configuration error: the operator shipped the wrong model.
func NewAdapter(clf Classifier) (*Adapter, error) {
	if clf == nil {
		return nil, fmt.Errorf("classifier handle is nil")
	}

	if sv, ok := clf.(SchemaVersioned); ok {
		if version, known := sv.SchemaVersion(); known && version != lexical.SchemaVersion {
			return nil, fmt.Errorf("classifier trained against feature schema v%d, extractor is v%d",
				version, lexical.SchemaVersion)
		}
	}

	columns, ok := clf.ExpectedColumns()
	if !ok || len(columns) == 0 {
		columns = lexical.Columns()
	}

	return &Adapter{clf: clf, columns: columns}, nil
}

// Columns returns the resolved column order used for alignment.
func (a *Adapter) Columns() []string {
	out := make([]string, len(a.columns))
	copy(out, a.columns)
	return out
}

// Probability aligns the vector, invokes inference, and disambiguates the
// result into P(phishing). Every failure mode, including a panicking
// handle, collapses into an Unavailable outcome.
func (a *Adapter) Probability(ctx context.Context, features lexical.FeatureVector) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[WARN] classifier panicked during inference: %v", r)
			out = Unavailable("classifier panic: %v", r)
		}
	}()

	row := a.align(features.AsMap())

	probs, err := a.clf.PredictProbabilities(ctx, row)
	if err != nil {
		return Unavailable("inference failed: %v", err)
	}
	if len(probs) == 0 {
		return Unavailable("classifier returned no probabilities")
	}

	labels, haveLabels := a.clf.ClassLabels()

	// Degenerate single-class model: the label ordering tells us which
	// class the lone value belongs to.
	if len(probs) == 1 {
		if haveLabels && len(labels) > 0 && labels[0] == PhishingClass {
			return Scored(probs[0])
		}
		return Scored(1.0 - probs[0])
	}

	idx := 1 // conventional position of the positive class
	if haveLabels {
		for i, l := range labels {
			if l == PhishingClass {
				idx = i
				break
			}
		}
	}
	if idx >= len(probs) {
		return Unavailable("phishing class index %d out of range for %d probabilities", idx, len(probs))
	}
	return Scored(probs[idx])
}

// align orders the named features to the resolved column order,
// zero-filling expected columns the vector lacks and ignoring extras.
func (a *Adapter) align(named map[string]float64) []float64 {
	row := make([]float64, len(a.columns))
	for i, col := range a.columns {
		row[i] = named[col] // missing keys read as 0.0
	}
	return row
}

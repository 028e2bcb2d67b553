package ml

// hugot.go - transformer-based URL classification via Hugot/ONNX.
//
// Some deployments ship a fine-tuned BERT-family model that classifies the
// raw URL string directly instead of a tabular feature model. This backend
// wraps such a model behind the same probability contract: when no tabular
// artifact is configured, the engine uses the transformer's phishing
// confidence as the calibrated probability.
//
// Runs fully local. Gracefully degrades to the heuristic blend when the
// model directory or ONNX Runtime is unavailable.

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/options"
	"github.com/knights-analytics/hugot/pipelines"
)

// URLModelConfig configures the transformer URL classifier.
type URLModelConfig struct {
	// ModelPath is the local directory holding the exported model
	// (model.onnx plus tokenizer files).
	ModelPath string

	// OnnxLibraryPath points hugot at libonnxruntime. Empty falls back to
	// the pure Go backend (slower, no native dependency).
	OnnxLibraryPath string

	// Timeout bounds a single inference call.
	Timeout time.Duration
}

// DefaultURLModelConfig reads the conventional environment knobs.
func DefaultURLModelConfig() URLModelConfig {
	return URLModelConfig{
		ModelPath:       os.Getenv("PHISHGUARD_URL_MODEL_PATH"),
		OnnxLibraryPath: os.Getenv("ONNX_LIBRARY_PATH"),
		Timeout:         30 * time.Second,
	}
}

// URLTextClassifier classifies raw URL strings with a local transformer.
type URLTextClassifier struct {
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
	config   URLModelConfig
	mu       sync.RWMutex
	ready    bool
}

// URLClassification is a single transformer verdict.
type URLClassification struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	IsPhishing bool    `json:"is_phishing"`
}

// NewURLTextClassifier initializes the session and pipeline.
func NewURLTextClassifier(cfg URLModelConfig) (*URLTextClassifier, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("no URL model path configured")
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("URL model directory: %w", err)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	c := &URLTextClassifier{config: cfg}

	session, err := c.createSession()
	if err != nil {
		return nil, fmt.Errorf("create hugot session: %w", err)
	}

	pipeline, err := hugot.NewPipeline(session, hugot.TextClassificationConfig{
		ModelPath: cfg.ModelPath,
		Name:      "url-phishing-classifier",
	})
	if err != nil {
		_ = session.Destroy()
		return nil, fmt.Errorf("create classification pipeline: %w", err)
	}

	c.session = session
	c.pipeline = pipeline
	c.ready = true
	log.Printf("✓ transformer URL classifier ready (model: %s)", cfg.ModelPath)
	return c, nil
}

// NewURLTextClassifierWithFallback returns a not-ready classifier instead
// of an error so callers can degrade with a single IsReady check.
func NewURLTextClassifierWithFallback(cfg URLModelConfig) *URLTextClassifier {
	c, err := NewURLTextClassifier(cfg)
	if err != nil {
		log.Printf("○ transformer URL classifier disabled: %v", err)
		return &URLTextClassifier{config: cfg}
	}
	return c
}

// createSession prefers the ONNX Runtime backend and falls back to the
// pure Go backend when the native library is missing.
func (c *URLTextClassifier) createSession() (*hugot.Session, error) {
	if c.config.OnnxLibraryPath != "" {
		session, err := hugot.NewORTSession(
			options.WithOnnxLibraryPath(c.config.OnnxLibraryPath),
		)
		if err == nil {
			return session, nil
		}
		log.Printf("[WARN] ONNX Runtime backend unavailable, using Go backend: %v", err)
	}
	return hugot.NewGoSession()
}

// IsReady reports whether inference can run.
func (c *URLTextClassifier) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// isPhishingLabel maps the label conventions of known URL models onto the
// positive class.
func isPhishingLabel(label string) bool {
	switch label {
	case "phishing", "PHISHING", "malicious", "LABEL_1":
		return true
	default:
		return false
	}
}

// ClassifyURL runs a single URL through the pipeline.
func (c *URLTextClassifier) ClassifyURL(ctx context.Context, url string) (URLClassification, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.ready || c.pipeline == nil {
		return URLClassification{}, fmt.Errorf("url classifier not ready")
	}
	if err := ctx.Err(); err != nil {
		return URLClassification{}, err
	}

	result, err := c.pipeline.RunPipeline([]string{url})
	if err != nil {
		return URLClassification{}, fmt.Errorf("url classification: %w", err)
	}
	if len(result.ClassificationOutputs) == 0 || len(result.ClassificationOutputs[0]) == 0 {
		return URLClassification{}, fmt.Errorf("url classifier returned no outputs")
	}

	out := result.ClassificationOutputs[0][0]
	return URLClassification{
		Label:      out.Label,
		Confidence: float64(out.Score),
		IsPhishing: isPhishingLabel(out.Label),
	}, nil
}

// Probability adapts a transformer verdict to the Outcome contract:
// the phishing-label confidence becomes P(phishing) directly, a benign
// label inverts it.
func (c *URLTextClassifier) Probability(ctx context.Context, url string) Outcome {
	cls, err := c.ClassifyURL(ctx, url)
	if err != nil {
		return Unavailable("transformer classifier: %v", err)
	}
	if cls.IsPhishing {
		return Scored(cls.Confidence)
	}
	return Scored(1.0 - cls.Confidence)
}

// Close releases the hugot session.
func (c *URLTextClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ready = false
	if c.session != nil {
		if err := c.session.Destroy(); err != nil {
			return fmt.Errorf("destroy hugot session: %w", err)
		}
		c.session = nil
	}
	return nil
}

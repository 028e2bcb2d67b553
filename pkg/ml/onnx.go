package ml

// onnx.go - tabular classifier inference via ONNX Runtime.
//
// The training collaborator exports the fitted model (a scikit-learn
// RandomForest in practice) to ONNX with zipmap disabled, alongside a
// metadata sidecar (<model>.meta.json) recording the feature column order,
// class label order, and the feature schema version it was trained against.
//
// Runs fully local - no external API calls. Gracefully degrades to the
// heuristic blend if ONNX Runtime or the artifact is unavailable.

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXConfig configures the tabular ONNX classifier.
type ONNXConfig struct {
	// ModelPath is the path to the .onnx artifact.
	ModelPath string

	// MetaPath is the path to the metadata sidecar. Defaults to
	// ModelPath + ".meta.json".
	MetaPath string

	// OnnxLibraryPath is the path to libonnxruntime.so / .dylib.
	// Empty uses the platform default below.
	OnnxLibraryPath string
}

// modelMeta is the sidecar written by the training export.
type modelMeta struct {
	Columns       []string `json:"columns"`
	Classes       []int    `json:"classes"`
	SchemaVersion int      `json:"schema_version"`
	InputName     string   `json:"input_name"`     // default "float_input"
	ProbOutput    string   `json:"prob_output"`    // default "probabilities"
}

// ONNXClassifier implements Classifier over a tabular ONNX artifact.
// Safe for concurrent inference; ONNX Runtime session runs are thread-safe.
type ONNXClassifier struct {
	session *ort.DynamicAdvancedSession
	meta    modelMeta
	width   int
	mu      sync.RWMutex
	ready   bool
}

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// initRuntime initializes the shared ONNX Runtime environment exactly once
// per process.
func initRuntime(libraryPath string) error {
	ortInitOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// getDefaultOnnxPath returns the conventional onnxruntime library location
// for the current platform.
func getDefaultOnnxPath() string {
	if p := os.Getenv("ONNX_LIBRARY_PATH"); p != "" {
		return p
	}
	switch runtime.GOOS {
	case "darwin":
		return "/usr/local/lib/libonnxruntime.dylib"
	default:
		return "/usr/lib/libonnxruntime.so"
	}
}

// NewONNXClassifier loads the artifact and its sidecar. Errors here are
// configuration errors (missing file, malformed sidecar, schema drift is
// caught later by NewAdapter); callers that prefer degradation over
// failure should use NewONNXClassifierWithFallback.
func NewONNXClassifier(cfg ONNXConfig) (*ONNXClassifier, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("model path is empty")
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("model artifact: %w", err)
	}

	metaPath := cfg.MetaPath
	if metaPath == "" {
		metaPath = cfg.ModelPath + ".meta.json"
	}
	meta, err := loadModelMeta(metaPath)
	if err != nil {
		return nil, err
	}

	libPath := cfg.OnnxLibraryPath
	if libPath == "" {
		libPath = getDefaultOnnxPath()
	}
	if err := initRuntime(libPath); err != nil {
		return nil, fmt.Errorf("initialize onnxruntime: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(
		cfg.ModelPath,
		[]string{meta.InputName},
		[]string{meta.ProbOutput},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &ONNXClassifier{
		session: session,
		meta:    meta,
		width:   len(meta.Columns),
		ready:   true,
	}, nil
}

// NewONNXClassifierWithFallback returns a not-ready classifier instead of
// an error, so the caller can fall back to heuristics with a single check.
func NewONNXClassifierWithFallback(cfg ONNXConfig) *ONNXClassifier {
	clf, err := NewONNXClassifier(cfg)
	if err != nil {
		log.Printf("[WARN] ONNX classifier unavailable: %v", err)
		return &ONNXClassifier{}
	}
	return clf
}

func loadModelMeta(path string) (modelMeta, error) {
	var meta modelMeta
	data, err := os.ReadFile(path)
	if err != nil {
		return meta, fmt.Errorf("model metadata: %w", err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("parse model metadata: %w", err)
	}
	if len(meta.Columns) == 0 {
		return meta, fmt.Errorf("model metadata %s declares no columns", path)
	}
	if meta.InputName == "" {
		meta.InputName = "float_input"
	}
	if meta.ProbOutput == "" {
		meta.ProbOutput = "probabilities"
	}
	return meta, nil
}

// IsReady reports whether the session loaded and inference can run.
func (c *ONNXClassifier) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// PredictProbabilities implements Classifier for a single feature row.
func (c *ONNXClassifier) PredictProbabilities(ctx context.Context, row []float64) ([]float64, error) {
	if !c.IsReady() {
		return nil, fmt.Errorf("onnx classifier not ready")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(row) != c.width {
		return nil, fmt.Errorf("feature row has %d values, model expects %d", len(row), c.width)
	}

	data := make([]float32, len(row))
	for i, v := range row {
		data[i] = float32(v)
	}

	input, err := ort.NewTensor(ort.NewShape(1, int64(c.width)), data)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}
	if err := c.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("onnx inference: %w", err)
	}

	probTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		if outputs[0] != nil {
			outputs[0].Destroy()
		}
		return nil, fmt.Errorf("unexpected probability output type %T", outputs[0])
	}
	defer probTensor.Destroy()

	raw := probTensor.GetData()
	probs := make([]float64, len(raw))
	for i, p := range raw {
		probs[i] = float64(p)
	}
	return probs, nil
}

// ClassLabels implements Classifier from the sidecar.
func (c *ONNXClassifier) ClassLabels() ([]int, bool) {
	if len(c.meta.Classes) == 0 {
		return nil, false
	}
	out := make([]int, len(c.meta.Classes))
	copy(out, c.meta.Classes)
	return out, true
}

// ExpectedColumns implements Classifier from the sidecar.
func (c *ONNXClassifier) ExpectedColumns() ([]string, bool) {
	if len(c.meta.Columns) == 0 {
		return nil, false
	}
	out := make([]string, len(c.meta.Columns))
	copy(out, c.meta.Columns)
	return out, true
}

// SchemaVersion implements SchemaVersioned from the sidecar. A sidecar
// written before schema tagging reports unknown rather than zero.
func (c *ONNXClassifier) SchemaVersion() (int, bool) {
	if c.meta.SchemaVersion == 0 {
		return 0, false
	}
	return c.meta.SchemaVersion, true
}

// Close releases the ONNX session.
func (c *ONNXClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		c.session.Destroy()
		c.session = nil
	}
	c.ready = false
	return nil
}

package ml

import (
	"context"
	"testing"
	"time"
)

func TestNewURLTextClassifierMissingModel(t *testing.T) {
	if _, err := NewURLTextClassifier(URLModelConfig{}); err == nil {
		t.Error("expected error for empty model path")
	}
	if _, err := NewURLTextClassifier(URLModelConfig{ModelPath: "/nonexistent/url-model"}); err == nil {
		t.Error("expected error for missing model directory")
	}
}

func TestNewURLTextClassifierWithFallbackDegrades(t *testing.T) {
	c := NewURLTextClassifierWithFallback(URLModelConfig{ModelPath: "/nonexistent/url-model"})
	if c == nil {
		t.Fatal("fallback constructor must never return nil")
	}
	if c.IsReady() {
		t.Error("classifier with missing model must not report ready")
	}

	out := c.Probability(context.Background(), "https://example.com/")
	if out.Scored {
		t.Error("not-ready classifier must produce an unavailable outcome")
	}
	if out.Reason == "" {
		t.Error("unavailable outcome must carry a reason")
	}

	if err := c.Close(); err != nil {
		t.Errorf("closing a not-ready classifier: %v", err)
	}
}

func TestDefaultURLModelConfig(t *testing.T) {
	t.Setenv("PHISHGUARD_URL_MODEL_PATH", "/models/url-bert")
	t.Setenv("ONNX_LIBRARY_PATH", "/opt/onnx/libonnxruntime.so")

	cfg := DefaultURLModelConfig()
	if cfg.ModelPath != "/models/url-bert" {
		t.Errorf("model path = %q", cfg.ModelPath)
	}
	if cfg.OnnxLibraryPath != "/opt/onnx/libonnxruntime.so" {
		t.Errorf("library path = %q", cfg.OnnxLibraryPath)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", cfg.Timeout)
	}
}

func TestIsPhishingLabel(t *testing.T) {
	testCases := []struct {
		label string
		want  bool
	}{
		{"phishing", true},
		{"PHISHING", true},
		{"malicious", true},
		{"LABEL_1", true},
		{"benign", false},
		{"LABEL_0", false},
		{"", false},
	}
	for _, tc := range testCases {
		if got := isPhishingLabel(tc.label); got != tc.want {
			t.Errorf("isPhishingLabel(%q) = %v, want %v", tc.label, got, tc.want)
		}
	}
}

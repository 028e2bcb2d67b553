package ml

import (
	"context"
	"log"

	"github.com/shri-birje/Phishguard/pkg/lexical"
	"github.com/shri-birje/Phishguard/pkg/patterns"
	"github.com/shri-birje/Phishguard/pkg/trust"
)

// Mode records which scoring path produced a verdict, for diagnostics.
type Mode string

const (
	// ModeModel: a classifier probability entered the blend.
	ModeModel Mode = "model"
	// ModeHeuristic: classifier unavailable, homoglyph/behavior blend.
	ModeHeuristic Mode = "heuristic"
	// ModeBlocklist: host was on the blocklist, no scoring ran.
	ModeBlocklist Mode = "blocklist"
)

// Assessment is the immutable output of one evaluation. Scores are
// percentages rounded to 2 decimals; MLProbability is absent when the
// heuristic path ran.
type Assessment struct {
	URL            string          `json:"url"`
	HomoglyphScore float64         `json:"homoglyph_score"`
	BehaviorScore  float64         `json:"behavior_score"`
	PhishingScore  float64         `json:"phishing_score"`
	RiskLevel      RiskLevel       `json:"risk_level"`
	Action         Action          `json:"action"`
	Mode           Mode            `json:"mode"`
	Suspect        bool            `json:"suspect"`
	MLProbability  *float64        `json:"ml_probability,omitempty"`
	Unavailable    string          `json:"classifier_unavailable,omitempty"`
	Lookalike      *LookalikeMatch `json:"lookalike,omitempty"`
	Reasons        []string        `json:"reasons,omitempty"`
}

// Engine evaluates URLs. It is pure and synchronous per call: no internal
// mutable state is touched during Evaluate, so one Engine serves any
// number of concurrent evaluations.
//
// All components except the lexical heuristics are optional and the engine
// degrades through them in order: tabular classifier, transformer URL
// classifier, heuristic-only blend.
type Engine struct {
	adapter       *Adapter           // tabular classifier, optional
	urlClassifier *URLTextClassifier // transformer fallback, optional
	lookalike     *LookalikeIndex    // diagnostic nearest-campaign, optional
	weights       Weights
}

// EngineOption configures optional engine components.
type EngineOption func(*Engine)

// WithAdapter attaches a validated tabular classifier adapter.
func WithAdapter(a *Adapter) EngineOption {
	return func(e *Engine) { e.adapter = a }
}

// WithURLClassifier attaches the transformer URL classifier used when no
// tabular probability is available.
func WithURLClassifier(c *URLTextClassifier) EngineOption {
	return func(e *Engine) { e.urlClassifier = c }
}

// WithLookalikeIndex attaches the diagnostic nearest-campaign index.
func WithLookalikeIndex(idx *LookalikeIndex) EngineOption {
	return func(e *Engine) { e.lookalike = idx }
}

// WithWeights overrides the model-path blend weights.
func WithWeights(w Weights) EngineOption {
	return func(e *Engine) { e.weights = w }
}

// NewEngine assembles an engine. With no options it scores on heuristics
// alone, which is always available.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate scores one URL against the trusted-domain snapshot.
//
// behaviorScore is an opaque caller-supplied signal already in [0,100];
// it passes through to the assessment and only enters the blend on the
// heuristic path. The trusted snapshot must not be mutated during the
// call; the engine never mutates it.
func (e *Engine) Evaluate(ctx context.Context, url string, behaviorScore float64, trusted *trust.Set) *Assessment {
	var domains []string
	if trusted != nil {
		domains = trusted.Domains()
	}

	homoglyph := lexical.HomoglyphScore(url, domains)

	a := &Assessment{
		URL:            url,
		HomoglyphScore: round2(homoglyph),
		BehaviorScore:  round2(behaviorScore),
	}

	outcome := e.classify(ctx, url, domains)
	if outcome.Scored {
		p := outcome.Probability
		a.MLProbability = &p
		a.PhishingScore = e.weights.BlendModel(p, homoglyph)
		a.Suspect = p >= 0.5
		a.Mode = ModeModel
	} else {
		a.Unavailable = outcome.Reason
		a.PhishingScore = BlendHeuristic(homoglyph, behaviorScore)
		a.Suspect = a.PhishingScore >= suspectThreshold
		a.Mode = ModeHeuristic
	}

	a.RiskLevel, a.Action = ClassifyRisk(a.PhishingScore)
	a.Reasons = patterns.Get().Describe(url)

	if e.lookalike != nil && e.lookalike.IsReady() {
		if match, err := e.lookalike.Nearest(ctx, url); err == nil && match != nil {
			a.Lookalike = match
		}
	}

	return a
}

// classify walks the probability sources in preference order. Feature
// extraction only happens when a tabular classifier is attached.
func (e *Engine) classify(ctx context.Context, url string, domains []string) Outcome {
	if e.adapter != nil {
		features := lexical.ExtractFeatures(url, domains)
		outcome := e.adapter.Probability(ctx, features)
		if outcome.Scored {
			return outcome
		}
		log.Printf("[WARN] tabular classifier unavailable (%s), trying fallback", outcome.Reason)
		if e.urlClassifier != nil && e.urlClassifier.IsReady() {
			return e.urlClassifier.Probability(ctx, url)
		}
		return outcome
	}

	if e.urlClassifier != nil && e.urlClassifier.IsReady() {
		return e.urlClassifier.Probability(ctx, url)
	}

	return Unavailable("no classifier configured")
}

// BlockedAssessment is the short-circuit verdict for a blocklisted host:
// maximal score, no scoring pipeline involved.
func BlockedAssessment(url string, behaviorScore float64) *Assessment {
	return &Assessment{
		URL:           url,
		BehaviorScore: round2(behaviorScore),
		PhishingScore: 100.0,
		RiskLevel:     RiskHigh,
		Action:        ActionBlock,
		Mode:          ModeBlocklist,
		Suspect:       true,
		Reasons:       []string{"host is blocklisted"},
	}
}

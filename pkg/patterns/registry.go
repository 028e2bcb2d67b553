// Package patterns provides a centralized registry of URL suspicion
// patterns used for verdict diagnostics. All regexes are compiled once at
// first use and shared across all evaluations.
//
// Matches here explain a verdict to an analyst; they never change the
// blended score, which is owned by pkg/ml.
package patterns

import (
	"regexp"
	"sync"
)

// Category groups related suspicion signals.
type Category string

const (
	// CategoryStructure: structural URL anomalies (IP hosts, userinfo
	// tricks, excessive nesting).
	CategoryStructure Category = "structure"
	// CategoryBait: credential-bait vocabulary in the hostname.
	CategoryBait Category = "bait"
	// CategoryInfra: hosting patterns common to throwaway campaigns.
	CategoryInfra Category = "infra"
)

// Pattern holds a compiled regex with metadata.
type Pattern struct {
	Name        string         // short identifier for logging
	Regex       *regexp.Regexp // compiled regex, never nil after init
	Category    Category
	Description string // analyst-facing explanation
}

// Registry holds all compiled patterns, organized by category.
type Registry struct {
	mu         sync.RWMutex
	byCategory map[Category][]*Pattern
	all        []*Pattern
}

var (
	globalRegistry *Registry
	initOnce       sync.Once
)

// Get returns the global pattern registry (singleton).
func Get() *Registry {
	initOnce.Do(func() {
		globalRegistry = newRegistry()
	})
	return globalRegistry
}

func newRegistry() *Registry {
	r := &Registry{byCategory: make(map[Category][]*Pattern)}
	r.registerStructurePatterns()
	r.registerBaitPatterns()
	r.registerInfraPatterns()
	return r
}

func (r *Registry) register(name, pattern string, category Category, description string) {
	p := &Pattern{
		Name:        name,
		Regex:       regexp.MustCompile(pattern),
		Category:    category,
		Description: description,
	}
	r.byCategory[category] = append(r.byCategory[category], p)
	r.all = append(r.all, p)
}

// GetByCategory returns all patterns for a category, never nil.
func (r *Registry) GetByCategory(cat Category) []*Pattern {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if patterns, ok := r.byCategory[cat]; ok {
		return patterns
	}
	return []*Pattern{}
}

// MatchAll returns every pattern that matches the URL.
func (r *Registry) MatchAll(url string) []*Pattern {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matches []*Pattern
	for _, p := range r.all {
		if p.Regex.MatchString(url) {
			matches = append(matches, p)
		}
	}
	return matches
}

// Describe returns the analyst-facing descriptions of every matching
// pattern, or nil when nothing matched.
func (r *Registry) Describe(url string) []string {
	matches := r.MatchAll(url)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Description
	}
	return out
}

// TotalPatterns returns the total count of registered patterns.
func (r *Registry) TotalPatterns() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.all)
}

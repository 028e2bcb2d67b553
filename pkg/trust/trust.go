// Package trust provides the immutable domain snapshots consumed by the
// scoring engine: the trusted-domain set used for similarity scanning and
// the blocklist of known-bad hosts.
//
// A Set is loaded once and never mutated afterwards, so it is safe to share
// across concurrent evaluations without coordination. The Blocklist is the
// one mutable collaborator (operators append to it at runtime) and guards
// its state with a mutex.
package trust

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/shri-birje/Phishguard/pkg/lexical"
)

// Set is an immutable, ordered collection of canonical trusted domains.
type Set struct {
	ordered []string
	index   map[string]struct{}
}

// NewSet builds a Set from the given domains. Entries are lowercased and
// deduplicated; insertion order of first occurrence is preserved because
// the similarity scan iterates in order.
func NewSet(domains []string) *Set {
	s := &Set{index: make(map[string]struct{}, len(domains))}
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if _, dup := s.index[d]; dup {
			continue
		}
		s.index[d] = struct{}{}
		s.ordered = append(s.ordered, d)
	}
	return s
}

// LoadSet reads a flat trusted-domain file: one canonical domain per line,
// case-insensitive, blank lines and #-comments skipped, no wildcards.
func LoadSet(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trusted domains: %w", err)
	}
	defer f.Close()

	var domains []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		domains = append(domains, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read trusted domains: %w", err)
	}
	return NewSet(domains), nil
}

// Contains reports whether d is a member. The domain must already be in
// canonical (lowercase) form; ExtractHost output qualifies.
func (s *Set) Contains(d string) bool {
	_, ok := s.index[d]
	return ok
}

// Domains returns the members in load order. The returned slice is a copy;
// callers cannot mutate the snapshot through it.
func (s *Set) Domains() []string {
	out := make([]string, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// Len returns the number of members.
func (s *Set) Len() int {
	return len(s.ordered)
}

// Blocklist is a file-backed set of known-bad hosts. Lookups are served
// from memory; Add appends to the backing file so the entry survives a
// restart.
type Blocklist struct {
	mu    sync.RWMutex
	path  string
	hosts map[string]struct{}
}

// LoadBlocklist reads the blocklist file, creating an empty one if it does
// not exist yet.
func LoadBlocklist(path string) (*Blocklist, error) {
	b := &Blocklist{path: path, hosts: make(map[string]struct{})}

	f, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open blocklist: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		b.hosts[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read blocklist: %w", err)
	}
	return b, nil
}

// Contains reports whether the URL's hostname is blocklisted.
func (b *Blocklist) Contains(urlOrHost string) bool {
	host := lexical.ExtractHost(urlOrHost)
	if host == "" {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.hosts[host]
	return ok
}

// Add records the URL's hostname in memory and appends it to the backing
// file. Returns true if the host was newly added, false if it was already
// present or unparseable.
func (b *Blocklist) Add(urlOrHost string) (bool, error) {
	host := lexical.ExtractHost(urlOrHost)
	if host == "" {
		return false, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.hosts[host]; ok {
		return false, nil
	}

	f, err := os.OpenFile(b.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return false, fmt.Errorf("append blocklist: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(host + "\n"); err != nil {
		return false, fmt.Errorf("append blocklist: %w", err)
	}

	b.hosts[host] = struct{}{}
	return true, nil
}

// Len returns the number of blocklisted hosts.
func (b *Blocklist) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.hosts)
}

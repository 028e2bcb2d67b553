package ml

// lookalike.go - nearest-known-campaign lookup over a corpus of previously
// confirmed phishing hosts, backed by chromem-go.
//
// The embedding is a local character-trigram hashing vector, so the index
// works offline with no embedding service. Results are diagnostic: the
// nearest confirmed campaign is attached to the assessment for analysts,
// but never feeds the blended score.

import (
	"bufio"
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"os"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/shri-birje/Phishguard/pkg/lexical"
)

// lookalikeDims is the dimensionality of the trigram hashing embedding.
// 256 buckets is plenty for hostname-length strings.
const lookalikeDims = 256

// LookalikeMatch is the nearest confirmed campaign for a scored host.
type LookalikeMatch struct {
	Host       string  `json:"host"`
	Campaign   string  `json:"campaign,omitempty"`
	Similarity float32 `json:"similarity"`
}

// LookalikeIndex is an in-memory vector index of known phishing hosts.
type LookalikeIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
	mu         sync.RWMutex
	ready      bool
}

// NewLookalikeIndex creates an empty index with the local trigram embedder.
func NewLookalikeIndex() (*LookalikeIndex, error) {
	db := chromem.NewDB()
	collection, err := db.CreateCollection("known_phish_hosts", nil, trigramEmbedding)
	if err != nil {
		return nil, fmt.Errorf("create lookalike collection: %w", err)
	}
	return &LookalikeIndex{db: db, collection: collection}, nil
}

// LoadCorpus reads a known-phish file: one host per line, optionally
// followed by whitespace and a campaign tag. Blank lines and #-comments
// are skipped.
func (idx *LookalikeIndex) LoadCorpus(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open known-phish corpus: %w", err)
	}
	defer f.Close()

	var docs []chromem.Document
	scanner := bufio.NewScanner(f)
	n := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		host := lexical.ExtractHost(fields[0])
		if host == "" {
			continue
		}
		campaign := ""
		if len(fields) > 1 {
			campaign = fields[1]
		}
		docs = append(docs, chromem.Document{
			ID:       fmt.Sprintf("host_%d", n),
			Content:  host,
			Metadata: map[string]string{"campaign": campaign},
		})
		n++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read known-phish corpus: %w", err)
	}
	if len(docs) == 0 {
		return fmt.Errorf("known-phish corpus %s is empty", path)
	}

	// local embedder, so full concurrency is fine
	if err := idx.collection.AddDocuments(ctx, docs, 4); err != nil {
		return fmt.Errorf("index known-phish corpus: %w", err)
	}

	idx.mu.Lock()
	idx.ready = true
	idx.mu.Unlock()
	return nil
}

// IsReady reports whether a corpus has been loaded.
func (idx *LookalikeIndex) IsReady() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.ready
}

// Nearest returns the closest known campaign for the URL's hostname, or
// nil when the index is empty or the host unparseable.
func (idx *LookalikeIndex) Nearest(ctx context.Context, url string) (*LookalikeMatch, error) {
	if !idx.IsReady() {
		return nil, fmt.Errorf("lookalike index not loaded")
	}
	host := lexical.ExtractHost(url)
	if host == "" {
		return nil, nil
	}

	results, err := idx.collection.Query(ctx, host, 1, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("lookalike query: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	best := results[0]
	return &LookalikeMatch{
		Host:       best.Content,
		Campaign:   best.Metadata["campaign"],
		Similarity: best.Similarity,
	}, nil
}

// trigramEmbedding hashes character trigrams of s into a fixed-width
// L2-normalized vector. Cosine similarity over these vectors approximates
// character n-gram overlap, which is what hostname lookalikes share.
func trigramEmbedding(_ context.Context, s string) ([]float32, error) {
	vec := make([]float32, lookalikeDims)
	runes := []rune("^" + strings.ToLower(s) + "$")
	if len(runes) < 3 {
		runes = append(runes, '$', '$')
	}
	for i := 0; i+3 <= len(runes); i++ {
		h := fnv.New32a()
		for _, r := range runes[i : i+3] {
			var buf [4]byte
			buf[0] = byte(r)
			buf[1] = byte(r >> 8)
			buf[2] = byte(r >> 16)
			buf[3] = byte(r >> 24)
			h.Write(buf[:])
		}
		vec[h.Sum32()%lookalikeDims]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec, nil
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec, nil
}

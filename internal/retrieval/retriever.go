// Package retrieval finds the legal-corpus passages closest to contract clauses.
package retrieval

import (
	"context"
	"log"
	"strings"

	"github.com/jonathan/contract-review/internal/retry"
	"github.com/jonathan/contract-review/internal/types"
)

// DefaultSearchLimit is the number of passages returned by ad-hoc corpus searches
const DefaultSearchLimit = 3

// Hit is a corpus passage with its similarity to the query
type Hit struct {
	Entry types.ReferenceEntry `json:"entry"`
	Score float64              `json:"score"`
}

// Searcher returns up to k corpus passages ranked by similarity to query
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]Hit, error)
}

// Retriever matches each clause with its nearest corpus passage
type Retriever struct {
	searcher Searcher
	policy   retry.Policy
}

// NewRetriever creates a Retriever. Transient searcher errors are retried with policy.
func NewRetriever(searcher Searcher, policy retry.Policy) *Retriever {
	return &Retriever{searcher: searcher, policy: policy}
}

// Retrieve returns the nearest passage of every non-empty clause, in clause order,
// without duplicate passage texts. Clauses with no match or a failing search are skipped.
func (r *Retriever) Retrieve(ctx context.Context, clauses []types.ClauseRef) []types.ReferenceMatch {
	matches := make([]types.ReferenceMatch, 0, len(clauses))
	seen := make(map[string]struct{}, len(clauses))

	for _, clause := range clauses {
		query := strings.TrimSpace(clause.Text)
		if query == "" {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		var hits []Hit
		_, err := r.policy.Do(ctx, func(ctx context.Context, _ int) error {
			var err error
			hits, err = r.searcher.Search(ctx, query, 1)
			return err
		})
		if err != nil {
			log.Printf("[RETRIEVAL] clause %d: search failed: %v", clause.Index, err)
			continue
		}
		if len(hits) == 0 {
			continue
		}

		entry := hits[0].Entry
		if _, dup := seen[entry.Text]; dup {
			continue
		}
		seen[entry.Text] = struct{}{}
		matches = append(matches, types.ReferenceMatch{Title: entry.Title, Text: entry.Text})
	}

	return matches
}

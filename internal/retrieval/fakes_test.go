package retrieval

import (
	"context"
	"errors"
	"strings"
)

// fakeEmbedder maps texts to vectors by keyword so tests control similarity
type fakeEmbedder struct {
	calls int
	err   error
}

var keywordAxes = []string{"préavis", "salaire", "congé", "essai"}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, len(keywordAxes))
		lower := strings.ToLower(t)
		for j, kw := range keywordAxes {
			if strings.Contains(lower, kw) {
				v[j] = 1
			}
		}
		out[i] = v
	}
	return out, nil
}

// fakeSearcher returns scripted hits per query
type fakeSearcher struct {
	hits     map[string][]Hit
	failures map[string]int
	calls    map[string]int
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{
		hits:     make(map[string][]Hit),
		failures: make(map[string]int),
		calls:    make(map[string]int),
	}
}

func (f *fakeSearcher) Search(_ context.Context, query string, _ int) ([]Hit, error) {
	f.calls[query]++
	if f.failures[query] > 0 {
		f.failures[query]--
		return nil, errors.New("connection reset")
	}
	return f.hits[query], nil
}

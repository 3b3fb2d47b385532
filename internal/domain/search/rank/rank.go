// Package rank scores tagged records against a free-text query and selects
// the top-K. Everything here is pure: records are never mutated and no
// state is shared between calls, so a Ranker is safe for concurrent use.
//
// For large collections an inverted index (token -> record IDs) would avoid
// rescoring every record; at current volumes the full scan is enough.
package rank

import (
	"sort"
	"strings"

	"github.com/kailas-cloud/tagdex/internal/domain/record"
)

const (
	// DefaultK is the number of hits returned when the caller does not ask for a size.
	DefaultK = 10

	tokenHitWeight = 1.0
	exactTagWeight = 0.5
)

// Hit is a record paired with its relevance score.
type Hit struct {
	Record record.Record
	Score  float64
}

// Ranker scores records with a pluggable tokenizer.
type Ranker struct {
	tok Tokenizer
}

// New creates a Ranker. A nil tokenizer selects SimpleTokenizer.
func New(tok Tokenizer) *Ranker {
	if tok == nil {
		tok = SimpleTokenizer{}
	}
	return &Ranker{tok: tok}
}

var defaultRanker = New(nil)

// Score ranks one record with the default tokenizer.
func Score(query string, rec *record.Record) float64 {
	return defaultRanker.Score(query, rec)
}

// TopK selects the best k records with the default tokenizer.
func TopK(query string, records []record.Record, k int) []record.Record {
	return defaultRanker.TopK(query, records, k)
}

// Score returns the relevance of rec for query, always >= 0.
//
// Every query token (repeats included) found among the record's description
// and tag tokens adds 1; every query token equal to a whole tag
// (case-insensitive) adds another 0.5.
func (r *Ranker) Score(query string, rec *record.Record) float64 {
	return r.score(r.tok.Tokenize(query), rec)
}

func (r *Ranker) score(queryTokens []string, rec *record.Record) float64 {
	if len(queryTokens) == 0 || rec == nil {
		return 0
	}

	tags := rec.Tags()
	hay := r.tok.Tokenize(rec.Description() + " " + strings.Join(tags, " "))
	if len(hay) == 0 {
		return 0
	}

	haySet := make(map[string]struct{}, len(hay))
	for _, t := range hay {
		haySet[t] = struct{}{}
	}
	tagSet := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		tagSet[lower(t)] = struct{}{}
	}

	var s float64
	for _, t := range queryTokens {
		if _, ok := haySet[t]; ok {
			s += tokenHitWeight
		}
		if _, ok := tagSet[t]; ok {
			s += exactTagWeight
		}
	}
	return s
}

// Rank scores every record, drops non-positive scores and returns at most k
// hits by descending score. Ties keep their input order, so a store snapshot
// in insertion order breaks ties by ascending ID. k <= 0 yields no hits.
func (r *Ranker) Rank(query string, records []record.Record, k int) []Hit {
	if k <= 0 || len(records) == 0 {
		return []Hit{}
	}

	q := r.tok.Tokenize(query)
	if len(q) == 0 {
		return []Hit{}
	}

	hits := make([]Hit, 0, len(records))
	for i := range records {
		if s := r.score(q, &records[i]); s > 0 {
			hits = append(hits, Hit{Record: records[i], Score: s})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// TopK is Rank without the scores.
func (r *Ranker) TopK(query string, records []record.Record, k int) []record.Record {
	hits := r.Rank(query, records, k)
	out := make([]record.Record, len(hits))
	for i, h := range hits {
		out[i] = h.Record
	}
	return out
}

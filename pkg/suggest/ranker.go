// Package suggest merges dictionary hits and learning boosts into the
// ranked candidate list surfaced to the user.
package suggest

import (
	"sort"

	"github.com/HiDomesticCat/zhuyinserve/pkg/dictionary"
)

// Hit is one dictionary match entering the ranker. Fuzzy marks entries
// found through tone-insensitive lookup.
type Hit struct {
	Entry dictionary.Entry
	Fuzzy bool
}

// Candidate is one ranked result.
type Candidate struct {
	Text  string
	Key   string
	Score float64
	Freq  int
	Fuzzy bool
}

// Options tune the ranking.
type Options struct {
	// FuzzyPenalty is subtracted from tone-insensitive matches so an
	// exact-tone match always outranks a fuzzy one of equal base
	// frequency. Tunable; see config [rank].
	FuzzyPenalty float64

	// Limit caps the returned list. Zero means unlimited.
	Limit int
}

// Rank scores hits and returns at most Limit candidates, ordered by
// descending combined score. The combined score is the static frequency
// weight plus the learning boost for the candidate's text, minus the
// fuzzy penalty where it applies. Ties fall back to static frequency,
// then to the hits' input order, which callers supply in dictionary
// insertion order. Deterministic for identical inputs.
func Rank(hits []Hit, boosts map[string]float64, opts Options) []Candidate {
	if len(hits) == 0 {
		return nil
	}

	cands := make([]Candidate, 0, len(hits))
	seen := make(map[string]struct{}, len(hits))
	for _, h := range hits {
		// The same text can arrive through both the exact and the fuzzy
		// path; the first (exact) occurrence wins.
		if _, dup := seen[h.Entry.Text]; dup {
			continue
		}
		seen[h.Entry.Text] = struct{}{}

		score := float64(h.Entry.Freq) + boosts[h.Entry.Text]
		if h.Fuzzy {
			score -= opts.FuzzyPenalty
		}
		cands = append(cands, Candidate{
			Text:  h.Entry.Text,
			Key:   h.Entry.Key,
			Score: score,
			Freq:  h.Entry.Freq,
			Fuzzy: h.Fuzzy,
		})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return cands[i].Freq > cands[j].Freq
	})

	if opts.Limit > 0 && len(cands) > opts.Limit {
		cands = cands[:opts.Limit]
	}
	return cands
}

// Exact wraps entries as exact-tone hits.
func Exact(entries []dictionary.Entry) []Hit {
	hits := make([]Hit, len(entries))
	for i, e := range entries {
		hits[i] = Hit{Entry: e}
	}
	return hits
}

// Fuzzy wraps entries as tone-insensitive hits.
func Fuzzy(entries []dictionary.Entry) []Hit {
	hits := make([]Hit, len(entries))
	for i, e := range entries {
		hits[i] = Hit{Entry: e, Fuzzy: true}
	}
	return hits
}

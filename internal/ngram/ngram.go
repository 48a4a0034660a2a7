// Package ngram implements text-only similarity matching over a corpus with
// no layout information. It is the alternate backend to the structural
// section engine: windows of the corpus word stream are compared to the
// search text by Jaccard similarity over word n-gram sets.
package ngram

import (
	"sort"
	"strings"
)

// Options tune the matcher.
type Options struct {
	MinGram   int     // smallest n-gram size (default 2)
	MaxGram   int     // largest n-gram size (default 3)
	Threshold float64 // minimum Jaccard similarity to keep (default 0.8)
}

// DefaultOptions returns the matcher defaults.
func DefaultOptions() Options {
	return Options{MinGram: 2, MaxGram: 3, Threshold: 0.8}
}

// Match is one similar region of the corpus, addressed by word indexes
// into the normalized corpus word sequence.
type Match struct {
	Text      string  `json:"text"`
	Score     float64 `json:"score"`
	StartWord int     `json:"start_word"`
	EndWord   int     `json:"end_word"` // exclusive
}

// dedupeWordTolerance is the word-range slack within which two matches are
// treated as overlapping during deduplication.
const dedupeWordTolerance = 5

// FindSimilarText locates regions of corpusText similar to searchText.
// Both are lowercased and whitespace-normalized, then compared as word
// n-gram sets over sliding windows sized 0.8x to 1.2x the search word
// count. Overlapping matches are deduplicated keeping the highest score.
// Results are ordered by descending score.
func FindSimilarText(searchText, corpusText string, opts Options) []Match {
	if opts.MinGram <= 0 {
		opts.MinGram = 2
	}
	if opts.MaxGram < opts.MinGram {
		opts.MaxGram = opts.MinGram
	}
	if opts.Threshold <= 0 {
		opts.Threshold = 0.8
	}

	searchWords := normalizeWords(searchText)
	corpusWords := normalizeWords(corpusText)
	if len(searchWords) == 0 || len(corpusWords) == 0 {
		return nil
	}

	searchGrams := gramSet(searchWords, opts.MinGram, opts.MaxGram)
	if len(searchGrams) == 0 {
		return nil
	}

	minWin := int(0.8 * float64(len(searchWords)))
	maxWin := int(1.2*float64(len(searchWords)) + 0.5)
	if minWin < 1 {
		minWin = 1
	}
	if maxWin < minWin {
		maxWin = minWin
	}

	var candidates []Match
	for size := minWin; size <= maxWin; size++ {
		if size > len(corpusWords) {
			break
		}
		for start := 0; start+size <= len(corpusWords); start++ {
			window := corpusWords[start : start+size]
			grams := gramSet(window, opts.MinGram, opts.MaxGram)
			if len(grams) == 0 {
				continue
			}
			score := jaccard(searchGrams, grams)
			if score >= opts.Threshold {
				candidates = append(candidates, Match{
					Text:      strings.Join(window, " "),
					Score:     score,
					StartWord: start,
					EndWord:   start + size,
				})
			}
		}
	}

	return dedupe(candidates)
}

// dedupe keeps the best match per cluster of overlapping word ranges,
// processing candidates in descending score order.
func dedupe(candidates []Match) []Match {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	var kept []Match
	for _, c := range candidates {
		overlaps := false
		for _, k := range kept {
			if c.StartWord < k.EndWord+dedupeWordTolerance &&
				k.StartWord < c.EndWord+dedupeWordTolerance {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, c)
		}
	}
	return kept
}

// normalizeWords lowercases text and splits it on any whitespace.
func normalizeWords(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// gramSet builds the set of contiguous word n-grams of sizes min..max.
// A window with fewer than n words contributes no grams of that size.
func gramSet(words []string, minGram, maxGram int) map[string]struct{} {
	set := make(map[string]struct{})
	for n := minGram; n <= maxGram; n++ {
		if n > len(words) {
			break
		}
		for i := 0; i+n <= len(words); i++ {
			set[strings.Join(words[i:i+n], " ")] = struct{}{}
		}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	inter := 0
	for g := range a {
		if _, ok := b[g]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Package search orchestrates similar-section searches over a paginated
// document: page-windowed fragment extraction, grouping, reference lookup,
// scoring, deduplication, and ranking.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/sectseek/sectseek/internal/fragment"
	"github.com/sectseek/sectseek/internal/geom"
	"github.com/sectseek/sectseek/internal/section"
)

// Defaults for Options fields left at zero.
const (
	DefaultThreshold  = 0.60
	DefaultMaxResults = 20
	DefaultMaxPages   = 50
)

// minSelectionLength is the shortest trimmed selection worth searching for.
const minSelectionLength = 10

// referenceOverlapIoU is the same-page IoU above which a candidate is
// treated as the selection itself rather than a similar match.
const referenceOverlapIoU = 0.3

// maxConcurrentExtract bounds parallel page extraction.
const maxConcurrentExtract = 4

// ProgressFunc receives search progress: pages processed so far, total
// pages in the window, and matches found so far. It is advisory only;
// correctness never depends on it being set or well-behaved.
type ProgressFunc func(current, total, found int)

// Options configure one search call.
type Options struct {
	SelectedText     string
	SelectedPosition geom.NormalizedPosition
	Threshold        float64 // [0,1]; 0 means DefaultThreshold
	MaxResults       int     // 0 means DefaultMaxResults
	MaxPages         int     // 0 means DefaultMaxPages
	GroupOptions     section.GroupOptions
	OnProgress       ProgressFunc
}

// Result is one similar section, ordered by descending score.
type Result struct {
	Text     string                  `json:"text"`
	Score    float64                 `json:"score"`
	Position geom.NormalizedPosition `json:"position"`
}

// Finder runs similar-section searches against one document.
type Finder struct {
	doc   fragment.Document
	log   *slog.Logger
	cache *GroupCache // optional, caller-owned
}

// NewFinder creates a Finder. The cache may be nil.
func NewFinder(doc fragment.Document, log *slog.Logger, cache *GroupCache) *Finder {
	if log == nil {
		log = slog.Default()
	}
	return &Finder{doc: doc, log: log, cache: cache}
}

// FindSimilarSections locates sections similar to the selection. Failure
// paths degrade to an empty result list; only invalid configuration is
// reported as an error.
func (f *Finder) FindSimilarSections(ctx context.Context, opts Options) ([]Result, error) {
	if opts.MaxResults < 0 {
		return nil, errors.New("search: MaxResults must not be negative")
	}
	if opts.MaxPages < 0 {
		return nil, errors.New("search: MaxPages must not be negative")
	}
	if opts.Threshold < 0 || opts.Threshold > 1 {
		return nil, fmt.Errorf("search: threshold %v out of range", opts.Threshold)
	}
	if opts.Threshold == 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.MaxResults == 0 {
		opts.MaxResults = DefaultMaxResults
	}
	if opts.MaxPages == 0 {
		opts.MaxPages = DefaultMaxPages
	}
	if opts.GroupOptions == (section.GroupOptions{}) {
		opts.GroupOptions = section.DefaultGroupOptions()
	}
	progress := opts.OnProgress
	if progress == nil {
		progress = func(int, int, int) {}
	}

	// Too-short selections are rejected before any collaborator call.
	if len(strings.TrimSpace(opts.SelectedText)) < minSelectionLength {
		return nil, nil
	}
	if !opts.SelectedPosition.Valid() {
		return nil, nil
	}

	start, end := pageWindow(opts.SelectedPosition.PageNumber, opts.MaxPages, f.doc.TotalPages())
	if start > end {
		return nil, nil
	}
	total := end - start + 1

	groups := f.extractAndGroup(ctx, start, end, opts.GroupOptions, total, progress)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	refPage := opts.SelectedPosition.PageNumber
	vp, err := f.doc.ViewportFor(refPage)
	if err != nil {
		f.log.Warn("selection page viewport unavailable", "page", refPage, "error", err)
		return nil, nil
	}
	refRect := geom.ToPixels(opts.SelectedPosition.Bounds, vp)
	ref, ok := section.Locate(groups, refPage, refRect)
	if !ok {
		f.log.Info("no reference section for selection", "page", refPage)
		progress(total, total, 0)
		return nil, nil
	}
	progress(total, total, 0)

	var kept []scoredGroup
	for _, g := range groups {
		// Same physical section as the selection, not a similar match.
		if g.PageNumber == refPage && g.Bounds.IoU(ref.Bounds) > referenceOverlapIoU {
			continue
		}
		score := section.Score(ref.Sig, g.Sig, ref.Text, g.Text)
		if score >= opts.Threshold {
			kept = append(kept, scoredGroup{group: g, score: score})
			progress(total, total, len(kept))
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].score > kept[j].score
	})
	if len(kept) > opts.MaxResults {
		kept = kept[:opts.MaxResults]
	}

	results := make([]Result, 0, len(kept))
	for _, sg := range kept {
		pos, err := f.normalizedPosition(sg.group)
		if err != nil {
			f.log.Warn("dropping result without viewport", "page", sg.group.PageNumber, "error", err)
			continue
		}
		results = append(results, Result{
			Text:     sg.group.Text,
			Score:    sg.score,
			Position: pos,
		})
	}

	progress(total, total, len(results))
	return results, nil
}

type scoredGroup struct {
	group section.Group
	score float64
}

// extractAndGroup pulls fragments for every page in [start,end] with bounded
// concurrency and clusters them per page. A page whose extraction fails is
// skipped; it contributes zero groups rather than aborting the search.
func (f *Finder) extractAndGroup(ctx context.Context, start, end int, gopts section.GroupOptions, total int, progress ProgressFunc) []section.Group {
	type pageResult struct {
		page      int
		fragments []fragment.TextFragment
		err       error
	}

	results := make(chan pageResult, total)
	sem := make(chan struct{}, maxConcurrentExtract)

	for page := start; page <= end; page++ {
		sem <- struct{}{}
		go func(page int) {
			defer func() { <-sem }()
			frags, err := f.doc.Fragments(ctx, page)
			results <- pageResult{page: page, fragments: frags, err: err}
		}(page)
	}

	byPage := make(map[int][]fragment.TextFragment, total)
	done := 0
	for range total {
		r := <-results
		done++
		if r.err != nil {
			f.log.Warn("page extraction failed, skipping", "page", r.page, "error", r.err)
		} else {
			byPage[r.page] = r.fragments
		}
		progress(done, total, 0)
	}

	var groups []section.Group
	for page := start; page <= end; page++ {
		frags, ok := byPage[page]
		if !ok || len(frags) == 0 {
			continue
		}
		groups = append(groups, f.groupPage(page, frags, gopts)...)
	}
	return groups
}

func (f *Finder) groupPage(page int, frags []fragment.TextFragment, gopts section.GroupOptions) []section.Group {
	if f.cache == nil {
		return section.GroupFragments(frags, gopts)
	}
	key := Fingerprint(page, frags, gopts)
	if cached, ok := f.cache.Get(key); ok {
		return cached
	}
	groups := section.GroupFragments(frags, gopts)
	f.cache.Put(key, groups)
	return groups
}

// normalizedPosition converts a group's pixel bounds and per-fragment
// rectangles back into the page's normalized coordinate space.
func (f *Finder) normalizedPosition(g section.Group) (geom.NormalizedPosition, error) {
	vp, err := f.doc.ViewportFor(g.PageNumber)
	if err != nil {
		return geom.NormalizedPosition{}, err
	}
	pos := geom.NormalizedPosition{
		PageNumber: g.PageNumber,
		Bounds:     geom.ToNormalized(g.Bounds, vp),
		Rects:      make([]geom.NormalizedRect, 0, len(g.Fragments)),
	}
	for _, fr := range g.Fragments {
		pos.Rects = append(pos.Rects, geom.ToNormalized(fr.Bounds, vp))
	}
	return pos, nil
}

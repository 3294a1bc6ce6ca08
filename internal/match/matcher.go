// Package match locates the best-aligned span of a claimed quote inside a
// document using a coarse token-overlap index followed by precise similarity
// scoring of candidate windows.
package match

import (
	"sort"
	"strings"

	"github.com/openclause/clauseguard/internal/model"
	"github.com/openclause/clauseguard/internal/normalize"
)

const (
	// maxPositionsPerToken caps how many document occurrences of a single
	// claim token seed candidate windows.
	maxPositionsPerToken = 32

	// maxCandidates caps the number of precisely scored windows per claim,
	// keeping per-record work bounded relative to document length.
	maxCandidates = 256
)

// Window width multipliers relative to the claim length, after the sliding
// strategy of the earlier heuristic matcher.
var widthMults = []float64{0.8, 1.0, 1.2, 1.5}

// Index is a reusable matching index over one document. It is immutable after
// construction and safe for concurrent use across records.
type Index struct {
	doc       *model.Document
	norm      *normalize.Normalized
	positions map[string][]int // normalized token -> byte offsets in norm.Text
}

// NewIndex normalizes the document and builds the token-overlap index.
func NewIndex(doc *model.Document) *Index {
	norm := normalize.Normalize(doc.Text())

	positions := make(map[string][]int)
	for _, tok := range tokenize(norm.Text) {
		if len(positions[tok.text]) < maxPositionsPerToken {
			positions[tok.text] = append(positions[tok.text], tok.offset)
		}
	}

	return &Index{
		doc:       doc,
		norm:      norm,
		positions: positions,
	}
}

// Document returns the indexed document.
func (ix *Index) Document() *model.Document { return ix.doc }

// FindBestMatch returns the best-aligned span for the claimed quote, or nil
// for an empty or whitespace-only claim. Absence of any plausible match still
// yields a result with a low similarity ratio. Ties at the maximum similarity
// resolve to the smallest start offset.
func (ix *Index) FindBestMatch(claim string) *model.MatchResult {
	cn := normalize.Normalize(claim)
	if cn.IsEmpty() {
		return nil
	}

	// Fast path: the normalized claim occurs verbatim. strings.Index gives
	// the earliest occurrence, which satisfies the tie-break.
	if idx := strings.Index(ix.norm.Text, cn.Text); idx >= 0 {
		return ix.result(idx, idx+cn.Len(), 1.0)
	}

	if ix.norm.IsEmpty() {
		return &model.MatchResult{Similarity: 0}
	}

	bestStart, bestEnd := 0, 0
	bestRatio := -1.0

	for _, start := range ix.candidateStarts(cn) {
		for _, mult := range widthMults {
			width := int(float64(cn.Len()) * mult)
			if width < 1 {
				width = 1
			}
			end := start + width
			if end > ix.norm.Len() {
				end = ix.norm.Len()
			}
			if start >= end {
				continue
			}
			ratio := Similarity(cn.Text, ix.norm.Text[start:end])
			if ratio > bestRatio {
				bestRatio = ratio
				bestStart, bestEnd = start, end
			}
		}
	}

	if bestRatio < 0 {
		return &model.MatchResult{Similarity: 0}
	}
	return ix.result(bestStart, bestEnd, bestRatio)
}

// candidateStarts proposes normalized start offsets for windows worth precise
// scoring: every document occurrence of a claim token, shifted by the token's
// offset inside the claim. Sorted ascending for deterministic iteration.
func (ix *Index) candidateStarts(cn *normalize.Normalized) []int {
	seen := make(map[int]struct{})
	var starts []int

	add := func(s int) {
		if s < 0 {
			s = 0
		}
		if s >= ix.norm.Len() {
			return
		}
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			starts = append(starts, s)
		}
	}

	for _, tok := range tokenize(cn.Text) {
		for _, pos := range ix.positions[tok.text] {
			add(pos - tok.offset)
		}
	}

	// No shared tokens at all: score a single window at the document start
	// so the caller still receives a (low-ratio) result.
	if len(starts) == 0 {
		add(0)
	}

	sort.Ints(starts)
	if len(starts) > maxCandidates {
		starts = starts[:maxCandidates]
	}
	return starts
}

func (ix *Index) result(normStart, normEnd int, ratio float64) *model.MatchResult {
	start, end := ix.norm.OrigRange(normStart, normEnd)
	return &model.MatchResult{
		Start:      start,
		End:        end,
		Similarity: ratio,
		Matched:    ix.doc.Slice(start, end),
	}
}

// Similarity computes a longest-common-subsequence ratio in [0,1] between two
// normalized strings: 2*LCS / (len(a)+len(b)). Both empty yields 1.
func Similarity(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	// Two-row LCS over bytes; inputs are normalized so byte comparison is
	// sufficient.
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	lcs := prev[len(b)]
	return 2 * float64(lcs) / float64(len(a)+len(b))
}

type token struct {
	text   string
	offset int // byte offset in the normalized text
}

// tokenize splits normalized text on the single spaces normalization
// guarantees, tracking byte offsets.
func tokenize(text string) []token {
	var tokens []token
	start := -1
	for i := 0; i < len(text); i++ {
		if text[i] == ' ' {
			if start >= 0 {
				tokens = append(tokens, token{text: text[start:i], offset: start})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, token{text: text[start:], offset: start})
	}
	return tokens
}

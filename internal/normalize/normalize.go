// Package normalize canonicalizes text for comparison while retaining a map
// from normalized positions back to the original document offsets.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Normalized is the comparison form of a text: lowercased, whitespace runs
// collapsed to single spaces, common punctuation variants folded to canonical
// equivalents. Normalization is total and deterministic; any input, including
// empty, produces a valid result.
type Normalized struct {
	Text string

	// starts[i] / ends[i] give the original byte range of the rune that
	// produced normalized byte i. Collapsed whitespace maps to the first
	// space of the run.
	starts []int
	ends   []int
}

// Quote and dash variants folded to straight equivalents.
var folds = map[rune]rune{
	'‘': '\'', // left single quote
	'’': '\'', // right single quote
	'‚': '\'',
	'`':      '\'',
	'“': '"', // left double quote
	'”': '"', // right double quote
	'„': '"',
	'–': '-', // en dash
	'—': '-', // em dash
	'−': '-', // minus sign
}

// Normalize builds the comparison form of text.
func Normalize(text string) *Normalized {
	var b strings.Builder
	starts := make([]int, 0, len(text))
	ends := make([]int, 0, len(text))

	pendingSpace := false
	spaceStart := 0

	emit := func(r rune, origStart, origEnd int) {
		if pendingSpace && b.Len() > 0 {
			b.WriteByte(' ')
			starts = append(starts, spaceStart)
			ends = append(ends, spaceStart+1)
		}
		pendingSpace = false

		var buf [utf8.UTFMax]byte
		n := utf8.EncodeRune(buf[:], r)
		b.Write(buf[:n])
		for i := 0; i < n; i++ {
			starts = append(starts, origStart)
			ends = append(ends, origEnd)
		}
	}

	for i, r := range text {
		size := utf8.RuneLen(r)
		if size < 0 {
			size = 1
		}
		switch {
		case unicode.IsSpace(r):
			if !pendingSpace {
				pendingSpace = true
				spaceStart = i
			}
		default:
			if folded, ok := folds[r]; ok {
				r = folded
			}
			emit(unicode.ToLower(r), i, i+size)
		}
	}
	// A trailing whitespace run is dropped entirely.

	return &Normalized{
		Text:   b.String(),
		starts: starts,
		ends:   ends,
	}
}

// Len returns the length of the normalized text in bytes.
func (n *Normalized) Len() int { return len(n.Text) }

// IsEmpty reports whether the normalized text is empty, which happens for
// empty or whitespace-only input.
func (n *Normalized) IsEmpty() bool { return len(n.Text) == 0 }

// OrigRange maps a normalized byte range [start, end) back to the byte range
// in the original text. Arguments are clamped to valid bounds.
func (n *Normalized) OrigRange(start, end int) (int, int) {
	if len(n.starts) == 0 {
		return 0, 0
	}
	if start < 0 {
		start = 0
	}
	if end > len(n.ends) {
		end = len(n.ends)
	}
	if start >= end {
		if start >= len(n.starts) {
			start = len(n.starts) - 1
		}
		return n.starts[start], n.starts[start]
	}
	return n.starts[start], n.ends[end-1]
}

package model

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
)

// ErrNilDocument is returned when verification is attempted without a document.
var ErrNilDocument = errors.New("document is nil")

// Document is an immutable contract text plus a derived line-offset index.
// An empty document is valid input; every record then verifies as flagged.
type Document struct {
	text       string
	source     string // file path or URL the text came from
	lineStarts []int  // byte offset of the first character of each line
}

// NewDocument builds a document and its line index from raw text.
func NewDocument(source, text string) *Document {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' && i+1 < len(text) {
			starts = append(starts, i+1)
		}
	}
	return &Document{
		text:       text,
		source:     source,
		lineStarts: starts,
	}
}

// Text returns the full document text.
func (d *Document) Text() string { return d.text }

// Source returns where the document came from.
func (d *Document) Source() string { return d.source }

// Len returns the length of the document text in bytes.
func (d *Document) Len() int { return len(d.text) }

// LineAt maps a byte offset to a 1-based line number.
// Offsets outside the document clamp to the first or last line.
func (d *Document) LineAt(offset int) int {
	if offset < 0 {
		return 1
	}
	// First line start greater than offset; the line containing offset
	// is the one before it.
	idx := sort.SearchInts(d.lineStarts, offset+1)
	return idx
}

// Slice returns the original text between two byte offsets, clamped to bounds.
func (d *Document) Slice(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(d.text) {
		end = len(d.text)
	}
	if start >= end {
		return ""
	}
	return d.text[start:end]
}

// Fingerprint returns a stable identifier for the document content,
// used as a cache and audit-history key.
func (d *Document) Fingerprint() string {
	sum := sha256.Sum256([]byte(d.text))
	return hex.EncodeToString(sum[:])
}

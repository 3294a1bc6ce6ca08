package extract

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// DefaultChunkSize is roughly 1000 tokens for most models.
	DefaultChunkSize = 4000
	// DefaultOverlap carries context across chunk boundaries so clauses
	// are not split mid-sentence.
	DefaultOverlap = 200
)

// Section header patterns common in legal documents.
var sectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(?:ARTICLE|SECTION|PART)\s+[IVXLCDM\d]+[.:]`),
	regexp.MustCompile(`^\d+\.\s+[A-Z][A-Z\s]+$`),
	regexp.MustCompile(`^\d+\.\d+\s+\S`),
	regexp.MustCompile(`^[A-Z][A-Z\s]{2,}$`),
	regexp.MustCompile(`^(?:EXHIBIT|SCHEDULE|APPENDIX)\s+[A-Z\d]+`),
}

var paragraphSplitRe = regexp.MustCompile(`\n\s*\n`)

// Chunk is one window of document text sent to the extraction model.
type Chunk struct {
	Text     string
	Index    int
	Total    int
	Sections []string // section headers seen in this chunk
}

// Location returns a human-readable location label for the chunk,
// used as the claimed-location hint on extracted records.
func (c *Chunk) Location() string {
	if len(c.Sections) > 0 {
		return c.Sections[0]
	}
	return fmt.Sprintf("chunk %d/%d", c.Index+1, c.Total)
}

// Chunker splits documents into overlapping windows at paragraph boundaries.
type Chunker struct {
	chunkSize int
	overlap   int
}

// NewChunker creates a chunker. Non-positive arguments fall back to defaults.
func NewChunker(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap <= 0 {
		overlap = DefaultOverlap
	}
	// Hard paragraph splitting needs the overlap well under the chunk size.
	if overlap*2 >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

// Chunk splits text into overlapping chunks, preferring paragraph breaks.
// Empty or whitespace-only text yields no chunks.
func (ck *Chunker) Chunk(text string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []Chunk
	var current strings.Builder
	var currentSections []string

	flush := func() {
		body := strings.TrimSpace(current.String())
		if body == "" {
			return
		}
		chunks = append(chunks, Chunk{
			Text:     body,
			Index:    len(chunks),
			Sections: currentSections,
		})
	}

	for _, para := range paragraphSplitRe.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		// Oversized paragraphs are split hard at the chunk size, with the
		// overlap folded into the remainder so context carries over.
		for len(para) > ck.chunkSize {
			if current.Len() > 0 {
				flush()
				current.Reset()
				currentSections = nil
			}
			head := para[:ck.chunkSize]
			if cut := strings.LastIndexByte(head, ' '); cut > ck.chunkSize/2 {
				head = para[:cut]
			}
			rest := strings.TrimSpace(para[len(head):])

			current.WriteString(strings.TrimSpace(head))
			flush()
			current.Reset()
			currentSections = nil

			tail := overlapTail(head, ck.overlap)
			if tail != "" && rest != "" {
				para = tail + " " + rest
			} else {
				para = rest
			}
		}
		if para == "" {
			continue
		}

		if current.Len() > 0 && current.Len()+len(para)+2 > ck.chunkSize {
			flush()
			tail := overlapTail(current.String(), ck.overlap)
			current.Reset()
			currentSections = detectSections(para)
			if tail != "" {
				current.WriteString(tail)
				current.WriteString("\n\n")
			}
			current.WriteString(para)
			continue
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
		currentSections = append(currentSections, detectSections(para)...)
	}
	flush()

	for i := range chunks {
		chunks[i].Total = len(chunks)
	}
	return chunks
}

// detectSections matches the leading lines of a paragraph against the
// section header patterns.
func detectSections(para string) []string {
	var sections []string
	for _, line := range strings.Split(para, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, re := range sectionPatterns {
			if re.MatchString(line) {
				sections = append(sections, line)
				break
			}
		}
	}
	return sections
}

// overlapTail returns the trailing overlap of a chunk, preferring to start
// at a sentence boundary.
func overlapTail(text string, overlap int) string {
	if len(text) <= overlap {
		return text
	}
	tail := text[len(text)-overlap:]

	cut := -1
	for _, sep := range []string{". ", ".\n", ".\t"} {
		if i := strings.LastIndex(tail, sep); i > cut {
			cut = i
		}
	}
	if cut > 0 {
		return strings.TrimSpace(tail[cut+2:])
	}
	if i := strings.Index(tail, "\n\n"); i > 0 {
		return strings.TrimSpace(tail[i+2:])
	}
	return tail
}

// Package chunker splits extracted document text into overlapping chunks
// sized for embedding. Boundaries snap to natural breakpoints (paragraph,
// sentence, word) near the target length, falling back to a hard cut.
package chunker

import "strings"

// DocumentChunk is a contiguous slice of one document's extracted text.
// Offsets are rune positions into the original text and are monotonically
// non-decreasing across increasing Index; consecutive chunks overlap by the
// configured overlap size.
type DocumentChunk struct {
	SourcePath  string
	Index       int
	StartOffset int
	EndOffset   int
	Text        string
	Vector      []float32
}

// Defaults for the chunking policy.
const (
	DefaultSize    = 1200
	DefaultOverlap = 200
)

// Split chunks text into windows of roughly size runes overlapping by
// overlap runes. The output is deterministic for a fixed input.
func Split(sourcePath, text string, size, overlap int) []DocumentChunk {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 || overlap >= size/2 {
		overlap = min(DefaultOverlap, size/2-1)
	}

	runes := []rune(text)
	n := len(runes)
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if n <= size {
		return []DocumentChunk{{
			SourcePath: sourcePath,
			Index:      0,
			EndOffset:  n,
			Text:       text,
		}}
	}

	// Breakpoint lookback is a tenth of the target; it must stay small
	// enough that every step still advances past the overlap.
	tolerance := size / 10

	var chunks []DocumentChunk
	start := 0
	for start < n {
		end := start + size
		if end >= n {
			end = n
		} else {
			end = snapBack(runes, start, end, tolerance)
		}
		slice := runes[start:end]
		if strings.TrimSpace(string(slice)) != "" {
			chunks = append(chunks, DocumentChunk{
				SourcePath:  sourcePath,
				Index:       len(chunks),
				StartOffset: start,
				EndOffset:   end,
				Text:        string(slice),
			})
		}
		if end >= n {
			break
		}
		next := end - overlap
		if next <= start {
			next = start + 1 // guarantee forward progress
		}
		start = next
	}
	return chunks
}

// snapBack moves end to the nearest natural breakpoint inside the last
// tolerance runes, preferring paragraph over sentence over word boundaries.
// With no breakpoint in range the hard cut stands.
func snapBack(runes []rune, start, end, tolerance int) int {
	floor := end - tolerance
	if floor <= start {
		floor = start + 1
	}

	// Paragraph boundary: a blank line.
	for i := end - 1; i > floor; i-- {
		if runes[i] == '\n' && runes[i-1] == '\n' {
			return i + 1
		}
	}
	// Sentence end followed by whitespace.
	for i := end - 1; i > floor; i-- {
		if isSpace(runes[i]) && i > start && isSentenceEnd(runes[i-1]) {
			return i
		}
	}
	// Any word boundary.
	for i := end - 1; i > floor; i-- {
		if isSpace(runes[i]) {
			return i + 1
		}
	}
	return end
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t'
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

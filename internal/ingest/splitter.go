package ingest

import "strings"

// defaultSeparators is the boundary priority for splitting: paragraph
// break, line break, sentence end, word boundary, then single characters
// as the unconditional fallback.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter cuts text into chunks of at most chunkSize characters, with
// chunkOverlap trailing characters duplicated into the next chunk. Sizes
// are measured in runes. Splitting is fully deterministic; the only chunks
// that may exceed chunkSize are single indivisible runs that none of the
// separators can break.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   defaultSeparators,
	}
}

// NewSplitterWithSeparators overrides the boundary priority list. Without
// a trailing "" entry there is no character-level fallback, so a run with
// no separator inside comes back as one oversized chunk.
func NewSplitterWithSeparators(chunkSize, chunkOverlap int, separators []string) *Splitter {
	s := NewSplitter(chunkSize, chunkOverlap)
	if len(separators) > 0 {
		s.separators = separators
	}
	return s
}

func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var remaining []string
	for i, candidate := range separators {
		if candidate == "" {
			separator = ""
			remaining = nil
			break
		}
		if strings.Contains(text, candidate) {
			separator = candidate
			remaining = separators[i+1:]
			break
		}
	}

	splits := splitOn(text, separator)
	var final []string
	var good []string
	for _, piece := range splits {
		if runeLen(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.merge(good, separator)...)
			good = nil
		}
		if len(remaining) == 0 {
			// Indivisible run longer than the limit: keep it whole
			// rather than losing content.
			final = append(final, piece)
		} else {
			final = append(final, s.split(piece, remaining)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good, separator)...)
	}
	return final
}

// merge greedily packs pieces into chunks of at most chunkSize, rejoining
// them with the separator they were split on. When a chunk is emitted, the
// tail of the window is retained until it fits under chunkOverlap to give
// the next chunk trailing context.
func (s *Splitter) merge(pieces []string, separator string) []string {
	sepLen := runeLen(separator)
	var chunks []string
	var window []string
	total := 0
	for _, piece := range pieces {
		pieceLen := runeLen(piece)
		joinLen := 0
		if len(window) > 0 {
			joinLen = sepLen
		}
		if total+pieceLen+joinLen > s.chunkSize && len(window) > 0 {
			if chunk := joinPieces(window, separator); chunk != "" {
				chunks = append(chunks, chunk)
			}
			for len(window) > 0 &&
				(total > s.chunkOverlap || total+pieceLen+sepLen > s.chunkSize) {
				total -= runeLen(window[0])
				if len(window) > 1 {
					total -= sepLen
				}
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += pieceLen
		if len(window) > 1 {
			total += sepLen
		}
	}
	if chunk := joinPieces(window, separator); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

func splitOn(text, separator string) []string {
	if separator == "" {
		runes := []rune(text)
		out := make([]string, len(runes))
		for i, r := range runes {
			out[i] = string(r)
		}
		return out
	}
	var out []string
	for _, piece := range strings.Split(text, separator) {
		if piece != "" {
			out = append(out, piece)
		}
	}
	return out
}

func joinPieces(pieces []string, separator string) string {
	return strings.TrimSpace(strings.Join(pieces, separator))
}

func runeLen(s string) int {
	return len([]rune(s))
}

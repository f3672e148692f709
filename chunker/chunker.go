// Package chunker splits long plain text into overlapping word windows for
// embedding.
package chunker

import "strings"

// Spec controls chunk geometry. Size is accounted in characters (word length
// plus one separator per word); Overlap is a word count carried from the end
// of one chunk into the next. The two units differ on purpose: the chunker
// preserves this behaviour exactly and does not validate that Overlap stays
// below Size in words, so callers must configure it sanely.
type Spec struct {
	Size    int
	Overlap int
}

// Chunk windows text into overlapping chunks. Pure function of its inputs:
// empty input yields nil, non-empty input always yields at least one chunk,
// and it never fails.
func Chunk(text string, spec Spec) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	size := 0

	for _, word := range words {
		size += len(word) + 1
		current = append(current, word)

		if size > spec.Size {
			chunks = append(chunks, strings.Join(current, " "))

			overlap := spec.Overlap
			if overlap > len(current) {
				overlap = len(current)
			}
			if overlap > 0 {
				carried := current[len(current)-overlap:]
				current = append([]string(nil), carried...)
			} else {
				current = nil
			}

			size = 0
			for _, w := range current {
				size += len(w) + 1
			}
		}
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

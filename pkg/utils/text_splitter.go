package utils

import "unicode"

// SplitText splits text into chunks of at most chunkSize runes. A chunk ends
// after the last whitespace in its second half when there is one, so words
// are not cut. Each chunk after the first repeats the last overlap runes of
// the previous one; an overlap of chunkSize or more is ignored.
func SplitText(text string, chunkSize int, overlap int) []string {
	runes := []rune(text)
	total := len(runes)
	if chunkSize <= 0 || total <= chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < total {
		end := start + chunkSize
		if end >= total {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		if cut := cutAfterSpace(runes, start+chunkSize/2, end); cut > 0 {
			end = cut
		}
		chunks = append(chunks, string(runes[start:end]))

		next := end - overlap
		if overlap >= chunkSize || next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// cutAfterSpace returns the index just past the last whitespace rune in
// runes[lo:hi], or -1.
func cutAfterSpace(runes []rune, lo, hi int) int {
	for i := hi - 1; i >= lo; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	return -1
}

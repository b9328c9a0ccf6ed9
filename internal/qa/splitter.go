package qa

import "strings"

// Chunking parameters, matched to the retrieval window the answer prompt
// assumes.
const (
	chunkSize    = 1000
	chunkOverlap = 200
)

var chunkSeparators = []string{"\n\n", "\n", " "}

// SplitText splits text into overlapping chunks of at most size runes,
// preferring to break at paragraph, line, then word boundaries.
func SplitText(text string, size, overlap int) []string {
	runes := []rune(text)
	if len(runes) <= size {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = breakpointBefore(runes, start, end)
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end == len(runes) {
			break
		}

		next := end - overlap
		if next <= start {
			// 분리자 없는 긴 토막에서 무한 루프 방지
			next = start + size - overlap
			if next <= start {
				next = end
			}
		}
		start = next
	}

	return chunks
}

// breakpointBefore finds the best boundary at or before limit
func breakpointBefore(runes []rune, start, limit int) int {
	window := string(runes[start:limit])
	for _, sep := range chunkSeparators {
		if idx := strings.LastIndex(window, sep); idx > 0 {
			return start + len([]rune(window[:idx+len(sep)]))
		}
	}
	return limit
}

package audio

import "strings"

// sentenceEnders are tried in order when a paragraph must be cut; the search
// looks for the last occurrence of each within the window before falling back
// to the last space, then a hard cut.
var sentenceEnders = []rune{'\n', '?', '!', '.'}

// SplitScript splits a narration script into chunks of at most limit
// characters. Paragraph boundaries are respected first; an oversized
// paragraph is cut at the last sentence-ending punctuation inside the window,
// failing that at the last space, and only then hard-cut. Counts are in runes
// so multi-byte text never splits mid-character.
func SplitScript(script string, limit int) []string {
	var chunks []string
	for _, paragraph := range strings.Split(script, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		runes := []rune(paragraph)
		if len(runes) <= limit {
			chunks = append(chunks, paragraph)
			continue
		}

		pos := 0
		for pos < len(runes) {
			end := pos + limit
			if end >= len(runes) {
				if chunk := strings.TrimSpace(string(runes[pos:])); chunk != "" {
					chunks = append(chunks, chunk)
				}
				break
			}

			splitPoint := -1
			for _, ender := range sentenceEnders {
				if found := lastIndexRune(runes, ender, pos, end); found != -1 {
					splitPoint = found + 1
					break
				}
			}
			if splitPoint == -1 {
				if found := lastIndexRune(runes, ' ', pos, end); found != -1 {
					splitPoint = found + 1
				} else {
					splitPoint = end
				}
			}

			if chunk := strings.TrimSpace(string(runes[pos:splitPoint])); chunk != "" {
				chunks = append(chunks, chunk)
			}
			pos = splitPoint
			for pos < len(runes) && isSpace(runes[pos]) {
				pos++
			}
		}
	}
	return chunks
}

// lastIndexRune finds the last occurrence of r in runes[start:end), returning
// its absolute index or -1.
func lastIndexRune(runes []rune, r rune, start, end int) int {
	for i := end - 1; i >= start; i-- {
		if runes[i] == r {
			return i
		}
	}
	return -1
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

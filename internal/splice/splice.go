// Package splice owns line-indexed text splicing.
//
// Ownership boundary:
// - locating the n-th line of a text by terminator count
// - rewriting one line without disturbing surrounding text
//
// Line boundaries are the single characters '\r' and '\n', scanned left
// to right; each occurrence is one terminator. A line's content never
// includes its terminator.
package splice

// Line is the decomposition of a text around one line:
// Prefix + Content + Suffix reassembles the original text exactly.
type Line struct {
	Prefix  string
	Content string
	Suffix  string
}

func isTerminator(b byte) bool {
	return b == '\r' || b == '\n'
}

// SplitNth locates line n (0-indexed) of text by skipping n terminator
// occurrences from the start. It reports false when the start offset of
// line n reaches the end of the text, meaning there is no such line.
func SplitNth(text string, n int) (Line, bool) {
	if n < 0 {
		return Line{}, false
	}
	start := 0
	for skipped := 0; skipped < n; skipped++ {
		for start < len(text) && !isTerminator(text[start]) {
			start++
		}
		if start >= len(text) {
			return Line{}, false
		}
		start++
	}
	if start >= len(text) {
		return Line{}, false
	}
	end := start
	for end < len(text) && !isTerminator(text[end]) {
		end++
	}
	return Line{
		Prefix:  text[:start],
		Content: text[start:end],
		Suffix:  text[end:],
	}, true
}

// TransformNth applies f to the content of line n and reassembles the
// text. When line n does not exist the text is returned unchanged.
func TransformNth(text string, n int, f func(string) string) string {
	line, ok := SplitNth(text, n)
	if !ok {
		return text
	}
	return line.Prefix + f(line.Content) + line.Suffix
}

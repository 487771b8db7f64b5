package scale

import (
	"strconv"
	"strings"
)

// ParseSample extracts a weight from a raw indicator frame. Every character other
// than digits and '.' is dropped and the longest valid decimal prefix is parsed,
// so "12ab.5kg\n" reads as 12.5. Frames without digits yield ok=false.
func ParseSample(raw string) (weight float64, ok bool) {
	var b strings.Builder
	b.Grow(len(raw))
	seenDot := false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.':
			if seenDot {
				// a second separator ends the number
				return parseClean(b.String())
			}
			seenDot = true
			b.WriteRune(r)
		}
	}
	return parseClean(b.String())
}

func parseClean(clean string) (float64, bool) {
	if strings.Trim(clean, ".") == "" {
		return 0, false
	}
	w, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false
	}
	return w, true
}

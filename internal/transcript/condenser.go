package transcript

import "unicode/utf8"

// MaxSpeechChars is the longest plain-text speech the voice platform accepts.
const MaxSpeechChars = 8000

// Fit keeps whole lines, in order, while the joined result (with sep between
// lines) stays within budget characters. The first line is always kept, cut
// with "..." if it alone is too long, so a read-back never comes out empty.
func Fit(lines []string, sep string, budget int) []string {
	if len(lines) == 0 || budget <= 0 {
		return lines
	}

	var kept []string
	used := 0
	sepLen := utf8.RuneCountInString(sep)
	for i, l := range lines {
		n := utf8.RuneCountInString(l)
		if i > 0 {
			n += sepLen
		}
		if used+n > budget {
			if i == 0 {
				kept = append(kept, truncate(l, budget))
			}
			break
		}
		kept = append(kept, l)
		used += n
	}
	return kept
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

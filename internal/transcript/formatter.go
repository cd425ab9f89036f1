// Package transcript renders stored notes as numbered, dated lines for
// read-back and email.
package transcript

import (
	"strconv"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/lazypower/dettato/internal/responses"
	"github.com/lazypower/dettato/internal/store"
)

// DefaultDatePattern is the strftime pattern used when none is configured.
const DefaultDatePattern = "%d/%m/%Y %H:%M"

// Format renders one line per note, in the order given. line is a template
// with {num} (1-based), {date} and {content} placeholders; datePattern is a
// strftime pattern. A timestamp that does not parse as the storage layout is
// shown exactly as stored.
func Format(notes []store.Note, datePattern, line string) []string {
	if datePattern == "" {
		datePattern = DefaultDatePattern
	}
	out := make([]string, 0, len(notes))
	for i, n := range notes {
		out = append(out, responses.ExpandTemplate(line, map[string]string{
			"num":     strconv.Itoa(i + 1),
			"date":    formatDate(n.CreatedAt, datePattern),
			"content": n.Content,
		}))
	}
	return out
}

func formatDate(stored, pattern string) string {
	t, err := time.ParseInLocation(store.TimestampLayout, stored, time.UTC)
	if err != nil {
		return stored
	}
	return strftime.Format(pattern, t)
}

// Join concatenates rendered lines with sep.
func Join(lines []string, sep string) string {
	return strings.Join(lines, sep)
}

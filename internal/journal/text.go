package journal

import (
	"regexp"
	"strings"
	"time"
)

var (
	camelBoundary1 = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	camelBoundary2 = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	separatorRun   = regexp.MustCompile(`[\s_]+`)
)

// Snakecase converts a camelCase or space-separated key to snake_case.
// Import sources name their columns inconsistently ("creationDate",
// "Weather Summary"); metadata keys are stored in one uniform style.
func Snakecase(s string) string {
	s = camelBoundary1.ReplaceAllString(strings.TrimSpace(s), "${1}_${2}")
	s = camelBoundary2.ReplaceAllString(s, "${1}_${2}")
	s = separatorRun.ReplaceAllString(s, "_")
	return strings.ToLower(s)
}

// SanitizeText strips the backslash escaping that survives JSON-encoded
// export sources.
func SanitizeText(text string) string {
	return strings.ReplaceAll(text, `\`, "")
}

// DateString renders a timestamp as a default entry title, e.g.
// "Sat, Jul 02, 2022 12:49 PM".
func DateString(t time.Time) string {
	return t.Format("Mon, Jan 02, 2006 03:04 PM")
}

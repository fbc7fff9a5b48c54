package workflow

import (
	"regexp"
	"strings"
)

var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a display name into a step id: lower-cased, every run of
// characters outside [a-z0-9] collapsed to one underscore, and leading or
// trailing underscores trimmed. "Field Inspection" becomes "field_inspection".
func Slugify(name string) string {
	slug := nonSlugRun.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(slug, "_")
}

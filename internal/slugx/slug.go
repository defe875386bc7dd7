// Package slugx builds and parses the "<id>-<title>" slugs used to address
// testimony detail pages.
package slugx

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugIDPattern = regexp.MustCompile(`^(\d+)(?:-.*)?$`)
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify lowercases s, folds diacritics ("é" -> "e") and collapses every run
// of other characters into a single hyphen.
func Slugify(s string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		s,
	)
	if err != nil {
		folded = s
	}
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(slug, "-")
}

// GenerateTestimonySlug returns "<id>-<slugified title>", or just "<id>" when
// the title has no sluggable characters.
func GenerateTestimonySlug(id int, title string) string {
	s := Slugify(title)
	if s == "" {
		return strconv.Itoa(id)
	}
	return strconv.Itoa(id) + "-" + s
}

// ParseTestimonySlug extracts the numeric id prefix. Only the prefix is
// significant; the title part is ignored.
func ParseTestimonySlug(slug string) (int, bool) {
	m := slugIDPattern.FindStringSubmatch(slug)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

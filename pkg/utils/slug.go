package utils

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugDisallowed = regexp.MustCompile(`[^a-z0-9\s_-]`)
	slugSeparators = regexp.MustCompile(`[-\s]+`)
)

// Slugify folds text to lowercase ASCII words joined by hyphens.
// Diacritics are stripped ("Café" -> "cafe"), other non-ASCII runes are dropped.
func Slugify(text string) string {
	folder := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, text)
	if err != nil {
		folded = text
	}

	ascii := make([]rune, 0, len(folded))
	for _, r := range folded {
		if r < unicode.MaxASCII {
			ascii = append(ascii, r)
		}
	}

	slug := strings.ToLower(string(ascii))
	slug = slugDisallowed.ReplaceAllString(slug, "")
	slug = strings.TrimSpace(slug)
	slug = slugSeparators.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-_")
}

// BaseSlug is the slug a new record tries first: at most maxLen bytes,
// falling back to fallback when the text has no sluggable characters.
func BaseSlug(text string, maxLen int, fallback string) string {
	slug := Slugify(text)
	if len(slug) > maxLen {
		slug = strings.TrimRight(slug[:maxLen], "-")
	}
	if slug == "" {
		return fallback
	}
	return slug
}

// CollisionSlug appends a short random suffix to a taken slug.
func CollisionSlug(base string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return base + "-" + suffix
}

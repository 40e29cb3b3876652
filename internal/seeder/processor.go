package seeder

import (
	"regexp"
	"strings"
	"unicode"
)

const maxTitleRunes = 300

// ContentProcessor handles text processing and cleanup for seed content
type ContentProcessor struct {
	horizontalSpace *regexp.Regexp
	htmlTags        *regexp.Regexp
	markdownLinks   *regexp.Regexp
}

func NewContentProcessor() *ContentProcessor {
	return &ContentProcessor{
		horizontalSpace: regexp.MustCompile(`[ \t\f\v\r]+`),
		htmlTags:        regexp.MustCompile(`<[^>]*>`),
		markdownLinks:   regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`),
	}
}

// CleanContent strips markup and normalizes whitespace while keeping
// paragraph breaks. At most one blank line survives between paragraphs.
func (cp *ContentProcessor) CleanContent(content string) string {
	content = cp.htmlTags.ReplaceAllString(content, "")
	// [text](url) keeps the text
	content = cp.markdownLinks.ReplaceAllString(content, "$1")

	lines := strings.Split(content, "\n")
	var cleaned []string
	emptyLines := 0

	for _, line := range lines {
		line = strings.TrimSpace(cp.horizontalSpace.ReplaceAllString(line, " "))
		if line == "" {
			emptyLines++
			if emptyLines == 1 && len(cleaned) > 0 {
				cleaned = append(cleaned, "")
			}
			continue
		}
		emptyLines = 0
		cleaned = append(cleaned, line)
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

// CleanTitle flattens a title onto one line and caps its length.
func (cp *ContentProcessor) CleanTitle(title string) string {
	title = cp.htmlTags.ReplaceAllString(title, "")
	title = strings.Join(strings.Fields(title), " ")
	if runes := []rune(title); len(runes) > maxTitleRunes {
		title = strings.TrimSpace(string(runes[:maxTitleRunes]))
	}
	return title
}

// CountWords estimates word count in text
func (cp *ContentProcessor) CountWords(text string) int {
	if text == "" {
		return 0
	}

	words := strings.FieldsFunc(text, func(c rune) bool {
		return unicode.IsSpace(c) || unicode.IsPunct(c)
	})

	// one-letter fragments like the "s" in "how's" are not words
	count := 0
	for _, word := range words {
		if len([]rune(word)) > 1 {
			count++
		}
	}

	return count
}

package editor

import "strings"

// wordsPerMinute is the average reading speed used for read-time
// estimation.
const wordsPerMinute = 200

// Slugify derives a URL-safe slug candidate from a post title: lowercase,
// strip everything outside [a-z0-9 -], collapse whitespace and hyphen runs
// into single hyphens, and trim hyphens from both ends. The function is
// idempotent. Uniqueness of the result is the storage layer's concern.
func Slugify(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ', r == '-':
			b.WriteRune(r)
		}
	}

	slug := strings.Join(strings.Fields(b.String()), "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}

	return strings.Trim(slug, "-")
}

// EstimateReadTime estimates how many minutes a document takes to read.
// Header and paragraph text and resolved list items contribute words;
// every other block kind contributes nothing. The result is the word
// count divided by the average reading speed, rounded up, never below
// one minute.
func EstimateReadTime(doc Document) int {
	words := 0
	for _, block := range doc.Blocks {
		data := block.payload()
		switch KindOf(block.Type) {
		case KindHeader, KindParagraph:
			words += len(strings.Fields(stringField(data, "text")))
		case KindList:
			items, _ := data["items"].([]any)
			for _, item := range items {
				words += len(strings.Fields(itemText(item)))
			}
		}
	}

	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}

	return minutes
}

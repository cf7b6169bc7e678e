package services

import (
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
)

// TitleBudget is the character budget for titles derived from the query.
const TitleBudget = 50

// DefaultTitlePrefix starts the date-stamped fallback title.
const DefaultTitlePrefix = "Generated Note "

var (
	// markdownFence matches a fence opener tagged with the markup dialect.
	markdownFence = regexp.MustCompile("(?i)```[ \t]*(?:markdown|md)[ \t]*\r?\n")

	// closingFence matches a fence closer at the very end of the text.
	closingFence = regexp.MustCompile("\r?\n?```[ \t]*\\s*$")

	// illegalFilenameChars are stripped from note titles.
	illegalFilenameChars = regexp.MustCompile(`[\\/:*?"<>|]`)

	titleQuotes = "\"'`“”‘’«»"
	titlePunct  = ".,;:!?"
)

// CleanResponse applies mode-dependent cleanup. Query mode passes text
// through. Create mode strips a Markdown fence wrapper, discarding any prose
// a backend put before the opener. Text without a dialect-tagged opener is
// returned unchanged.
func CleanResponse(mode domain.Mode, text string) string {
	if mode != domain.ModeCreate {
		return text
	}

	loc := markdownFence.FindStringIndex(text)
	if loc == nil {
		return text
	}
	body := text[loc[1]:]

	if m := closingFence.FindStringIndex(body); m != nil {
		body = body[:m[0]]
	}
	return body
}

// CleanTitle normalises a generated title: first line only, surrounding
// quotes and trailing punctuation removed.
func CleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	if i := strings.IndexAny(title, "\r\n"); i >= 0 {
		title = strings.TrimSpace(title[:i])
	}
	title = strings.TrimPrefix(title, "Title:")
	title = strings.TrimSpace(title)
	for {
		trimmed := strings.Trim(title, titleQuotes)
		trimmed = strings.TrimRight(trimmed, titlePunct)
		trimmed = strings.TrimSpace(trimmed)
		if trimmed == title {
			return title
		}
		title = trimmed
	}
}

// TruncateTitle shortens a query to budget characters, marking the cut
// with "...".
func TruncateTitle(query string, budget int) string {
	q := strings.Join(strings.Fields(query), " ")
	r := []rune(q)
	if len(r) <= budget {
		return q
	}
	return strings.TrimSpace(string(r[:budget])) + "..."
}

// DefaultTitle returns the date-stamped fallback title.
func DefaultTitle(now time.Time) string {
	return DefaultTitlePrefix + now.Format("2006-01-02")
}

// SanitizeFilename strips characters that are illegal in file names and
// trims surrounding whitespace.
func SanitizeFilename(title string) string {
	return strings.TrimSpace(illegalFilenameChars.ReplaceAllString(title, ""))
}

// NoteFileName returns the sanitized file name for a title, falling back to
// the date-stamped default when nothing usable remains.
func NoteFileName(title string, now time.Time) string {
	name := SanitizeFilename(title)
	if name == "" {
		name = DefaultTitle(now)
	}
	return name
}

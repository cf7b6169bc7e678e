package services

import (
	"strings"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
	"github.com/custodia-labs/vaultqa/internal/core/ports/driven"
)

// DefaultSystemPrompt is the system instruction sent with every request.
const DefaultSystemPrompt = "You are a helpful assistant that works with the user's Markdown notes. " +
	"Follow the formatting and citation instructions in the user's message exactly."

// DefaultPrompts returns the built-in text of every customisable prompt.
func DefaultPrompts() map[string]string {
	return map[string]string{
		driven.PromptSystem: DefaultSystemPrompt,
	}
}

// TitleExcerptLength is how much of a response the title prompt embeds.
const TitleExcerptLength = 500

//nolint:lll // Prompt content is intentionally long and should not be wrapped.
const (
	queryWithContextPrompt = `Answer the question below using ONLY the notes provided. If the notes do not contain the answer, say so plainly instead of guessing.

Cite every note you rely on as [[path]], using the exact path shown after "FILE:" for that note.
To point at a specific section, write [[path#Section Heading]] and copy the heading's capitalization exactly as it appears in the note.
Format your answer in Markdown.

Notes:
`

	queryWithoutContextPrompt = `Answer the following question concisely and accurately. Format your answer in Markdown.

`

	createWithContextPrompt = `Write a complete new Markdown note about the topic below. You may draw on the user's notes provided; when you do, cite them as [[path]] or [[path#Section Heading]], using the exact path shown after "FILE:" and the heading's exact capitalization.

Output ONLY the body of the note. Do not add any introduction or closing commentary, and do not wrap the note in code fences.

Notes:
`

	createWithoutContextPrompt = `Write a complete new Markdown note about the topic below.

Output ONLY the body of the note. Do not add any introduction or closing commentary, and do not wrap the note in code fences.

`

	titlePrompt = `Suggest a short, descriptive title (at most eight words) for a note created from the request and content below. Reply with the title only: no quotes, no trailing punctuation.

Request: `
)

// PromptInput holds everything the prompt builder needs.
type PromptInput struct {
	Mode        domain.Mode
	UseContext  bool
	Query       string
	Context     string
	CurrentPath string
}

// BuildPrompt returns the instruction text for one of four fixed templates
// selected by mode and whether context is used.
func BuildPrompt(in PromptInput) string {
	var b strings.Builder

	switch {
	case in.Mode == domain.ModeCreate && in.UseContext:
		b.WriteString(createWithContextPrompt)
		b.WriteString(in.Context)
		b.WriteString("\n")
		writeCurrentPath(&b, in.CurrentPath)
		b.WriteString("Topic: ")
	case in.Mode == domain.ModeCreate:
		b.WriteString(createWithoutContextPrompt)
		b.WriteString("Topic: ")
	case in.UseContext:
		b.WriteString(queryWithContextPrompt)
		b.WriteString(in.Context)
		b.WriteString("\n")
		writeCurrentPath(&b, in.CurrentPath)
		b.WriteString("Question: ")
	default:
		b.WriteString(queryWithoutContextPrompt)
		b.WriteString("Question: ")
	}

	b.WriteString(in.Query)
	return b.String()
}

func writeCurrentPath(b *strings.Builder, path string) {
	if path == "" {
		return
	}
	b.WriteString("The user is currently viewing: ")
	b.WriteString(path)
	b.WriteString("\n\n")
}

// BuildTitlePrompt asks for a short title given the request and an excerpt
// of the generated response.
func BuildTitlePrompt(query, response string) string {
	var b strings.Builder
	b.WriteString(titlePrompt)
	b.WriteString(query)
	b.WriteString("\n\nContent:\n")
	b.WriteString(truncateRunes(response, TitleExcerptLength))
	b.WriteString("\n\nTitle:")
	return b.String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

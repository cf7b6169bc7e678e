package services

import (
	"bufio"
	"strings"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
)

// FileMarker starts every document block in an assembled context.
// Source extraction re-parses it, so the format must not change.
const FileMarker = "FILE: "

// AssembleContext concatenates documents as "FILE: <path>\n\n<content>\n\n"
// blocks. A non-empty extra is prepended, separated by a blank line.
func AssembleContext(docs []domain.Document, extra string) string {
	if len(docs) == 0 {
		return extra
	}

	var b strings.Builder
	if extra != "" {
		b.WriteString(extra)
		b.WriteString("\n\n")
	}
	for _, doc := range docs {
		b.WriteString(FileMarker)
		b.WriteString(doc.Path)
		b.WriteString("\n\n")
		b.WriteString(doc.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}

// ExtractSources returns the path of every FILE marker line in an assembled
// context, in order. Duplicates are kept.
func ExtractSources(blob string) []string {
	var sources []string
	scanner := bufio.NewScanner(strings.NewReader(blob))
	scanner.Buffer(make([]byte, 0, 64*1024), len(blob)+1)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, FileMarker) {
			sources = append(sources, strings.TrimPrefix(line, FileMarker))
		}
	}
	return sources
}

package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
)

// Palette.
var (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorSecondary = lipgloss.Color("#06B6D4")
	colorMuted     = lipgloss.Color("#6C7086")
	colorSuccess   = lipgloss.Color("#A6E3A1")
	colorWarning   = lipgloss.Color("#F9E2AF")
	colorError     = lipgloss.Color("#F38BA8")
	colorBorder    = lipgloss.Color("#45475A")
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	subtitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorSecondary)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	successStyle  = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle  = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	errorPanelStyle = panelStyle.BorderForeground(colorError)
)

// renderResult renders a successful result: the text panel, then sources
// and references.
func renderResult(result *domain.QueryResult) string {
	var header string
	if result.Mode == domain.ModeCreate && result.Title != "" {
		header = titleStyle.Render(result.Title)
	} else {
		header = titleStyle.Render("Answer")
	}
	header += " " + mutedStyle.Render(fmt.Sprintf("(%s / %s)", result.Provider, result.Model))

	blocks := []string{header, panelStyle.Render(strings.TrimRight(result.Text, "\n"))}
	if s := renderSources(result.Sources); s != "" {
		blocks = append(blocks, s)
	}
	if s := renderReferences(result.References); s != "" {
		blocks = append(blocks, s)
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

// renderSources lists the documents used as context.
func renderSources(sources []string) string {
	if len(sources) == 0 {
		return ""
	}
	lines := []string{subtitleStyle.Render("Sources")}
	for i, src := range sources {
		lines = append(lines, fmt.Sprintf("  %s %s", mutedStyle.Render(fmt.Sprintf("[%d]", i+1)), src))
	}
	return strings.Join(lines, "\n")
}

// renderReferences lists citations, flagging those the vault cannot resolve.
func renderReferences(refs []domain.Reference) string {
	if len(refs) == 0 {
		return ""
	}
	lines := []string{subtitleStyle.Render("References")}
	for _, ref := range refs {
		line := "  " + ref.Target()
		if ref.Broken {
			line += " " + warningStyle.Render("(file not found)")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// renderGenerationError renders a classified provider failure.
func renderGenerationError(e *domain.GenerationError) string {
	body := e.Error()
	detail := string(e.Kind)
	if !e.IsTransport() {
		detail = fmt.Sprintf("%s, status %d", e.Kind, e.Status)
	}
	body += "\n" + mutedStyle.Render(detail)
	if e.ServerMessage != "" && e.ServerMessage != e.Message {
		body += "\n" + mutedStyle.Render(e.ServerMessage)
	}
	return errorPanelStyle.Render(body)
}

// renderFailure renders any other error.
func renderFailure(err error) string {
	var genErr *domain.GenerationError
	if errors.As(err, &genErr) {
		return renderGenerationError(genErr)
	}
	return errorStyle.Render("Error: ") + err.Error()
}

// renderCheck renders one model validation line.
func renderCheck(check domain.ModelCheck) string {
	latency := mutedStyle.Render(fmt.Sprintf("(%s)", check.Latency.Round(time.Millisecond)))
	if check.Passed {
		return fmt.Sprintf("%s %-24s %s", successStyle.Render("PASS"), check.Model.ID, latency)
	}
	return fmt.Sprintf("%s %-24s %s",
		errorStyle.Render("FAIL "+string(check.Kind)), check.Model.ID, mutedStyle.Render(check.Message))
}

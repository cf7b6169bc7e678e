package services

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
	"github.com/custodia-labs/vaultqa/internal/core/ports/driven"
)

// BrokenLinkNote is appended to references that do not resolve.
const BrokenLinkNote = " (file not found)"

// maxPathWords bounds how many space-separated words an arrow path may span.
const maxPathWords = 8

// sectionTrim is stripped from the end of an arrow section name.
const sectionTrim = " \t\r.:!?"

// wordBoundary ends a path word besides whitespace.
const wordBoundary = "[]()<>\"'`*"

var (
	// wikiLink matches [[path]], [[path#Section]] and [[path#Section|label]].
	wikiLink = regexp.MustCompile(`\[\[([^\[\]|#]+)(?:#([^\[\]|]*))?(?:\|([^\[\]]*))?\]\]`)

	// arrowLink matches "path.md > Section Name". Only the whitespace-free
	// tail of the path is matched; arrowReadings widens it over preceding
	// words. The section runs to the end of the line or a delimiter.
	arrowLink = regexp.MustCompile(`([^\s\[\]()<>"'*` + "`" + `]+\.(?:md|markdown|txt))[ \t]+>[ \t]+([^\n\[\]()<>,;"*` + "`" + `]+)`)

	whitespaceRun = regexp.MustCompile(`\s+`)
)

// NormalizeFragment lower-cases a section name and collapses whitespace runs
// into single dashes.
func NormalizeFragment(section string) string {
	s := strings.ToLower(strings.TrimSpace(section))
	return whitespaceRun.ReplaceAllString(s, "-")
}

// ParseReferences finds every citation in text, in order of appearance.
func ParseReferences(text string) []domain.Reference {
	var refs []domain.Reference

	for _, m := range wikiLink.FindAllStringSubmatchIndex(text, -1) {
		ref := domain.Reference{
			Raw:      text[m[0]:m[1]],
			Path:     strings.TrimSpace(text[m[2]:m[3]]),
			Notation: domain.NotationWiki,
			Start:    m[0],
			End:      m[1],
		}
		if m[4] >= 0 {
			ref.Fragment = NormalizeFragment(text[m[4]:m[5]])
		}
		if m[6] >= 0 {
			ref.Label = strings.TrimSpace(text[m[6]:m[7]])
		}
		refs = append(refs, ref)
	}

	for _, m := range arrowLink.FindAllStringSubmatchIndex(text, -1) {
		ref, ok := parseArrow(text, m, floorBefore(refs, m[2]))
		if !ok || overlaps(refs, ref.Start, ref.End) {
			continue
		}
		refs = append(refs, ref)
	}

	sort.SliceStable(refs, func(i, j int) bool { return refs[i].Start < refs[j].Start })
	return refs
}

// parseArrow builds an arrow reference from a match. Readings of the path
// never start before floor.
func parseArrow(text string, m []int, floor int) (domain.Reference, bool) {
	section := strings.TrimRight(text[m[4]:m[5]], sectionTrim)
	end := m[4] + len(section)
	section = strings.TrimSpace(section)
	if section == "" {
		return domain.Reference{}, false
	}

	readings := arrowReadings(text, m[2], m[3], end, floor)
	chosen := defaultReading(readings)
	return domain.Reference{
		Raw:        chosen.Raw,
		Path:       chosen.Path,
		Fragment:   NormalizeFragment(section),
		Label:      section,
		Notation:   domain.NotationArrow,
		Start:      chosen.Start,
		End:        end,
		Candidates: readings,
	}, true
}

// arrowReadings lists the paths ending at pathEnd that start at tailStart
// or take in up to maxPathWords-1 preceding words on the same line,
// longest first.
func arrowReadings(text string, tailStart, pathEnd, end, floor int) []domain.PathCandidate {
	starts := []int{tailStart}
	p := tailStart
	for len(starts) < maxPathWords {
		q := p
		for q > floor && (text[q-1] == ' ' || text[q-1] == '\t') {
			q--
		}
		if q == p || q <= floor {
			break
		}
		ws := q
		for ws > floor && !isBoundary(text[ws-1]) {
			ws--
		}
		if !isPathWord(text[ws:q]) {
			break
		}
		starts = append(starts, ws)
		p = ws
	}

	readings := make([]domain.PathCandidate, 0, len(starts))
	for i := len(starts) - 1; i >= 0; i-- {
		st := starts[i]
		readings = append(readings, domain.PathCandidate{
			Path:  text[st:pathEnd],
			Raw:   text[st:end],
			Start: st,
		})
	}
	return readings
}

// defaultReading picks the longest reading whose first word names a folder,
// or the bare tail when none does. It is used until the vault says otherwise.
func defaultReading(readings []domain.PathCandidate) domain.PathCandidate {
	for _, r := range readings {
		first, _, _ := strings.Cut(r.Path, " ")
		if strings.Contains(first, "/") {
			return r
		}
	}
	return readings[len(readings)-1]
}

func isBoundary(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || strings.IndexByte(wordBoundary, c) >= 0
}

// isPathWord rejects words that cannot belong to a file path: those ending a
// sentence or clause, and list markers.
func isPathWord(w string) bool {
	if w == "" || w == "-" || w == "+" {
		return false
	}
	if strings.ContainsAny(w, ":,;|?") {
		return false
	}
	return !strings.HasSuffix(w, ".") && !strings.HasSuffix(w, "!")
}

// floorBefore returns the end of the last reference finishing at or before pos.
func floorBefore(refs []domain.Reference, pos int) int {
	floor := 0
	for _, r := range refs {
		if r.End <= pos && r.End > floor {
			floor = r.End
		}
	}
	return floor
}

func overlaps(refs []domain.Reference, start, end int) bool {
	for _, r := range refs {
		if start < r.End && r.Start < end {
			return true
		}
	}
	return false
}

// ResolveReferences checks each reference against the vault. Arrow
// references take the longest reading of their path that exists. A wiki
// path that does not exist is retried with a ".md" suffix, and the resolved
// path is kept; anything still missing is flagged Broken.
func ResolveReferences(ctx context.Context, refs []domain.Reference, store driven.VaultStore) []domain.Reference {
	out := make([]domain.Reference, len(refs))
	for i, ref := range refs {
		switch {
		case len(ref.Candidates) > 0:
			ref = resolveArrow(ctx, ref, store)
		case store.Exists(ctx, ref.Path):
		case !strings.HasSuffix(ref.Path, ".md") && store.Exists(ctx, ref.Path+".md"):
			ref.Path += ".md"
		default:
			ref.Broken = true
		}
		out[i] = ref
	}
	return out
}

func resolveArrow(ctx context.Context, ref domain.Reference, store driven.VaultStore) domain.Reference {
	for _, c := range ref.Candidates {
		if store.Exists(ctx, c.Path) {
			ref.Path, ref.Raw, ref.Start = c.Path, c.Raw, c.Start
			return ref
		}
	}
	ref.Broken = true
	return ref
}

// RewriteLinks replaces each reference in text with its canonical wiki form
// and annotates broken ones. refs must come from ParseReferences(text),
// optionally resolved. Text without references is returned unchanged.
func RewriteLinks(text string, refs []domain.Reference) string {
	if len(refs) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, ref := range refs {
		if ref.Start < last || ref.End > len(text) {
			continue
		}
		b.WriteString(text[last:ref.Start])
		b.WriteString("[[")
		b.WriteString(ref.Target())
		if ref.Label != "" {
			b.WriteString("|")
			b.WriteString(ref.Label)
		}
		b.WriteString("]]")
		if ref.Broken {
			b.WriteString(BrokenLinkNote)
		}
		last = ref.End
	}
	b.WriteString(text[last:])
	return b.String()
}

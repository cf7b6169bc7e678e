package domain

// Document is a readable text file in the vault.
// Path is the forward-slash path relative to the vault root and is unique.
type Document struct {
	// Path identifies the document within the store.
	Path string

	// Content is the raw text. Empty until read.
	Content string
}

// ReferenceNotation identifies how a citation was written.
type ReferenceNotation string

// Recognised citation notations.
const (
	// NotationWiki is [[path]] or [[path#Section]].
	NotationWiki ReferenceNotation = "wiki"

	// NotationArrow is "path > Section Name".
	NotationArrow ReferenceNotation = "arrow"
)

// Reference is a citation found in generated text, normalised to a target
// path and an optional fragment.
type Reference struct {
	// Raw is the matched text.
	Raw string

	// Path is the referenced document path.
	Path string

	// Fragment is the lower-cased, dash-separated section anchor, if any.
	Fragment string

	// Label is the display text, when the notation carried one.
	Label string

	// Notation records the source syntax.
	Notation ReferenceNotation

	// Broken is set when the path could not be resolved in the vault.
	Broken bool

	// Candidates are the possible readings of an arrow path, longest first.
	// Vault paths may contain spaces, so words before the path can belong
	// to it. Empty for wiki references.
	Candidates []PathCandidate

	// Start and End are byte offsets of Raw within the text.
	Start int
	End   int
}

// Target returns the canonical path#fragment form.
func (r Reference) Target() string {
	if r.Fragment == "" {
		return r.Path
	}
	return r.Path + "#" + r.Fragment
}

// PathCandidate is one reading of an arrow reference's path.
type PathCandidate struct {
	// Path is the document path under this reading.
	Path string

	// Raw is the matched text under this reading.
	Raw string

	// Start is the byte offset of Raw within the text.
	Start int
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocument_Fields(t *testing.T) {
	doc := Document{Path: "Astronomy/Stars.md", Content: "# Stars\n\nBig and hot."}

	assert.Equal(t, "Astronomy/Stars.md", doc.Path)
	assert.Contains(t, doc.Content, "Big and hot.")
}

func TestDocument_ZeroValue(t *testing.T) {
	var doc Document

	assert.Empty(t, doc.Path)
	assert.Empty(t, doc.Content)
}

func TestReferenceNotation_Values(t *testing.T) {
	assert.Equal(t, ReferenceNotation("wiki"), NotationWiki)
	assert.Equal(t, ReferenceNotation("arrow"), NotationArrow)
	assert.NotEqual(t, NotationWiki, NotationArrow)
}

func TestReference_Target(t *testing.T) {
	tests := []struct {
		name string
		ref  Reference
		want string
	}{
		{"path only", Reference{Path: "a/b.md"}, "a/b.md"},
		{"with fragment", Reference{Path: "a/b.md", Fragment: "intro"}, "a/b.md#intro"},
		{"label ignored", Reference{Path: "a/b.md", Fragment: "x", Label: "X"}, "a/b.md#x"},
		{"broken keeps target", Reference{Path: "gone.md", Broken: true}, "gone.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ref.Target())
		})
	}
}

func TestReference_Offsets(t *testing.T) {
	text := "See [[Stars.md]] for more."
	ref := Reference{Raw: "[[Stars.md]]", Path: "Stars.md", Notation: NotationWiki, Start: 4, End: 16}

	assert.Equal(t, ref.Raw, text[ref.Start:ref.End])
}

package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTags(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantText string
		wantTags []string
	}{
		{
			name:     "EmptyText",
			text:     "",
			wantText: "",
			wantTags: nil,
		},
		{
			name:     "SingleLineNoTags",
			text:     "no tags here",
			wantText: "no tags here",
			wantTags: nil,
		},
		{
			name:     "SingleLineInlineTag",
			text:     "Launch day #news",
			wantText: "Launch day",
			wantTags: []string{"news"},
		},
		{
			name:     "SingleLineOnlyTags",
			text:     "#only #tags",
			wantText: "",
			wantTags: []string{"only", "tags"},
		},
		{
			name:     "MultiLineTagsOnLastLine",
			text:     "hello\n#a #b",
			wantText: "hello",
			wantTags: []string{"a", "b"},
		},
		{
			name:     "MultiLineTagsNotOnLastLine",
			text:     "#a #b\nhello",
			wantText: "#a #b\nhello",
			wantTags: nil,
		},
		{
			name:     "MultiLineKeepsInnerLines",
			text:     "one\ntwo\n#x",
			wantText: "one\ntwo",
			wantTags: []string{"x"},
		},
		{
			name:     "UnicodeTags",
			text:     "фото дня\n#природа #foto_2024",
			wantText: "фото дня",
			wantTags: []string{"природа", "foto_2024"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotText, gotTags := ExtractTags(tt.text)

			assert.Equal(t, tt.wantText, gotText)
			assert.Equal(t, tt.wantTags, gotTags)
		})
	}
}

package converter

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFTextConverter_Convert_InvalidPDF(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/in/broken.pdf", []byte("this is not a pdf"), 0o644))

	converter := NewPDFTextConverter(fsys)
	require.NoError(t, converter.Available())

	err := converter.Convert(context.Background(), "/in/broken.pdf", "/in/broken.txt")
	require.Error(t, err)

	var convErr *ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, "/in/broken.pdf", convErr.Path)

	exists, _ := afero.Exists(fsys, "/in/broken.txt")
	assert.False(t, exists, "no output expected for an unreadable PDF")
}

func TestTextPDFConverter_Convert(t *testing.T) {
	fsys := afero.NewMemMapFs()
	content := "First line\r\nSecond line\n\n" + strings.Repeat("word ", 60)
	require.NoError(t, afero.WriteFile(fsys, "/in/notes.txt", []byte(content), 0o644))

	err := NewTextPDFConverter(fsys).Convert(context.Background(), "/in/notes.txt", "/in/notes.pdf")
	require.NoError(t, err)

	out, err := afero.ReadFile(fsys, "/in/notes.pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}

func TestWrapLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		width   int
		want    []string
	}{
		{
			name:    "short lines untouched",
			content: "a\nb",
			width:   10,
			want:    []string{"a", "b"},
		},
		{
			name:    "breaks at space",
			content: "aaaa bbbb cccc",
			width:   10,
			want:    []string{"aaaa bbbb", "cccc"},
		},
		{
			name:    "hard break without spaces",
			content: "abcdefghijkl",
			width:   5,
			want:    []string{"abcde", "fghij", "kl"},
		},
		{
			name:    "tabs expand",
			content: "\tx",
			width:   10,
			want:    []string{"    x"},
		},
		{
			name:    "trailing newlines dropped",
			content: "end\n\n",
			width:   10,
			want:    []string{"end"},
		},
		{
			name:    "blank lines kept",
			content: "a\n\nb",
			width:   10,
			want:    []string{"a", "", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wrapLines(tt.content, tt.width))
		})
	}
}

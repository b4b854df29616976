package converter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"docx", FormatDOCX},
		{"DOCX", FormatDOCX},
		{".pdf", FormatPDF},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"htm", FormatHTML},
		{" text ", FormatTXT},
		{"rtf", FormatRTF},
		{"odt", FormatODT},
		{"doc", FormatDOC},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, err := ParseFormat("pptx")
		var invalid *InvalidParameterError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, "pptx", invalid.Value)
	})
}

func TestFormatOf(t *testing.T) {
	f, err := FormatOf("/tmp/Notes.MARKDOWN")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)

	_, err = FormatOf("/tmp/README")
	assert.Error(t, err)

	_, err = FormatOf("/tmp/deck.pptx")
	var invalid *InvalidParameterError
	assert.True(t, errors.As(err, &invalid))
}

func TestFormat_LabelAndExtension(t *testing.T) {
	assert.Equal(t, "PDF", FormatPDF.Label())
	assert.Equal(t, "Markdown", FormatMarkdown.Label())
	assert.Equal(t, ".md", FormatMarkdown.Extension())
	assert.Equal(t, ".docx", FormatDOCX.Extension())
}

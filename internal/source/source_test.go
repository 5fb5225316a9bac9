package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zenbook-app/zenbook/internal/book"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected Format
	}{
		{"zen extension", "morning.zen", FormatMarkup},
		{"txt extension", "morning.txt", FormatMarkup},
		{"chapter extension", "morning.chapter", FormatMarkup},
		{"yaml extension", "01-morning.yaml", FormatChapter},
		{"yml uppercase", "MORNING.YML", FormatChapter},
		{"markdown extension", "notes.md", FormatMarkdown},
		{"long markdown extension", "notes.markdown", FormatMarkdown},
		{"unknown extension", "notes.docx", FormatUnknown},
		{"no extension", "admin_1700000000000", FormatUnknown},
		{"path with directory", "/path/to/morning.zen", FormatMarkup},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectFormat(tc.path)
			if got != tc.expected {
				t.Errorf("DetectFormat(%q) = %v, want %v", tc.path, got, tc.expected)
			}
		})
	}
}

func TestFormatString(t *testing.T) {
	require.Equal(t, "markup", FormatMarkup.String())
	require.Equal(t, "chapter", FormatChapter.String())
	require.Equal(t, "markdown", FormatMarkdown.String())
	require.Equal(t, "unknown", FormatUnknown.String())
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Markup(t *testing.T) {
	body := "Opening line.\n\n## The Pause\n\nBreathe."
	d, err := Load(writeFile(t, "stillness.zen", body))
	require.NoError(t, err)
	require.Equal(t, "The Pause", d.Title)
	require.Equal(t, body, d.Body)

	d, err = Load(writeFile(t, "stillness.txt", "Just text."))
	require.NoError(t, err)
	require.Equal(t, "stillness", d.Title)
}

func TestLoad_Chapter(t *testing.T) {
	content := `number: 4
title: Morning Light
subtitle: Begin slowly
icon: "☀️"
body: |
  ## Waking

  > Rise | Anon
`
	d, err := Load(writeFile(t, "04-morning.yaml", content))
	require.NoError(t, err)
	require.Equal(t, book.Draft{
		Title:    "Morning Light",
		Subtitle: "Begin slowly",
		Icon:     "☀️",
		Body:     "## Waking\n\n> Rise | Anon\n",
		Number:   4,
	}, d)
}

func TestLoad_Markdown(t *testing.T) {
	d, err := Load(writeFile(t, "notes.md", "# 🌙 Evening\n\n_Wind down_\n\nRest **well**.\n"))
	require.NoError(t, err)
	require.Equal(t, "Evening", d.Title)
	require.Equal(t, "Wind down", d.Subtitle)
	require.Equal(t, "🌙", d.Icon)
	require.Equal(t, "Rest **well**.\n", d.Body)

	d, err = Load(writeFile(t, "untitled.md", "Only a paragraph.\n"))
	require.NoError(t, err)
	require.Equal(t, "untitled", d.Title)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("notes.docx")
	require.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.zen"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "broken.yaml", "title: [unterminated"))
	require.Error(t, err)
}

func TestWriteChapter_RoundTrip(t *testing.T) {
	ch := book.Chapter{
		ID:       "admin_1700000000000",
		Number:   2,
		Title:    "The Pause",
		Subtitle: "Between breaths",
		Icon:     "🌿",
		Body:     "## Stop\n\n[tip]\nCount to four\n[/tip]\n",
	}

	path := filepath.Join(t.TempDir(), ExportName(ch))
	require.NoError(t, WriteChapter(path, ch))

	d, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, book.Draft{
		Title:    ch.Title,
		Subtitle: ch.Subtitle,
		Icon:     ch.Icon,
		Body:     ch.Body,
		Number:   ch.Number,
	}, d)
}

func TestExportName(t *testing.T) {
	tests := []struct {
		ch       book.Chapter
		expected string
	}{
		{book.Chapter{Number: 3, Title: "Morning Light"}, "03-morning-light.yaml"},
		{book.Chapter{Number: 12, Title: "Let It Be!"}, "12-let-it-be.yaml"},
		{book.Chapter{Number: 1, Title: "!!!"}, "01-chapter.yaml"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			require.Equal(t, tc.expected, ExportName(tc.ch))
		})
	}
}

func TestExportNames(t *testing.T) {
	chapters := []book.Chapter{
		{ID: "rec1", Number: 1, Title: "Arrival"},
		{ID: "rec2", Number: 1, Title: "Arrival"},
		{ID: "rec3", Number: 2, Title: "Breath"},
		{Number: 3, Title: "!!!"},
		{Number: 3, Title: "???"},
		{ID: "x", Number: 4, Title: "Dup"},
		{ID: "x", Number: 4, Title: "Dup"},
	}

	require.Equal(t, []string{
		"01-arrival-rec1.yaml",
		"01-arrival-rec2.yaml",
		"02-breath.yaml",
		"03-chapter.yaml",
		"03-chapter-2.yaml",
		"04-dup-x.yaml",
		"04-dup-x-2.yaml",
	}, ExportNames(chapters))
	require.Empty(t, ExportNames(nil))
}

func TestIsSource(t *testing.T) {
	require.True(t, IsSource(writeFile(t, "a.zen", "x")))
	require.False(t, IsSource("admin_1700000000000"))
	require.False(t, IsSource(filepath.Join(t.TempDir(), "missing.zen")))
}

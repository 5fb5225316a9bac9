// Package source loads chapters from files on disk.
package source

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"

	"github.com/zenbook-app/zenbook/internal/book"
	"github.com/zenbook-app/zenbook/internal/importer"
	"github.com/zenbook-app/zenbook/internal/markup"
)

// Format represents a chapter source format.
type Format int

const (
	FormatUnknown  Format = iota
	FormatMarkup          // raw chapter markup
	FormatChapter         // YAML chapter file
	FormatMarkdown        // CommonMark, converted on load
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatMarkup:
		return "markup"
	case FormatChapter:
		return "chapter"
	case FormatMarkdown:
		return "markdown"
	default:
		return "unknown"
	}
}

// DetectFormat detects the source format from the file path.
func DetectFormat(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".zen", ".txt", ".chapter":
		return FormatMarkup
	case ".yaml", ".yml":
		return FormatChapter
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return FormatUnknown
	}
}

// IsSource reports whether path names an existing file of a known format.
func IsSource(path string) bool {
	if DetectFormat(path) == FormatUnknown {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// chapterFile is the on-disk layout of a YAML chapter.
type chapterFile struct {
	Number   int    `yaml:"number,omitempty"`
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle,omitempty"`
	Icon     string `yaml:"icon,omitempty"`
	Body     string `yaml:"body"`
}

// Load reads path and returns the chapter draft it describes.
func Load(path string) (book.Draft, error) {
	format := DetectFormat(path)
	if format == FormatUnknown {
		return book.Draft{}, fmt.Errorf("unsupported source format: %s", filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return book.Draft{}, fmt.Errorf("failed to read source: %w", err)
	}

	switch format {
	case FormatChapter:
		return parseChapter(data)
	case FormatMarkdown:
		res, err := importer.New().Convert(data)
		if err != nil {
			return book.Draft{}, fmt.Errorf("failed to convert markdown: %w", err)
		}
		title := res.Title
		if title == "" {
			title = Stem(path)
		}
		return book.Draft{Title: title, Subtitle: res.Subtitle, Icon: res.Icon, Body: res.Body}, nil
	default:
		body := string(data)
		return book.Draft{Title: markupTitle(body, Stem(path)), Body: body}, nil
	}
}

func parseChapter(data []byte) (book.Draft, error) {
	var f chapterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return book.Draft{}, fmt.Errorf("failed to parse chapter file: %w", err)
	}
	return book.Draft{
		Title:    f.Title,
		Subtitle: f.Subtitle,
		Icon:     f.Icon,
		Body:     f.Body,
		Number:   f.Number,
	}, nil
}

// markupTitle returns the first section heading of body, or fallback.
func markupTitle(body, fallback string) string {
	for _, b := range markup.ParseBlocks(body) {
		if b.Kind == markup.KindHeading {
			return b.Content
		}
	}
	return fallback
}

// Stem returns the file name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// WriteChapter writes ch to path as a YAML chapter file.
func WriteChapter(path string, ch book.Chapter) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(chapterFile{
		Number:   ch.Number,
		Title:    ch.Title,
		Subtitle: ch.Subtitle,
		Icon:     ch.Icon,
		Body:     ch.Body,
	}); err != nil {
		return fmt.Errorf("failed to encode chapter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode chapter: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write chapter file: %w", err)
	}
	return nil
}

// ExportName returns the file name used when exporting ch, e.g.
// "03-morning-light.yaml".
func ExportName(ch book.Chapter) string {
	name := slug.Make(ch.Title)
	if name == "" {
		name = "chapter"
	}
	return fmt.Sprintf("%02d-%s.yaml", ch.Number, name)
}

// ExportNames returns one distinct file name per chapter, in order. Chapters
// sharing an ExportName get their id appended, and a counter when even that
// is taken.
func ExportNames(chapters []book.Chapter) []string {
	seen := make(map[string]int, len(chapters))
	for _, ch := range chapters {
		seen[ExportName(ch)]++
	}

	used := make(map[string]bool, len(chapters))
	names := make([]string, len(chapters))
	for i, ch := range chapters {
		name := ExportName(ch)
		base := strings.TrimSuffix(name, ".yaml")
		if id := slug.Make(ch.ID); seen[name] > 1 && id != "" {
			base += "-" + id
			name = base + ".yaml"
		}
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s-%d.yaml", base, n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

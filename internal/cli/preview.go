package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zenbook-app/zenbook/internal/book"
	"github.com/zenbook-app/zenbook/internal/markup"
)

var (
	previewFormat string
	previewOutput string
	previewPretty bool
)

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Show the parsed block structure of a chapter source",
	Long: `Parse a chapter source file and print its blocks without rendering them.

The JSON output lists every block with its kind, content, attribution and
inline spans. The text output prints one line per block.

Examples:
  zenbook preview chapter.zen
  zenbook preview chapter.zen --format text
  zenbook preview notes.md -o blocks.json`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVarP(&previewFormat, "format", "f", "json", "output format (json, text)")
	previewCmd.Flags().StringVarP(&previewOutput, "output", "o", "", "output file path (default: stdout)")
	previewCmd.Flags().BoolVar(&previewPretty, "pretty", true, "indent JSON output")

	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	ch, err := loadChapterFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to load chapter: %w", err)
	}
	page := book.NewPage(ch)

	var sb strings.Builder
	if err := writePreview(&sb, page, previewFormat, previewPretty); err != nil {
		return err
	}

	if previewOutput == "" {
		fmt.Fprint(cmd.OutOrStdout(), sb.String())
		return nil
	}
	if err := os.WriteFile(previewOutput, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "Preview written: %s\n", previewOutput)
	}
	return nil
}

func writePreview(w io.Writer, page *book.Page, format string, pretty bool) error {
	switch format {
	case "json":
		var (
			data []byte
			err  error
		)
		if pretty {
			data, err = json.MarshalIndent(page, "", "  ")
		} else {
			data, err = json.Marshal(page)
		}
		if err != nil {
			return fmt.Errorf("failed to encode preview: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err

	case "text":
		_, err := io.WriteString(w, previewText(page))
		return err

	default:
		return fmt.Errorf("unsupported preview format: %s", format)
	}
}

// previewText summarises a page one block per line.
func previewText(page *book.Page) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Title: %s %s\n", page.Header.Icon, page.Header.Title)
	if page.Header.Subtitle != "" {
		fmt.Fprintf(&sb, "Subtitle: %s\n", page.Header.Subtitle)
	}
	fmt.Fprintf(&sb, "Blocks: %d (headings %d, quotes %d, tips %d, dividers %d)\n\n",
		len(page.Blocks),
		page.Count(markup.KindHeading),
		page.Count(markup.KindQuote),
		page.Count(markup.KindTip),
		page.Count(markup.KindDivider))

	for i, b := range page.Blocks {
		var detail string
		switch b.Kind {
		case markup.KindDivider:
		case markup.KindQuote:
			detail = b.Content
			if b.Author != nil {
				detail += " — " + *b.Author
			}
		case markup.KindHeading:
			detail = b.Content
		default:
			detail = strings.ReplaceAll(markup.PlainText(b.Spans), "\n", " / ")
		}

		if detail == "" {
			fmt.Fprintf(&sb, "%3d  %s\n", i+1, b.Kind)
			continue
		}
		fmt.Fprintf(&sb, "%3d  %-9s  %s\n", i+1, b.Kind, detail)
	}

	return sb.String()
}

package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zenbook-app/zenbook/internal/book"
	"github.com/zenbook-app/zenbook/internal/importer"
	"github.com/zenbook-app/zenbook/internal/source"
)

var importOutput string

var importCmd = &cobra.Command{
	Use:   "import <markdown>",
	Short: "Convert a Markdown document into chapter markup",
	Long: `Convert a CommonMark document into chapter markup.

The first level-1 heading becomes the chapter title and an emphasised line
below it the subtitle. Block quotes become pull quotes, code blocks tips
and list items separate paragraphs.

Without --output the markup body is printed. An output path ending in
.yaml or .yml receives a complete chapter file, title included.

Examples:
  zenbook import notes.md
  zenbook import notes.md -o notes.zen
  zenbook import notes.md -o 04-evening.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importOutput, "output", "o", "", "output file path (default: stdout)")

	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	data, err := os.ReadFile(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", inputPath)
		}
		return fmt.Errorf("failed to read file: %w", err)
	}

	res, err := importer.New().Convert(data)
	if err != nil {
		return fmt.Errorf("failed to convert markdown: %w", err)
	}

	if importOutput == "" {
		if res.Title != "" && !quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "Title: %s\n", res.Title)
		}
		fmt.Fprint(cmd.OutOrStdout(), res.Body)
		return nil
	}

	if source.DetectFormat(importOutput) == source.FormatChapter {
		draft := book.Draft{Title: res.Title, Subtitle: res.Subtitle, Icon: res.Icon, Body: res.Body}
		if draft.Title == "" {
			draft.Title = source.Stem(inputPath)
		}
		ch, err := draft.Apply(nil, 0, time.Now())
		if err != nil {
			return err
		}
		if err := source.WriteChapter(importOutput, ch); err != nil {
			return err
		}
	} else if err := os.WriteFile(importOutput, []byte(res.Body), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "Imported: %s\n", importOutput)
	}
	return nil
}

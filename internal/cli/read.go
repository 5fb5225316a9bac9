package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zenbook-app/zenbook/internal/book"
	"github.com/zenbook-app/zenbook/internal/config"
	"github.com/zenbook-app/zenbook/internal/render"
	"github.com/zenbook-app/zenbook/internal/source"
	"github.com/zenbook-app/zenbook/internal/store"
)

var (
	readFormat string
	readOutput string
	readWidth  int
)

var readCmd = &cobra.Command{
	Use:   "read <file|id>",
	Short: "Render a chapter",
	Long: `Render a chapter from a source file or from the chapter store.

A path with a known extension (.zen, .txt, .chapter, .yaml, .yml, .md,
.markdown) is read from disk. Anything else is looked up as a chapter id,
or as a chapter number when it is an integer.

Examples:
  zenbook read chapter.zen
  zenbook read 3 --format markdown
  zenbook read admin_1700000000000 --format html -o chapter.html`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func init() {
	readCmd.Flags().StringVarP(&readFormat, "format", "f", "", "output format (text, markdown, html, json; default: reader.format)")
	readCmd.Flags().StringVarP(&readOutput, "output", "o", "", "output file path (default: stdout)")
	readCmd.Flags().IntVar(&readWidth, "width", 0, "wrap column for text output (default: reader.width)")

	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	ch, err := a.chapter(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	format := readFormat
	if format == "" {
		format = a.cfg.Reader.Format
	}
	opts := render.Options{Width: a.cfg.Reader.Width}
	if readWidth > 0 {
		opts.Width = readWidth
	}

	if readOutput == "" {
		opts.Color = colorEnabled(a.cfg.Reader.Color, os.Stdout)
		return renderChapter(cmd.OutOrStdout(), ch, format, opts)
	}

	f, err := os.Create(readOutput)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := renderChapter(f, ch, format, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "Rendered %q to %s\n", ch.Title, readOutput)
	}
	return nil
}

// chapter loads arg as a source file when it is one, otherwise from the store.
func (a *app) chapter(ctx context.Context, arg string) (book.Chapter, error) {
	if source.IsSource(arg) {
		a.log.Debug("Reading chapter source", zap.String("path", arg), zap.Stringer("format", source.DetectFormat(arg)))
		return loadChapterFile(arg)
	}

	st, err := a.openStore()
	if err != nil {
		return book.Chapter{}, err
	}
	defer st.Close()

	ch, err := resolveChapter(ctx, st, arg)
	if err != nil {
		return book.Chapter{}, err
	}
	return *ch, nil
}

// loadChapterFile reads a source for display. Drafts need not be complete.
func loadChapterFile(path string) (book.Chapter, error) {
	draft, err := source.Load(path)
	if err != nil {
		return book.Chapter{}, err
	}
	return draft.Preview(), nil
}

// resolveChapter finds a chapter by id, or by number when ref is an integer.
func resolveChapter(ctx context.Context, st store.Store, ref string) (*book.Chapter, error) {
	ch, err := st.Get(ctx, ref)
	if err == nil {
		return ch, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to load chapter: %w", err)
	}

	number, convErr := strconv.Atoi(ref)
	if convErr != nil {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, ref)
	}

	chapters, err := st.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	for i := range chapters {
		if chapters[i].Number == number {
			return &chapters[i], nil
		}
	}
	return nil, fmt.Errorf("%w: number %d", store.ErrNotFound, number)
}

func renderChapter(w io.Writer, ch book.Chapter, format string, opts render.Options) error {
	r, err := render.Get(format)
	if err != nil {
		return err
	}
	if err := r.Render(w, book.NewPage(ch), opts); err != nil {
		return fmt.Errorf("failed to render chapter: %w", err)
	}
	return nil
}

// colorEnabled resolves the reader.color mode for out.
func colorEnabled(mode string, out *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return config.EnableColorOutput(out)
	}
}

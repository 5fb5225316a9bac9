package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zenbook-app/zenbook/internal/book"
	"github.com/zenbook-app/zenbook/internal/config"
	"github.com/zenbook-app/zenbook/internal/gate"
	"github.com/zenbook-app/zenbook/internal/markup"
	"github.com/zenbook-app/zenbook/internal/source"
	"github.com/zenbook-app/zenbook/internal/store"
)

// PINEnv supplies the admin PIN to editing commands without a prompt.
const PINEnv = "ZENBOOK_PIN"

var chapterPIN string

var chapterCmd = &cobra.Command{
	Use:   "chapter",
	Short: "Manage stored chapters",
	Long: `List and edit the chapters in the chapter store.

Subcommands:
  list      list chapters in reading order
  add       add a chapter from a source file
  edit      replace a chapter's content from a source file
  delete    delete a chapter
  move      change a chapter's number
  export    write every chapter to a directory as YAML

Editing commands ask for the admin PIN. Pass it with --pin or the
ZENBOOK_PIN environment variable to skip the prompt.`,
}

var chapterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List chapters",
	Args:  cobra.NoArgs,
	RunE:  runChapterList,
}

var chapterAddCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Add a chapter from a source file",
	Args:  cobra.ExactArgs(1),
	RunE:  runChapterAdd,
}

var chapterEditCmd = &cobra.Command{
	Use:   "edit <id> <file>",
	Short: "Replace a chapter's content from a source file",
	Args:  cobra.ExactArgs(2),
	RunE:  runChapterEdit,
}

var chapterDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a chapter",
	Args:  cobra.ExactArgs(1),
	RunE:  runChapterDelete,
}

var chapterMoveCmd = &cobra.Command{
	Use:   "move <id> <number>",
	Short: "Change a chapter's number",
	Args:  cobra.ExactArgs(2),
	RunE:  runChapterMove,
}

var chapterExportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Export all chapters as YAML files",
	Args:  cobra.ExactArgs(1),
	RunE:  runChapterExport,
}

func init() {
	for _, c := range []*cobra.Command{chapterAddCmd, chapterEditCmd, chapterDeleteCmd, chapterMoveCmd} {
		c.Flags().StringVar(&chapterPIN, "pin", "", "admin PIN (default: $"+PINEnv+" or prompt)")
	}

	chapterCmd.AddCommand(chapterListCmd)
	chapterCmd.AddCommand(chapterAddCmd)
	chapterCmd.AddCommand(chapterEditCmd)
	chapterCmd.AddCommand(chapterDeleteCmd)
	chapterCmd.AddCommand(chapterMoveCmd)
	chapterCmd.AddCommand(chapterExportCmd)

	rootCmd.AddCommand(chapterCmd)
}

// withStore loads the configuration, opens the store and runs fn.
func withStore(fn func(a *app, st store.Store) error) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	st, err := a.openStore()
	if err != nil {
		return err
	}

	err = fn(a, st)
	if cerr := st.Close(); cerr != nil {
		a.log.Warn("Failed to close chapter store", zap.Error(cerr))
	}
	return err
}

// authorize checks the admin PIN from --pin, the environment or a prompt.
func authorize(cmd *cobra.Command, cfg *config.Config) error {
	g, err := gate.New(cfg.Admin.PIN)
	if err != nil {
		return fmt.Errorf("admin.pin: %w", err)
	}

	code := chapterPIN
	if code == "" {
		code = os.Getenv(PINEnv)
	}
	if code != "" {
		return g.Check(code)
	}
	return g.Prompt(cmd.InOrStdin(), cmd.ErrOrStderr())
}

func runChapterList(cmd *cobra.Command, args []string) error {
	return withStore(func(a *app, st store.Store) error {
		chapters, err := st.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list chapters: %w", err)
		}
		writeChapterTable(cmd.OutOrStdout(), chapters)
		fmt.Fprintf(cmd.ErrOrStderr(), "\n%d chapter(s), backend: %s\n", len(chapters), st.Backend())
		return nil
	})
}

func writeChapterTable(out io.Writer, chapters []book.Chapter) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "NO\tID\tICON\tTITLE\tBLOCKS")
	for _, ch := range chapters {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n",
			ch.Number, ch.ID, ch.Icon, ch.Title, len(markup.ParseBlocks(ch.Body)))
	}
}

func runChapterAdd(cmd *cobra.Command, args []string) error {
	draft, err := source.Load(args[0])
	if err != nil {
		return err
	}

	return withStore(func(a *app, st store.Store) error {
		if err := authorize(cmd, a.cfg); err != nil {
			return err
		}
		ch, err := addChapter(cmd.Context(), st, draft, time.Now())
		if err != nil {
			return err
		}
		a.log.Info("Chapter added", zap.String("id", ch.ID), zap.Int("number", ch.Number))
		fmt.Fprintf(cmd.OutOrStdout(), "Added chapter %d: %s (%s)\n", ch.Number, ch.Title, ch.ID)
		return nil
	})
}

func addChapter(ctx context.Context, st store.Store, draft book.Draft, now time.Time) (book.Chapter, error) {
	chapters, err := st.List(ctx)
	if err != nil {
		return book.Chapter{}, fmt.Errorf("failed to list chapters: %w", err)
	}
	ch, err := draft.Apply(nil, book.NextNumber(chapters), now)
	if err != nil {
		return book.Chapter{}, err
	}
	if err := st.Upsert(ctx, ch); err != nil {
		return book.Chapter{}, fmt.Errorf("failed to save chapter: %w", err)
	}
	return ch, nil
}

func runChapterEdit(cmd *cobra.Command, args []string) error {
	id, path := args[0], args[1]
	draft, err := source.Load(path)
	if err != nil {
		return err
	}

	return withStore(func(a *app, st store.Store) error {
		if err := authorize(cmd, a.cfg); err != nil {
			return err
		}
		ch, err := editChapter(cmd.Context(), st, id, draft, time.Now())
		if err != nil {
			return err
		}
		a.log.Info("Chapter updated", zap.String("id", ch.ID))
		fmt.Fprintf(cmd.OutOrStdout(), "Updated chapter %d: %s (%s)\n", ch.Number, ch.Title, ch.ID)
		return nil
	})
}

func editChapter(ctx context.Context, st store.Store, id string, draft book.Draft, now time.Time) (book.Chapter, error) {
	existing, err := st.Get(ctx, id)
	if err != nil {
		return book.Chapter{}, fmt.Errorf("failed to load chapter %s: %w", id, err)
	}
	ch, err := draft.Apply(existing, 0, now)
	if err != nil {
		return book.Chapter{}, err
	}
	if err := st.Upsert(ctx, ch); err != nil {
		return book.Chapter{}, fmt.Errorf("failed to save chapter: %w", err)
	}
	return ch, nil
}

func runChapterDelete(cmd *cobra.Command, args []string) error {
	id := args[0]
	return withStore(func(a *app, st store.Store) error {
		if err := authorize(cmd, a.cfg); err != nil {
			return err
		}
		ch, err := st.Get(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to load chapter %s: %w", id, err)
		}
		if err := st.Delete(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete chapter: %w", err)
		}
		a.log.Info("Chapter deleted", zap.String("id", id))
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted chapter %d: %s (%s)\n", ch.Number, ch.Title, ch.ID)
		return nil
	})
}

func runChapterMove(cmd *cobra.Command, args []string) error {
	id := args[0]
	number, err := strconv.Atoi(args[1])
	if err != nil || number < 1 {
		return fmt.Errorf("invalid chapter number: %s", args[1])
	}

	return withStore(func(a *app, st store.Store) error {
		if err := authorize(cmd, a.cfg); err != nil {
			return err
		}
		if err := st.Reorder(cmd.Context(), id, number); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: %s", store.ErrNotFound, id)
			}
			return fmt.Errorf("failed to move chapter: %w", err)
		}
		a.log.Info("Chapter moved", zap.String("id", id), zap.Int("number", number))
		fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to number %d\n", id, number)
		return nil
	})
}

func runChapterExport(cmd *cobra.Command, args []string) error {
	dir := args[0]
	return withStore(func(a *app, st store.Store) error {
		paths, err := exportChapters(cmd.Context(), st, dir)
		if err != nil {
			return err
		}
		for _, p := range paths {
			a.log.Debug("Chapter exported", zap.String("path", p))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d chapter(s) to %s\n", len(paths), dir)
		return nil
	})
}

// exportChapters writes every chapter to dir and returns the written paths.
func exportChapters(ctx context.Context, st store.Store, dir string) ([]string, error) {
	chapters, err := st.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	names := source.ExportNames(chapters)
	paths := make([]string, 0, len(chapters))
	for i, ch := range chapters {
		path := filepath.Join(dir, names[i])
		if err := source.WriteChapter(path, ch); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

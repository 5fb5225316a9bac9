package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zenbook-app/zenbook/internal/render"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List output formats",
	Long: `List the formats the read command can render.

Examples:
  zenbook read chapter.zen --format markdown
  zenbook read chapter.zen --format html -o chapter.html`,
	Run: runFormats,
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}

func runFormats(cmd *cobra.Command, args []string) {
	writeFormats(cmd.OutOrStdout(), render.DefaultRegistry)
}

func writeFormats(out io.Writer, reg *render.Registry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "FORMAT\tDESCRIPTION")
	for _, name := range reg.List() {
		r, err := reg.Get(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", r.Name(), r.Description())
	}
}

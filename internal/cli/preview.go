package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/themis/pkg/errors"
	"github.com/matzehuels/themis/pkg/resolve"
)

// previewCommand creates the command that resolves one slot blueprint on
// its own.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		opts     resolveOpts
		startCol int
	)

	cmd := &cobra.Command{
		Use:   "preview <blueprint>",
		Short: "Resolve a single slot blueprint",
		Long: fmt.Sprintf(`Resolve a slot blueprint under a synthetic node on %q, as if a node with
the given start column used it. Handy for checking a blueprint before any node
references it.`, resolve.PreviewSheet),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.openWorkspace(cmd.Context(), nil)
			if err != nil {
				return err
			}
			doc := ws.Snapshot()
			name := args[0]
			if _, ok := doc.Template(name); !ok {
				return errors.New(errors.ErrCodeTemplateNotFound, "no slot blueprint %q (have: %s)",
					name, strings.Join(doc.TemplateNames(), ", "))
			}
			insts := resolve.PreviewTemplate(doc, name, startCol)
			return printInstances(cmd.OutOrStdout(), insts, opts)
		},
		ValidArgsFunction: c.completeTemplates,
	}

	addResolveFlags(cmd, &opts)
	cmd.Flags().IntVar(&startCol, "start-col", 0, "start column of the synthetic node")
	return cmd
}

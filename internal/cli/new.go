package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/themis/pkg/config"
	"github.com/matzehuels/themis/pkg/errors"
	themisio "github.com/matzehuels/themis/pkg/io"
	"github.com/matzehuels/themis/pkg/workspace"
)

// newCommand creates the command that writes a starter configuration.
func (c *CLI) newCommand() *cobra.Command {
	var force, fill bool

	cmd := &cobra.Command{
		Use:   "new [file]",
		Short: "Write a starter configuration",
		Long: `Write the default configuration (three layouts, one slot blueprint and a
three-level hierarchy) to file. The format follows the extension: .js files get
the "const THEMIS_CONFIG = {...};" wrapper, anything else is plain JSON.

With --fill, an existing file keeps its own sections and only the sections it
leaves out are added from the default configuration.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultDocument
			if len(args) > 0 {
				path = args[0]
			}
			if err := errors.ValidatePath(path); err != nil {
				return err
			}
			_, statErr := os.Stat(path)
			if statErr == nil && fill {
				return c.fillDefaults(cmd, path)
			}
			if statErr == nil && !force {
				return errors.New(errors.ErrCodeInvalidInput, "%s already exists (use --force to overwrite or --fill to complete it)", path)
			}
			if err := themisio.ExportFile(config.Default(), path); err != nil {
				return err
			}
			c.remember(path)

			printSuccess("Created configuration")
			printFile(path)
			printNextStep("List its placements", "themis resolve "+path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.Flags().BoolVar(&fill, "fill", false, "add the default sections an existing file lacks")
	cmd.MarkFlagsMutuallyExclusive("force", "fill")
	return cmd
}

// fillDefaults completes the document at path with the default sections it
// does not define.
func (c *CLI) fillDefaults(cmd *cobra.Command, path string) error {
	ctx := cmd.Context()
	ws, err := workspace.Open(ctx, path, workspace.Options{Logger: c.Logger, FillDefaults: true})
	if err != nil {
		return err
	}
	if !ws.Dirty() {
		printInfo("%s already defines every section", path)
		return nil
	}
	if err := ws.Save(ctx, ""); err != nil {
		return err
	}
	c.remember(path)
	printSuccess("Added the missing default sections")
	printFile(path)
	return nil
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/themis/pkg/errors"
)

// validateCommand creates the command that checks a configuration.
func (c *CLI) validateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a configuration for errors and warnings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.openWorkspace(cmd.Context(), args)
			if err != nil {
				return err
			}
			res := ws.Validate(cmd.Context())
			printValidation(res)

			switch {
			case !res.OK():
				return errors.New(errors.ErrCodeInvalidDocument, "%d validation errors", len(res.Errors))
			case strict && len(res.Warnings) > 0:
				return errors.New(errors.ErrCodeInvalidDocument, "%d validation warnings", len(res.Warnings))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	return cmd
}

package cli

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/themis/pkg/errors"
	themisio "github.com/matzehuels/themis/pkg/io"
	"github.com/matzehuels/themis/pkg/render/workbook"
	"github.com/matzehuels/themis/pkg/resolve"
)

const formatXLSX = "xlsx"

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	output      string
	format      string   // json, js or xlsx
	sheets      []string // xlsx: limit to these sheets
	anchorsOnly bool     // xlsx: skip field cells
}

// exportCommand creates the command that writes the configuration or a
// workbook preview.
func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export [file] -o <output>",
		Short: "Export the configuration or an .xlsx placement preview",
		Long: `Write the configuration as JSON or JavaScript, or write an .xlsx workbook
showing where every placement lands.

The format is taken from --format, then from the output file extension, then
from the export_format setting.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.output == "" {
				return errors.New(errors.ErrCodeInvalidPath, "an output path is required (-o)")
			}
			return c.runExport(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file")
	cmd.Flags().StringVar(&opts.format, "format", "", "output format: json, js or xlsx")
	cmd.Flags().StringSliceVar(&opts.sheets, "sheet", nil, "xlsx: only these sheets (repeatable)")
	cmd.Flags().BoolVar(&opts.anchorsOnly, "anchors-only", false, "xlsx: skip field cells")
	return cmd
}

func (c *CLI) runExport(cmd *cobra.Command, args []string, opts exportOpts) error {
	ws, err := c.openWorkspace(cmd.Context(), args)
	if err != nil {
		return err
	}
	if err := errors.ValidatePath(opts.output); err != nil {
		return err
	}

	format := c.exportFormat(opts)
	var buf bytes.Buffer
	if format == formatXLSX {
		err = workbook.Write(&buf, ws.Instances(resolve.Filter{}), workbook.Options{
			Sheets:      opts.sheets,
			AnchorsOnly: opts.anchorsOnly,
		})
	} else {
		var f themisio.Format
		if f, err = themisio.ParseFormat(format); err == nil {
			err = themisio.Write(&buf, ws.Snapshot(), f)
		}
	}
	if err != nil {
		return err
	}

	if err := themisio.WriteFileAtomic(opts.output, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", opts.output)
	}
	loggerFromContext(cmd.Context()).Debug("exported", "format", format, "bytes", buf.Len())
	printSuccess("Exported %s", format)
	printFile(opts.output)
	return nil
}

// exportFormat picks the output format: the flag, a recognized extension, or
// the configured default.
func (c *CLI) exportFormat(opts exportOpts) string {
	if opts.format != "" {
		return strings.ToLower(strings.TrimPrefix(opts.format, "."))
	}
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(opts.output), ".")); ext {
	case "json", "js", formatXLSX:
		return ext
	}
	return c.loadSettings().ExportFormat
}

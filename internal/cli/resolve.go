package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/themis/pkg/resolve"
	"github.com/matzehuels/themis/pkg/render/workbook"
)

// resolveOpts holds the command-line flags shared by resolve and preview.
type resolveOpts struct {
	sheet string // only placements on this sheet
	node  string // only placements of this node (handle or name)
	json  bool   // print JSON instead of a table
	grid  bool   // print a sheet grid per sheet
}

// resolveCommand creates the command that lists resolved placements.
func (c *CLI) resolveCommand() *cobra.Command {
	var opts resolveOpts

	cmd := &cobra.Command{
		Use:   "resolve [file]",
		Short: "List the placements a configuration produces",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog := newProgress(c.Logger)
			ws, err := c.openWorkspace(cmd.Context(), args)
			if err != nil {
				return err
			}

			filter := resolve.Filter{Sheet: opts.sheet}
			if opts.node != "" {
				id, err := ws.LookupNode(opts.node)
				if err != nil {
					return err
				}
				filter.NodePath = strings.Join(ws.Snapshot().PathNames(id), ">")
			}
			insts := ws.Instances(filter)
			prog.done(fmt.Sprintf("Resolved %d placements", len(insts)))
			return printInstances(cmd.OutOrStdout(), insts, opts)
		},
	}

	addResolveFlags(cmd, &opts)
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "only show placements on this sheet")
	cmd.Flags().StringVar(&opts.node, "node", "", "only show placements of this node (handle or name)")
	return cmd
}

func addResolveFlags(cmd *cobra.Command, opts *resolveOpts) {
	cmd.Flags().BoolVar(&opts.json, "json", false, "print JSON")
	cmd.Flags().BoolVar(&opts.grid, "grid", false, "print a grid preview of each sheet")
}

// printInstances writes insts in the format opts asks for.
func printInstances(w io.Writer, insts []resolve.Instance, opts resolveOpts) error {
	if opts.json {
		type row struct {
			ID string `json:"id"`
			resolve.Instance
		}
		out := make([]row, len(insts))
		for i, inst := range insts {
			out[i] = row{ID: inst.ID(), Instance: inst}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(insts) == 0 {
		printInfo("No placements")
		return nil
	}
	if opts.grid {
		for _, sheet := range resolve.Sheets(insts) {
			fmt.Fprintln(w, StyleTitle.Render(sheet))
			fmt.Fprintln(w, gridTable(workbook.Grid(insts, sheet)))
		}
		return nil
	}
	fmt.Fprintln(w, instanceTable(insts))
	return nil
}

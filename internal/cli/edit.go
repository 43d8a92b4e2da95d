package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/themis/pkg/config"
	"github.com/matzehuels/themis/pkg/edit"
	"github.com/matzehuels/themis/pkg/errors"
	"github.com/matzehuels/themis/pkg/resolve"
	"github.com/matzehuels/themis/pkg/workspace"
)

// moveOpts holds the command-line flags for the move command.
type moveOpts struct {
	row        int  // new anchor row
	col        int  // new anchor column
	preferSlot bool // write the column to the slot even when it was inherited
	dryRun     bool // report the change without saving
}

// moveCommand creates the command that moves one placement.
func (c *CLI) moveCommand() *cobra.Command {
	var opts moveOpts

	cmd := &cobra.Command{
		Use:   "move <placement-id>",
		Short: "Move a placement and write the change back",
		Long: `Move the placement with the given ID (see "themis resolve") to a new row
and/or column and save the configuration.

A column that the placement inherited from its node is written to the node, so
every placement that shares it moves too. Use --prefer-slot to write it to the
slot instead.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeInstanceIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mv := edit.Move{PreferSlotColumn: opts.preferSlot}
			if cmd.Flags().Changed("row") {
				mv.Row = config.IntPtr(opts.row)
			}
			if cmd.Flags().Changed("col") {
				mv.Col = config.IntPtr(opts.col)
			}
			if mv.Row == nil && mv.Col == nil {
				return errors.New(errors.ErrCodeInvalidInput, "nothing to move: pass --row and/or --col")
			}
			return c.runMove(cmd, args[0], mv, opts.dryRun)
		},
	}

	cmd.Flags().IntVar(&opts.row, "row", 0, "new row")
	cmd.Flags().IntVar(&opts.col, "col", 0, "new column")
	cmd.Flags().BoolVar(&opts.preferSlot, "prefer-slot", false, "write an inherited column to the slot instead of the node")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "show the result without saving")
	return cmd
}

func (c *CLI) runMove(cmd *cobra.Command, id string, mv edit.Move, dryRun bool) error {
	ctx := cmd.Context()
	ws, err := c.openWorkspace(ctx, nil)
	if err != nil {
		return err
	}
	before, err := ws.Instance(id)
	if err != nil {
		return err
	}
	siblings := inheritingSiblings(ws, before)

	changed, err := ws.Move(ctx, id, mv)
	if err != nil {
		return err
	}
	if !changed {
		printInfo("Nothing changed")
		return nil
	}

	after, err := ws.Instance(id)
	if err == nil {
		printSuccess("Moved %s from R%dC%d %s R%dC%d", StyleHighlight.Render(id),
			before.Row, before.Col, iconArrow, after.Row, after.Col)
	}
	if spillsToNode(mv, ws.PreferSlotColumn(), before) && siblings > 0 {
		printWarning("Column written to node %q; %d other placements moved with it", before.Path(), siblings)
	}
	return c.saveUnlessDry(cmd, ws, dryRun)
}

// spillsToNode reports whether moving inst by mv writes the column to the
// node it inherits from. preferSlot is the workspace default.
func spillsToNode(mv edit.Move, preferSlot bool, inst resolve.Instance) bool {
	return mv.Col != nil && !mv.PreferSlotColumn && !preferSlot && inst.ColSource == resolve.ColAncestor
}

// inheritingSiblings counts the other placements that take their column
// from the same node as inst.
func inheritingSiblings(ws *workspace.Workspace, inst resolve.Instance) int {
	if inst.ColSource != resolve.ColAncestor {
		return 0
	}
	n := 0
	for _, other := range ws.Instances(resolve.Filter{}) {
		if other.Node == inst.Node && other.ColSource == resolve.ColAncestor && other.ID() != inst.ID() {
			n++
		}
	}
	return n
}

// detachCommand creates the command that copies blueprint slots into a node.
func (c *CLI) detachCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "detach <node>",
		Short: "Copy a node's slot blueprint into the node itself",
		Long: `Replace a node's reference to a shared slot blueprint with its own copy of
the blueprint's slots, so they can be edited without affecting other nodes.
The node is given by handle (e.g. 0.0.0) or by name.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeNodes,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := c.openWorkspace(ctx, nil)
			if err != nil {
				return err
			}
			id, err := ws.Detach(ctx, args[0])
			if err != nil {
				return err
			}
			owned := 0
			for _, inst := range ws.Instances(resolve.Filter{}) {
				if inst.Node == id {
					owned++
				}
			}
			printSuccess("Detached node %s", StyleHighlight.Render(string(id)))
			printDetail("%d placements now come from the node's own slots", owned)
			return c.saveUnlessDry(cmd, ws, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the result without saving")
	return cmd
}

func (c *CLI) saveUnlessDry(cmd *cobra.Command, ws *workspace.Workspace, dryRun bool) error {
	if dryRun {
		printInfo("Dry run, %s not written", ws.Path())
		return nil
	}
	if err := ws.Save(cmd.Context(), ""); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	printFile(ws.Path())
	return nil
}

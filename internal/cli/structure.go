package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/themis/pkg/config"
	"github.com/matzehuels/themis/pkg/errors"
	"github.com/matzehuels/themis/pkg/resolve"
	"github.com/matzehuels/themis/pkg/workspace"
)

// =============================================================================
// slot
// =============================================================================

type slotSetOpts struct {
	layout string
	title  string
	rank   string
	ranks  []string
	count  int
	dryRun bool
}

func (c *CLI) slotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slot",
		Short: "Edit slot properties",
	}
	cmd.AddCommand(c.slotSetCommand())
	return cmd
}

func (c *CLI) slotSetCommand() *cobra.Command {
	var opts slotSetOpts

	cmd := &cobra.Command{
		Use:   "set <slot>",
		Short: "Change the layout, title, rank or count of a slot",
		Long: `Change properties of the slot a placement comes from. The slot is given by
a placement ID (see "themis resolve"), with or without its coordinate:
0.0.0:t:1 and 0.0.0:t:1:0 name the same slot.

Blueprint slots (":t:") are shared by every node using the blueprint; run
"themis detach" first to change one node only. Pass an empty value to clear
layout, title or rank, and a negative count to remove the count.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeInstanceIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var p workspace.SlotPatch
			flags := cmd.Flags()
			if flags.Changed("layout") {
				p.Layout = &opts.layout
			}
			if flags.Changed("title") {
				p.Title = &opts.title
			}
			if flags.Changed("rank") {
				p.Rank = &opts.rank
			}
			if flags.Changed("ranks") {
				p.Ranks = opts.ranks
				if p.Ranks == nil {
					p.Ranks = []string{}
				}
			}
			if flags.Changed("count") {
				p.Count = &opts.count
			}
			if p.Empty() {
				return errors.New(errors.ErrCodeInvalidInput, "nothing to change: pass --layout, --title, --rank, --ranks or --count")
			}

			ctx := cmd.Context()
			ws, err := c.openWorkspace(ctx, nil)
			if err != nil {
				return err
			}
			changed, err := ws.EditSlot(ctx, args[0], p)
			if err != nil {
				return err
			}
			if !changed {
				printInfo("Nothing changed")
				return nil
			}
			printSuccess("Updated slot %s", StyleHighlight.Render(args[0]))
			if strings.Contains(args[0], ":t:") {
				printDetail("Blueprint slot: every node using the blueprint sees the change")
			}
			return c.saveUnlessDry(cmd, ws, opts.dryRun)
		},
	}

	cmd.Flags().StringVar(&opts.layout, "layout", "", "layout name")
	cmd.Flags().StringVar(&opts.title, "title", "", "display title")
	cmd.Flags().StringVar(&opts.rank, "rank", "", "single rank")
	cmd.Flags().StringSliceVar(&opts.ranks, "ranks", nil, "comma-separated rank list")
	cmd.Flags().IntVar(&opts.count, "count", 0, "descriptive member count")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "show the result without saving")
	cmd.MarkFlagsMutuallyExclusive("rank", "ranks")
	_ = cmd.RegisterFlagCompletionFunc("layout", c.completeLayouts)
	return cmd
}

// =============================================================================
// layout
// =============================================================================

func (c *CLI) layoutCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Edit layout field offsets",
	}
	cmd.AddCommand(c.layoutSetCommand())
	cmd.AddCommand(c.layoutRmCommand())
	return cmd
}

func (c *CLI) layoutSetCommand() *cobra.Command {
	var (
		off    config.Offset
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "set <layout> <field>",
		Short: "Place a field at an offset from the anchor cell",
		Long: `Set the offset of a field within a layout. Offsets are relative to the
anchor cell of each placement and may be negative. The layout is created when
it does not exist yet.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeLayoutFields,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := c.openWorkspace(ctx, nil)
			if err != nil {
				return err
			}
			changed, err := ws.SetOffset(ctx, args[0], args[1], off)
			if err != nil {
				return err
			}
			if !changed {
				printInfo("Nothing changed")
				return nil
			}
			printSuccess("Set %s.%s to (%d, %d)", args[0], StyleHighlight.Render(args[1]), off.Row, off.Col)
			return c.saveUnlessDry(cmd, ws, dryRun)
		},
	}

	cmd.Flags().IntVar(&off.Row, "row", 0, "row offset")
	cmd.Flags().IntVar(&off.Col, "col", 0, "column offset")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the result without saving")
	return cmd
}

func (c *CLI) layoutRmCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:               "rm <layout> <field>",
		Short:             "Remove a field from a layout",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeLayoutFields,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := c.openWorkspace(ctx, nil)
			if err != nil {
				return err
			}
			if err := ws.RemoveOffset(ctx, args[0], args[1]); err != nil {
				return err
			}
			printSuccess("Removed %s from %s", StyleHighlight.Render(args[1]), args[0])
			if args[1] == config.ExpectedField {
				printWarning("Layout %s no longer places %s", args[0], config.ExpectedField)
			}
			return c.saveUnlessDry(cmd, ws, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the result without saving")
	return cmd
}

// =============================================================================
// node
// =============================================================================

func (c *CLI) nodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Add or remove organization nodes",
	}
	cmd.AddCommand(c.nodeAddCommand())
	cmd.AddCommand(c.nodeRmCommand())
	return cmd
}

func (c *CLI) nodeAddCommand() *cobra.Command {
	var (
		parent string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a node to the hierarchy",
		Long: `Append a node called name to the children of --parent (a handle such as
0.1 or a node name), or as a new root when --parent is not given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := c.openWorkspace(ctx, nil)
			if err != nil {
				return err
			}
			id, err := ws.AddNode(ctx, parent, args[0])
			if err != nil {
				return err
			}
			printSuccess("Added node %s as %s", StyleHighlight.Render(args[0]), id)
			return c.saveUnlessDry(cmd, ws, dryRun)
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "parent node (handle or name)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the result without saving")
	_ = cmd.RegisterFlagCompletionFunc("parent", c.completeAllNodes)
	return cmd
}

func (c *CLI) nodeRmCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "rm <node>",
		Short: "Remove a node and everything below it",
		Long: `Remove the node given by handle or name together with its children. The
handles of its later siblings shift down by one.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeAllNodes,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := c.openWorkspace(ctx, nil)
			if err != nil {
				return err
			}
			before := len(ws.Instances(resolve.Filter{}))
			path, err := ws.RemoveNode(ctx, args[0])
			if err != nil {
				return err
			}
			printSuccess("Removed %s", StyleHighlight.Render(strings.Join(path, " > ")))
			printDetail("%d placements removed", before-len(ws.Instances(resolve.Filter{})))
			return c.saveUnlessDry(cmd, ws, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the result without saving")
	return cmd
}

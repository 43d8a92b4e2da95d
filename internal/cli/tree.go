package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/matzehuels/themis/pkg/config"
	"github.com/matzehuels/themis/pkg/errors"
	"github.com/matzehuels/themis/pkg/render"
	"github.com/matzehuels/themis/pkg/render/hierarchy"
	"github.com/matzehuels/themis/pkg/resolve"
)

// treeOpts holds the command-line flags for the tree command.
type treeOpts struct {
	output   string  // .dot, .svg, .pdf or .png; empty prints to the terminal
	detailed bool    // include inherited properties in node labels
	scale    float64 // PNG scale factor
}

// treeCommand creates the command that shows the organization hierarchy.
func (c *CLI) treeCommand() *cobra.Command {
	var opts treeOpts

	cmd := &cobra.Command{
		Use:   "tree [file]",
		Short: "Show the organization hierarchy",
		Long: `Print the organization hierarchy as a tree, or render it as a Graphviz
diagram when --output is given. The output format follows the file extension:
.dot, .svg, .pdf or .png (PDF and PNG need rsvg-convert).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.openWorkspace(cmd.Context(), args)
			if err != nil {
				return err
			}
			doc := ws.Snapshot()
			if opts.output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), hierarchyTree(doc, ws.Instances(resolve.Filter{}), opts.detailed))
				return nil
			}
			return c.renderHierarchy(cmd, doc, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write a diagram (.dot, .svg, .pdf, .png)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show sheet, layout and column details")
	cmd.Flags().Float64Var(&opts.scale, "scale", 2, "PNG scale factor")
	return cmd
}

func (c *CLI) renderHierarchy(cmd *cobra.Command, doc *config.Document, opts treeOpts) error {
	dot := hierarchy.ToDOT(doc, hierarchy.Options{Detailed: opts.detailed})
	ext := strings.ToLower(filepath.Ext(opts.output))

	var (
		data []byte
		err  error
	)
	if ext == ".dot" {
		data = []byte(dot)
	} else {
		spinner := newSpinner(cmd.Context(), cmd.ErrOrStderr(), "Rendering hierarchy...")
		spinner.Start()
		switch ext {
		case ".svg":
			data, err = hierarchy.RenderSVG(dot)
		case ".pdf":
			data, err = hierarchy.Convert(cmd.Context(), render.Converter{}, dot, render.FormatPDF, 0)
		case ".png":
			data, err = hierarchy.Convert(cmd.Context(), render.Converter{}, dot, render.FormatPNG, opts.scale)
		default:
			err = errors.New(errors.ErrCodeInvalidFormat, "unsupported diagram format %q (use .dot, .svg, .pdf or .png)", ext)
		}
		if err != nil {
			spinner.StopWithError("Rendering failed")
			return err
		}
		spinner.Stop()
	}

	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess("Rendered hierarchy")
	printFile(opts.output)
	return nil
}

// hierarchyTree renders the document's nodes as a terminal tree. Each node
// shows its handle and how many placements it owns.
func hierarchyTree(doc *config.Document, insts []resolve.Instance, detailed bool) string {
	counts := make(map[config.NodeID]int)
	for _, inst := range insts {
		counts[inst.Node]++
	}

	var build func(id config.NodeID, n *config.Node) *tree.Tree
	build = func(id config.NodeID, n *config.Node) *tree.Tree {
		t := tree.Root(nodeLine(id, n, counts[id], detailed))
		for i, ch := range n.Children {
			if ch == nil {
				continue
			}
			t.Child(build(id.Child(i), ch))
		}
		return t
	}

	root := tree.New().
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(lipgloss.NewStyle().Foreground(colorDim).MarginRight(1))
	for i, n := range doc.Hierarchy {
		if n == nil {
			continue
		}
		root.Child(build(config.RootID(i), n))
	}
	return root.String()
}

func nodeLine(id config.NodeID, n *config.Node, placements int, detailed bool) string {
	var b strings.Builder
	b.WriteString(StyleValue.Render(n.Name))
	b.WriteString(" " + StyleDim.Render(string(id)))
	if placements > 0 {
		b.WriteString(" " + StyleNumber.Render(fmt.Sprintf("(%d)", placements)))
	}
	if !detailed {
		return b.String()
	}
	var extra []string
	if n.SheetName != "" {
		extra = append(extra, "sheet="+n.SheetName)
	}
	if n.Layout != "" {
		extra = append(extra, "layout="+n.Layout)
	}
	if col, ok := n.StartCol(); ok {
		extra = append(extra, fmt.Sprintf("startCol=%d", col))
	}
	if n.UseSlotsFrom != "" {
		extra = append(extra, "slots="+n.UseSlotsFrom)
	}
	if len(extra) > 0 {
		b.WriteString(" " + StyleDim.Render(strings.Join(extra, " ")))
	}
	return b.String()
}

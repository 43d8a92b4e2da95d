package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/themis/pkg/config"
)

// findCommand creates the command that fuzzy-searches the hierarchy.
func (c *CLI) findCommand() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "find <query>",
		Short: "Fuzzy-search nodes by name, sheet or shortcut",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.openWorkspace(cmd.Context(), nil)
			if err != nil {
				return err
			}
			doc := ws.Snapshot()
			matches := doc.Search(args[0])
			if limit > 0 && len(matches) > limit {
				matches = matches[:limit]
			}
			return printMatches(cmd, doc, matches, asJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of results (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

type matchView struct {
	ID       config.NodeID `json:"id"`
	Name     string        `json:"name"`
	Path     []string      `json:"path"`
	Sheet    string        `json:"sheet,omitempty"`
	Distance int           `json:"distance"`
}

func printMatches(cmd *cobra.Command, doc *config.Document, matches []config.Match, asJSON bool) error {
	views := make([]matchView, len(matches))
	for i, m := range matches {
		views[i] = matchView{
			ID:       m.ID,
			Name:     m.Node.Name,
			Path:     m.Path,
			Sheet:    inheritedSheet(doc, m.ID),
			Distance: m.Distance,
		}
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}
	if len(views) == 0 {
		printInfo("No matches")
		return nil
	}

	rows := make([][]string, len(views))
	for i, v := range views {
		rows[i] = []string{string(v.ID), strings.Join(v.Path, " > "), v.Sheet}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("NODE", "PATH", "SHEET").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if col == 0 {
				return StyleHighlight
			}
			return lipgloss.NewStyle()
		})
	_, err := fmt.Fprintln(out, t.String())
	return err
}

// inheritedSheet returns the sheet a node's placements land on: its own
// sheetName or the nearest ancestor's.
func inheritedSheet(doc *config.Document, id config.NodeID) string {
	for cur := id; ; {
		if n, ok := doc.Node(cur); ok && n.SheetName != "" {
			return n.SheetName
		}
		parent, _, ok := cur.Parent()
		if !ok {
			return ""
		}
		cur = parent
	}
}

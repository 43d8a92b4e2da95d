package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/themis/pkg/config"
	"github.com/matzehuels/themis/pkg/edit"
	"github.com/matzehuels/themis/pkg/resolve"
	"github.com/matzehuels/themis/pkg/workspace"
)

// browseCommand creates the interactive placement browser.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [file]",
		Short: "Browse and nudge placements interactively",
		Long: `Open an interactive list of every placement in the configuration.

Keys:
  j/k, ↑/↓   select placement
  K/J        move the placement up/down one row
  H/L        move the placement left/right one column
  p          toggle writing columns to the slot instead of the node
  tab        cycle the sheet filter
  s          save
  q          quit (twice to discard unsaved changes)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.openWorkspace(cmd.Context(), args)
			if err != nil {
				return err
			}
			m := NewPlacementListModel(cmd.Context(), ws)
			if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run(); err != nil {
				return fmt.Errorf("browse: %w", err)
			}
			if ws.Dirty() {
				printWarning("Unsaved changes discarded")
			}
			return nil
		},
	}
}

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PlacementListModel - Interactive placement browser
// =============================================================================

// PlacementListModel is the bubbletea model for browsing and moving placements.
type PlacementListModel struct {
	ctx context.Context
	ws  *workspace.Workspace

	Instances  []resolve.Instance
	Sheets     []string
	Sheet      int // index into Sheets; -1 shows every sheet
	Cursor     int
	Offset     int
	Height     int
	PreferSlot bool
	Status     string

	confirmQuit bool
}

// NewPlacementListModel creates a browser over ws.
func NewPlacementListModel(ctx context.Context, ws *workspace.Workspace) PlacementListModel {
	m := PlacementListModel{
		ctx:        ctx,
		ws:         ws,
		Sheets:     ws.Sheets(),
		Sheet:      -1,
		Height:     15,
		PreferSlot: ws.PreferSlotColumn(),
	}
	m.reload()
	return m
}

func (m *PlacementListModel) reload() {
	var f resolve.Filter
	if m.Sheet >= 0 && m.Sheet < len(m.Sheets) {
		f.Sheet = m.Sheets[m.Sheet]
	}
	m.Instances = m.ws.Instances(f)
	if m.Cursor >= len(m.Instances) {
		m.Cursor = max(len(m.Instances)-1, 0)
	}
	m.scroll()
}

func (m *PlacementListModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// Selected returns the placement under the cursor.
func (m PlacementListModel) Selected() (resolve.Instance, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Instances) {
		return resolve.Instance{}, false
	}
	return m.Instances[m.Cursor], true
}

func (m PlacementListModel) Init() tea.Cmd {
	return nil
}

func (m PlacementListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if key != "q" && key != "esc" {
			m.confirmQuit = false
		}
		switch key {
		case "ctrl+c":
			return m, tea.Quit
		case "q", "esc":
			if m.ws.Dirty() && !m.confirmQuit {
				m.confirmQuit = true
				m.Status = StyleWarning.Render("Unsaved changes. Press q again to quit, s to save.")
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				m.scroll()
			}
		case "down", "j":
			if m.Cursor < len(m.Instances)-1 {
				m.Cursor++
				m.scroll()
			}
		case "K":
			m.nudge(-1, 0)
		case "J":
			m.nudge(1, 0)
		case "H":
			m.nudge(0, -1)
		case "L":
			m.nudge(0, 1)
		case "p":
			m.PreferSlot = !m.PreferSlot
			m.ws.SetPreferSlotColumn(m.PreferSlot)
			m.Status = fmt.Sprintf("Columns go to the %s", map[bool]string{true: "slot", false: "node"}[m.PreferSlot])
		case "tab":
			m.Sheet++
			if m.Sheet >= len(m.Sheets) {
				m.Sheet = -1
			}
			m.Cursor, m.Offset = 0, 0
			m.reload()
		case "s":
			if err := m.ws.Save(m.ctx, ""); err != nil {
				m.Status = StyleError.Render(err.Error())
			} else {
				m.Status = StyleSuccess.Render("Saved " + m.ws.Path())
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-9, 5)
		m.scroll()
	}
	return m, nil
}

// nudge moves the selected placement by the given row and column deltas.
// Row 1 and column 1 are the edge of the sheet.
func (m *PlacementListModel) nudge(dRow, dCol int) {
	inst, ok := m.Selected()
	if !ok {
		return
	}
	if inst.Row+dRow < 1 || inst.Col+dCol < 1 {
		m.Status = fmt.Sprintf("%s is already at the edge of the sheet", inst.ID())
		return
	}
	var mv edit.Move
	if dRow != 0 {
		mv.Row = config.IntPtr(inst.Row + dRow)
	}
	if dCol != 0 {
		mv.Col = config.IntPtr(inst.Col + dCol)
	}
	changed, err := m.ws.Move(m.ctx, inst.ID(), mv)
	switch {
	case err != nil:
		m.Status = StyleError.Render(err.Error())
	case !changed:
		m.Status = "Nothing changed"
	default:
		m.Status = fmt.Sprintf("Moved %s", inst.ID())
	}
	m.reload()
}

func (m PlacementListModel) View() string {
	var b strings.Builder

	title := "Placements"
	if m.ws.Dirty() {
		title += " *"
	}
	b.WriteString(StyleTitle.Render(title))
	if m.Sheet >= 0 && m.Sheet < len(m.Sheets) {
		b.WriteString(" " + StyleDim.Render("sheet: "+m.Sheets[m.Sheet]))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("j/k select  J/K/H/L move  p slot column  tab sheet  s save  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Instances))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		inst := m.Instances[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			inst.Label(),
			inst.Sheet,
			columnName(inst.Col) + strconv.Itoa(inst.Row),
			string(inst.ColSource),
			strings.Join(inst.NodePath, " > "),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Label", "Sheet", "Cell", "Col From", "Node").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			idx := m.Offset + row
			switch {
			case idx == m.Cursor && col == 3:
				return styleAnchor
			case idx == m.Cursor:
				return listSelectedStyle
			case col == 5:
				return listDimStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.Instances)), len(m.Instances))))
	if m.PreferSlot {
		b.WriteString(" " + StyleHighlight.Render("slot columns"))
	}
	if m.Status != "" {
		b.WriteString("\n  " + m.Status)
	}
	return b.String()
}

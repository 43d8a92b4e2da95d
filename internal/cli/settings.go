package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/themis/pkg/settings"
)

// settingsCommand creates the settings command.
func (c *CLI) settingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show user settings",
		Long: `Show the persisted user settings after environment overrides.

Settings live in settings.toml under $THEMIS_STUDIO_HOME, or
$XDG_CONFIG_HOME/themis, or ~/.config/themis.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.settingsStore()
			if err != nil {
				return err
			}
			st, err := store.Load()
			if err != nil {
				return err
			}

			fmt.Println(StyleTitle.Render("Settings"))
			printKeyValue("file", store.Path())
			printKeyValue("last document", orNone(st.LastPath))
			printKeyValue("export format", st.ExportFormat)
			printKeyValue("prefer slot column", strconv.FormatBool(st.PreferSlotColumn))
			printKeyValue("addr", st.Addr)
			if len(st.Recent) > 0 {
				fmt.Println()
				fmt.Println(styleHeader.Render("Recent documents"))
				for i, p := range st.Recent {
					fmt.Printf("  %s %s\n", StyleDim.Render(strconv.Itoa(i+1)), p)
				}
			}
			return nil
		},
	}

	cmd.AddCommand(c.settingsPathCommand())
	cmd.AddCommand(c.settingsForgetCommand())
	return cmd
}

// settingsPathCommand creates the "settings path" subcommand.
func (c *CLI) settingsPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the settings file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.settingsStore()
			if err != nil {
				return fmt.Errorf("get settings dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), store.Path())
			return nil
		},
	}
}

// settingsForgetCommand creates the "settings forget" subcommand, which clears
// the recent-documents list.
func (c *CLI) settingsForgetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "forget",
		Short: "Clear the last and recent documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.settingsStore()
			if err != nil {
				return err
			}
			var count int
			err = store.Update(func(st *settings.Settings) {
				count = len(st.Recent)
				st.Recent = nil
				st.LastPath = ""
			})
			if err != nil {
				return err
			}
			printSuccess("Forgot %d recent %s", count, plural(count, "document"))
			return nil
		},
	}
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return StyleDim.Render("(none)")
	}
	return s
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// Package cli implements the themis command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/themis/pkg/buildinfo"
	"github.com/matzehuels/themis/pkg/errors"
	"github.com/matzehuels/themis/pkg/observability"
	"github.com/matzehuels/themis/pkg/settings"
	"github.com/matzehuels/themis/pkg/workspace"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "themis"

	// defaultDocument is the file `themis new` writes when no path is given.
	defaultDocument = "themis.config.js"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// SettingsDir overrides the settings directory. Empty uses the
	// per-user default.
	SettingsDir string

	file string // --file flag
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Themis resolves roster configurations into spreadsheet placements",
		Long: `Themis reads a roster configuration (organization hierarchy, slot blueprints
and layout offsets), resolves it into concrete sheet/row/column placements and
writes edits made on those placements back into the configuration.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.file, "file", "f", "", "configuration file (defaults to the last opened one)")

	observability.SetEngineHooks(logHooks{})
	observability.SetStorageHooks(logHooks{})

	root.AddCommand(c.newCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.detachCommand())
	root.AddCommand(c.slotCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.nodeCommand())
	root.AddCommand(c.findCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.settingsCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Settings & Documents
// =============================================================================

func (c *CLI) settingsStore() (*settings.Store, error) {
	return settings.NewStore(c.SettingsDir)
}

// loadSettings returns the user settings, falling back to defaults when
// the settings file cannot be read.
func (c *CLI) loadSettings() *settings.Settings {
	store, err := c.settingsStore()
	if err == nil {
		var st *settings.Settings
		if st, err = store.Load(); err == nil {
			return st
		}
	}
	c.Logger.Debug("using default settings", "err", err)
	return settings.Default()
}

// documentPath picks the document to work on: the positional argument,
// then --file, then the last opened document.
func (c *CLI) documentPath(args []string) (string, error) {
	switch {
	case len(args) > 0 && args[0] != "":
		return args[0], nil
	case c.file != "":
		return c.file, nil
	}
	if last := c.loadSettings().LastPath; last != "" {
		c.Logger.Debug("using last opened document", "path", last)
		return last, nil
	}
	return "", errors.New(errors.ErrCodeInvalidPath, "no configuration file given; pass one or use --file")
}

// remember records path as the last opened document.
func (c *CLI) remember(path string) {
	store, err := c.settingsStore()
	if err == nil {
		err = store.Update(func(s *settings.Settings) { s.Touch(path) })
	}
	if err != nil {
		c.Logger.Warn("could not update settings", "err", err)
	}
}

// openWorkspace opens the document chosen by [CLI.documentPath] and records
// it in the settings.
func (c *CLI) openWorkspace(ctx context.Context, args []string) (*workspace.Workspace, error) {
	path, err := c.documentPath(args)
	if err != nil {
		return nil, err
	}
	st := c.loadSettings()
	ws, err := workspace.Open(ctx, path, workspace.Options{
		Logger:           c.Logger,
		PreferSlotColumn: st.PreferSlotColumn,
	})
	if err != nil {
		return nil, err
	}
	c.remember(path)
	return ws, nil
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/themis/internal/server"
)

// serveCommand creates the command that serves the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve the placement API over HTTP",
		Long: `Open a configuration and serve it over a local JSON API so a browser
editor can list placements, move them and save the result.

The listen address defaults to the addr setting (THEMIS_ADDR).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := c.openWorkspace(ctx, args)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = c.loadSettings().Addr
			}

			printInfo("Serving %s on %s", StyleHighlight.Render(ws.Path()), StyleValue.Render("http://"+addr))
			printDetail("Press Ctrl+C to stop")
			return server.New(ws, c.Logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (host:port)")
	return cmd
}

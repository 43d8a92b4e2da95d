package cli

import (
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/themis/pkg/config"
	themisio "github.com/matzehuels/themis/pkg/io"
	"github.com/matzehuels/themis/pkg/resolve"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for themis.

Bash:
  $ source <(themis completion bash)

Zsh:
  $ themis completion zsh > "${fpath[1]}/_themis"

Fish:
  $ themis completion fish > ~/.config/fish/completions/themis.fish

PowerShell:
  PS> themis completion powershell | Out-String | Invoke-Expression

Placement IDs, blueprint names and node names complete from the current
configuration file.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

// completeDocument loads the document named by the command's --file flag or
// the last opened document, without recording it.
func (c *CLI) completeDocument() (*config.Document, bool) {
	path, err := c.documentPath(nil)
	if err != nil {
		return nil, false
	}
	doc, err := themisio.ImportFile(path)
	if err != nil {
		return nil, false
	}
	return doc, true
}

// completeInstanceIDs completes placement IDs for move.
func (c *CLI) completeInstanceIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	doc, ok := c.completeDocument()
	if !ok {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, inst := range resolve.Resolve(doc) {
		if id := inst.ID(); strings.HasPrefix(id, toComplete) {
			out = append(out, id+"\t"+inst.Label())
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeNodes completes node handles and names for detach.
func (c *CLI) completeNodes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	doc, ok := c.completeDocument()
	if !ok {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	config.Walk(doc.Hierarchy, func(id config.NodeID, path []*config.Node) {
		n := path[len(path)-1]
		if n.UseSlotsFrom != "" && strings.HasPrefix(string(id), toComplete) {
			out = append(out, string(id)+"\t"+n.Name)
		}
	})
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeTemplates completes blueprint names for preview.
func (c *CLI) completeTemplates(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	doc, ok := c.completeDocument()
	if !ok {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return doc.TemplateNames(), cobra.ShellCompDirectiveNoFileComp
}

// completeAllNodes completes every node handle, with the node name as
// description.
func (c *CLI) completeAllNodes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	doc, ok := c.completeDocument()
	if !ok {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	config.Walk(doc.Hierarchy, func(id config.NodeID, path []*config.Node) {
		if strings.HasPrefix(string(id), toComplete) {
			out = append(out, string(id)+"\t"+path[len(path)-1].Name)
		}
	})
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeLayouts completes layout names.
func (c *CLI) completeLayouts(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	doc, ok := c.completeDocument()
	if !ok {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return doc.LayoutNames(), cobra.ShellCompDirectiveNoFileComp
}

// completeLayoutFields completes the layout name, then a field key. For
// "layout set" the keys come from the field palette; "layout rm" only
// offers the keys the layout already places.
func (c *CLI) completeLayoutFields(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	doc, ok := c.completeDocument()
	if !ok {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	switch len(args) {
	case 0:
		return doc.LayoutNames(), cobra.ShellCompDirectiveNoFileComp
	case 1:
		return layoutFieldCandidates(doc, args[0], cmd.Name() == "rm"), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func layoutFieldCandidates(doc *config.Document, layout string, placedOnly bool) []string {
	offsets := doc.Offsets(layout)
	if placedOnly {
		return slices.Sorted(maps.Keys(offsets))
	}
	var out []string
	for _, key := range config.FieldPalette(doc) {
		if _, ok := offsets[key]; ok {
			key += "\tplaced"
		}
		out = append(out, key)
	}
	return out
}

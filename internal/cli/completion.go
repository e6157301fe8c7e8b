package cli

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/matzehuels/trackview/pkg/config"
	"github.com/matzehuels/trackview/pkg/genome"
)

// completionTimeout bounds data-source lookups made while completing.
const completionTimeout = 2 * time.Second

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for trackview.

Besides commands and flags, the scripts complete --chrom with the
chromosomes of the data source and --expand with the configured track ids,
so --data or --config must come first on the command line.

Bash:
  $ source <(trackview completion bash)

Zsh:
  $ trackview completion zsh > "${fpath[1]}/_trackview"

Fish:
  $ trackview completion fish > ~/.config/fish/completions/trackview.fish

PowerShell:
  PS> trackview completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// completeViewFlags registers dynamic completions for the flags added by
// viewFlags.register.
func (c *CLI) completeViewFlags(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("expand", c.completeTrackIDs)
	_ = cmd.RegisterFlagCompletionFunc("chrom", c.completeChromosomes)
}

// completeTrackIDs offers the ids of the configured tracks.
func (c *CLI) completeTrackIDs(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := c.loadConfig(viewFlags{})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	ids := lo.Map(cfg.Tracks, func(t config.Track, _ int) string { return t.ID })
	return withPrefix(ids, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeChromosomes offers the chromosomes of the configured data source.
func (c *CLI) completeChromosomes(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := c.loadConfig(viewFlags{})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, completionTimeout)
	defer cancel()

	src, err := c.openSource(ctx, cfg.Source)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer src.Close()
	chroms, err := src.Chromosomes(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	names := lo.Map(chroms, func(cs genome.ChromSize, _ int) string { return cs.Chrom })
	return withPrefix(names, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeFormats offers the render output formats.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return withPrefix([]string{formatPNG, formatSVG, formatPDF}, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func withPrefix(values []string, prefix string) []string {
	return lo.Filter(values, func(v string, _ int) bool { return strings.HasPrefix(v, prefix) })
}

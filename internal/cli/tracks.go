package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// tracksCommand creates the tracks command, which lists configured tracks
// without touching the data source.
func (c *CLI) tracksCommand() *cobra.Command {
	var view viewFlags

	cmd := &cobra.Command{
		Use:   "tracks",
		Short: "List the configured tracks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(view)
			if err != nil {
				return err
			}
			fmt.Println(trackTable(cfg.Tracks))
			printKeyValue("Source", cfg.Source.Kind)
			printKeyValue("Cache", cfg.Cache.Backend)
			printKeyValue("Backend", cfg.Browser.Backend)
			fmt.Println()
			printNextStep("Render them", "trackview render --sample <id> -o panel.png")
			return nil
		},
	}
	view.register(cmd)
	c.completeViewFlags(cmd)
	return cmd
}

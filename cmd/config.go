package cmd

import (
	"fmt"

	"github.com/brogergvhs/yymh/internal/config"
	"github.com/brogergvhs/yymh/internal/ui"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the yymh config profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, used, err := config.LoadMerged(config.Options{
			IgnoreConfig: flagIgnoreConfig,
			Debug:        flagDebug,
			BaseURL:      flagBaseURL,
		})
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Loaded config from:\n  %s\n\n", used)
		return ui.Table(w, []string{"Setting", "Value"}, cfg.Rows())
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

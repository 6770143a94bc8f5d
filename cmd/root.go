package cmd

import (
	"os"

	"github.com/brogergvhs/yymh/internal/ui"

	"github.com/spf13/cobra"
)

var (
	flagIgnoreConfig bool
	flagDebug        bool
	flagBaseURL      string
)

var rootCmd = &cobra.Command{
	Use:           "yymh",
	Short:         "Browse and download yymanhua chapters as CBZ",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagIgnoreConfig, "ignore-config", false, "ignore config and use only CLI flags")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "site origin (mirror), e.g. https://www.yymanhua.com")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.NewLogger(false).Errorf("%v\n", err)
		os.Exit(1)
	}
}

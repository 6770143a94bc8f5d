package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brogergvhs/yymh/internal/config"
	"github.com/brogergvhs/yymh/internal/ui"

	"github.com/spf13/cobra"
)

var flagAssumeYes bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the Default config",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaultPath := filepath.Join(config.ConfigsDir(), "Default.yaml")

		if _, err := os.Stat(defaultPath); err == nil {
			fmt.Println("Configuration already exists at:")
			fmt.Println("  ", defaultPath)
			fmt.Println("Use `yymh config reset` to recreate it.")
			return nil
		}

		fmt.Println("Default configuration:")
		if err := ui.Table(os.Stdout, []string{"Setting", "Value"}, config.DefaultConfig().Rows()); err != nil {
			return err
		}
		fmt.Println()

		if !flagAssumeYes {
			fmt.Printf("Create Default config at %s? [y/N]: ", defaultPath)
			resp, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			resp = strings.TrimSpace(strings.ToLower(resp))

			if resp != "y" && resp != "yes" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		path, err := config.InitDefaultConfig()
		if err != nil && !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("failed to write config file: %w", err)
		}

		fmt.Println("Config created at:", path)
		fmt.Println("This config is now active (label: Default).")

		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&flagAssumeYes, "yes", "y", false, "do not ask for confirmation")
	configCmd.AddCommand(configInitCmd)
}

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/brogergvhs/yymh/internal/config"

	"github.com/spf13/cobra"
)

var configAddCmd = &cobra.Command{
	Use:   "add [label] [source.yaml]",
	Short: "Create a new config, optionally copied from an existing YAML file",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var label string
		if len(args) > 0 {
			label = args[0]
		} else {
			fmt.Print("Enter label for new config: ")
			label, _ = bufio.NewReader(os.Stdin).ReadString('\n')
		}
		label = strings.TrimSpace(label)

		if len(args) == 2 {
			if err := config.AddConfig(label, args[1]); err != nil {
				return err
			}
			fmt.Printf("Imported %s as %q\n", args[1], label)
			return nil
		}

		path, err := config.CreateEmptyConfig(label)
		if err != nil {
			return err
		}

		fmt.Printf("Created new config: %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configAddCmd)
}

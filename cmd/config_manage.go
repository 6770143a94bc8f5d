package cmd

import (
	"errors"
	"fmt"

	"github.com/brogergvhs/yymh/internal/config"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var flagForce bool

// confirm asks a yes/no question; Ctrl-C and "n" both answer no.
func confirm(label string) bool {
	p := promptui.Prompt{Label: label, IsConfirm: true}
	_, err := p.Run()
	return err == nil
}

func pickProfile() (string, error) {
	list, err := config.ListConfigs()
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", errors.New("no configs available, run `yymh config init`")
	}

	items := make([]string, len(list))
	cursor := 0
	for i, c := range list {
		items[i] = c.Label
		if c.Active {
			items[i] += "  (active)"
			cursor = i
		}
	}

	prompt := promptui.Select{
		Label:     "Select config",
		Items:     items,
		CursorPos: cursor,
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return "", errors.New("selection cancelled")
	}
	return list[idx].Label, nil
}

var configSwitchCmd = &cobra.Command{
	Use:   "switch [label]",
	Short: "Switch to a different configuration profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var label string
		if len(args) == 1 {
			label = args[0]
		} else {
			var err error
			if label, err = pickProfile(); err != nil {
				return err
			}
		}

		if err := config.SwitchConfig(label); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Switched to:", label)
		return nil
	},
}

var configRenameCmd = &cobra.Command{
	Use:   "rename <old_label> <new_label>",
	Short: "Rename a config profile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.RenameConfig(args[0], args[1]); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Renamed config %q -> %q\n", args[0], args[1])
		return nil
	},
}

var configRemoveCmd = &cobra.Command{
	Use:   "remove <label>",
	Short: "Remove a config profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label := args[0]
		active, _ := config.CurrentLabel()

		if label == active && !flagForce && !confirm(fmt.Sprintf("Config %q is active. Remove it anyway", label)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}

		if err := config.RemoveConfig(label); err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Removed configuration %q\n", label)
		if label == active {
			fmt.Fprintln(w, "Fallback switched to: Default")
		}
		return nil
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the active config to default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		activePath, err := config.ActiveConfigPath()
		if err != nil {
			return fmt.Errorf("%w: run `yymh config init` first", err)
		}

		if !flagForce && !confirm("Overwrite "+activePath+" with defaults") {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}

		if err := config.SaveYAML(config.DefaultConfig(), activePath); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Reset active config: %s\n", activePath)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{configRemoveCmd, configResetCmd} {
		c.Flags().BoolVarP(&flagForce, "force", "f", false, "do not ask for confirmation")
	}

	configCmd.AddCommand(configSwitchCmd, configRenameCmd, configRemoveCmd, configResetCmd)
}

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/brogergvhs/yymh/internal/jsunpack"
	"github.com/brogergvhs/yymh/internal/providers/yymh"

	"github.com/spf13/cobra"
)

var (
	flagFormula bool
	flagRadix   int
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Inspect packed chapterimage.ashx responses offline",
}

var debugUnpackCmd = &cobra.Command{
	Use:   "unpack [file]",
	Short: "Unpack a packed script (stdin when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := readInput(cmd, args)
		if err != nil {
			return err
		}

		if !jsunpack.IsPacked(src) {
			return fmt.Errorf("%w: input is not a packed script", jsunpack.ErrMalformedPayload)
		}

		w := cmd.OutOrStdout()
		if flagFormula {
			u, err := yymh.ResolveDeferredImageURL(src)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, u)
			return err
		}

		out, err := jsunpack.Unpack(src)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, out)
		return err
	},
}

var debugPackCmd = &cobra.Command{
	Use:   "pack [file]",
	Short: "Pack a script the way the site does (fixture generation)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagRadix < 2 || flagRadix > 62 {
			return fmt.Errorf("radix must be between 2 and 62, got %d", flagRadix)
		}

		src, err := readInput(cmd, args)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), jsunpack.Pack(src, flagRadix))
		return err
	},
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		b, err := os.ReadFile(args[0])
		return string(b), err
	}

	b, err := io.ReadAll(cmd.InOrStdin())
	return string(b), err
}

func init() {
	debugUnpackCmd.Flags().BoolVar(&flagFormula, "formula", false, "evaluate the image formula and print the first image URL instead")
	debugPackCmd.Flags().IntVar(&flagRadix, "radix", 62, "token radix (2-62)")

	debugCmd.AddCommand(debugUnpackCmd, debugPackCmd)
	rootCmd.AddCommand(debugCmd)
}

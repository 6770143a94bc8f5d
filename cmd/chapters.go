package cmd

import (
	"fmt"
	"strconv"

	"github.com/brogergvhs/yymh/internal/chapters"
	"github.com/brogergvhs/yymh/internal/config"
	"github.com/brogergvhs/yymh/internal/ui"

	"github.com/spf13/cobra"
)

var flagListSkipLocked bool

var chaptersCmd = &cobra.Command{
	Use:   "chapters <manga-url>",
	Short: "List the chapters of a series in site order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(config.Options{})
		if err != nil {
			return err
		}

		raw, err := s.scraper.GetChapters(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		list := chapters.Filter(chapters.Wrap(raw), chapters.Selection{SkipLocked: flagListSkipLocked})

		rows := make([][]string, 0, len(list))
		for i, ch := range list {
			rows = append(rows, []string{strconv.Itoa(i + 1), ch.Label, ch.Title, ch.URL})
		}

		w := cmd.OutOrStdout()
		if err := ui.Table(w, []string{"#", "Label", "Title", "URL"}, rows); err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%d chapters\n", len(list))
		return err
	},
}

func init() {
	chaptersCmd.Flags().BoolVar(&flagListSkipLocked, "skip-locked", false, "hide paywalled chapters")
	rootCmd.AddCommand(chaptersCmd)
}

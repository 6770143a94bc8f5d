package cmd

import (
	"fmt"
	"strings"

	"github.com/brogergvhs/yymh/internal/config"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <manga-url>",
	Short: "Show series details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(config.Options{})
		if err != nil {
			return err
		}

		d, err := s.scraper.Details(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s\n\n", d.Title)
		fmt.Fprintf(w, "Author:  %s\n", d.Author)
		fmt.Fprintf(w, "Status:  %s\n", d.Status)
		fmt.Fprintf(w, "Genres:  %s\n", strings.Join(d.Genres, ", "))
		fmt.Fprintf(w, "Cover:   %s\n", d.Cover)
		fmt.Fprintf(w, "URL:     %s\n", d.URL)
		if d.Description != "" {
			fmt.Fprintf(w, "\n%s\n", d.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

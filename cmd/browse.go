package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/brogergvhs/yymh/internal/config"
	"github.com/brogergvhs/yymh/internal/providers"
	"github.com/brogergvhs/yymh/internal/ui"

	"github.com/spf13/cobra"
)

var (
	flagPage int
	flagLang int
)

type listFunc func(ctx context.Context, s *session, args []string) ([]providers.Manga, bool, error)

func newListCmd(use, short string, args cobra.PositionalArgs, fn listFunc) *cobra.Command {
	c := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(config.Options{Lang: flagLang})
			if err != nil {
				return err
			}

			list, next, err := fn(cmd.Context(), s, args)
			if err != nil {
				return err
			}

			return printMangaList(cmd.OutOrStdout(), list, next)
		},
	}
	c.Flags().IntVar(&flagPage, "page", 1, "result page")
	return c
}

func printMangaList(w io.Writer, list []providers.Manga, next bool) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}

	rows := make([][]string, len(list))
	for i, m := range list {
		rows[i] = []string{strconv.Itoa(i + 1), m.Title, m.URL}
	}
	if err := ui.Table(w, []string{"#", "Title", "URL"}, rows); err != nil {
		return err
	}

	if next {
		_, err := fmt.Fprintf(w, "More results: --page %d\n", flagPage+1)
		return err
	}
	return nil
}

func init() {
	popular := newListCmd("popular", "List the most popular series", cobra.NoArgs,
		func(ctx context.Context, s *session, _ []string) ([]providers.Manga, bool, error) {
			return s.scraper.Popular(ctx, flagPage)
		})

	latest := newListCmd("latest", "List recently updated series", cobra.NoArgs,
		func(ctx context.Context, s *session, _ []string) ([]providers.Manga, bool, error) {
			return s.scraper.Latest(ctx, flagPage)
		})

	search := newListCmd("search <query>", "Search series by title", cobra.MinimumNArgs(1),
		func(ctx context.Context, s *session, args []string) ([]providers.Manga, bool, error) {
			return s.scraper.Search(ctx, strings.Join(args, " "), flagPage)
		})
	search.Flags().IntVar(&flagLang, "lang", 0, "search language id (1 = traditional, 2 = simplified)")

	rootCmd.AddCommand(popular, latest, search)
}

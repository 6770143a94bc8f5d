package cmd

import (
	"strconv"

	"github.com/brogergvhs/yymh/internal/config"
	"github.com/brogergvhs/yymh/internal/providers/yymh"
	"github.com/brogergvhs/yymh/internal/ui"

	"github.com/spf13/cobra"
)

var flagResolve bool

var pagesCmd = &cobra.Command{
	Use:   "pages <chapter-url>",
	Short: "Show how a chapter's pages are fetched",
	Long: "Prints one descriptor per page: direct image URLs, or the signed\n" +
		"chapterimage.ashx requests of a deferred chapter. With --resolve the\n" +
		"deferred requests are fetched and decoded into image URLs.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(config.Options{})
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		w := cmd.OutOrStdout()

		if flagResolve {
			images, err := s.scraper.GetImages(ctx, args[0])
			if err != nil {
				return err
			}

			rows := make([][]string, len(images))
			for i, img := range images {
				rows[i] = []string{strconv.Itoa(img.Index), img.URL, img.Referer}
			}
			return ui.Table(w, []string{"Page", "Image", "Referer"}, rows)
		}

		pages, err := s.scraper.GetPages(ctx, args[0])
		if err != nil {
			return err
		}

		site := s.scraper.Site()
		rows := make([][]string, len(pages))
		for i, p := range pages {
			req := site.BuildImageFetchRequest(p)
			kind := "direct"
			if p.Kind == yymh.PageDeferred {
				kind = "deferred"
			}
			rows[i] = []string{strconv.Itoa(p.Index), kind, req.URL, req.Header.Get("Referer")}
		}
		return ui.Table(w, []string{"Page", "Kind", "Fetch", "Referer"}, rows)
	},
}

func init() {
	pagesCmd.Flags().BoolVar(&flagResolve, "resolve", false, "fetch deferred pages and print final image URLs")
	rootCmd.AddCommand(pagesCmd)
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/brogergvhs/yymh/internal/chapters"
	"github.com/brogergvhs/yymh/internal/config"
	"github.com/brogergvhs/yymh/internal/downloader"
	"github.com/brogergvhs/yymh/internal/providers/yymh"
	"github.com/brogergvhs/yymh/internal/ui"
	"github.com/brogergvhs/yymh/internal/util"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var (
	// selection
	flagURL        string
	flagChapter    string
	flagRange      string
	flagList       string
	flagPick       bool
	flagSkipLocked bool
	flagAllowExt   string

	// runtime
	flagOutput         string
	flagImageWorkers   int
	flagChapterWorkers int
	flagKeepFolders    bool
	flagDryRun         bool
	flagSkipBroken     bool
	flagInterval       int
	flagCloudflare     bool

	// headers/auth
	flagCookie     string
	flagCookieFile string
	flagUserAgent  string
)

func init() {
	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Download chapters and produce CBZ files. Uses the defaults from the selected config, overwritten by CLI flags",
		RunE:  runDownload,
	}

	f := downloadCmd.Flags()

	// selection
	f.StringVar(&flagURL, "url", "", "series page URL (absolute or site path, e.g. /123yy/)")
	f.StringVar(&flagChapter, "chapter", "", "download single chapter by label or position (e.g. 5 or 28.5)")
	f.StringVar(&flagRange, "range", "", "download range of chapters by position (e.g. 5-12 or 5-)")
	f.StringVar(&flagList, "list", "", "download specific chapter positions (e.g. 1,3,5)")
	f.BoolVar(&flagPick, "pick", false, "choose a chapter interactively")
	f.BoolVar(&flagSkipLocked, "skip-locked", false, "leave out paywalled chapters")
	f.StringVar(&flagAllowExt, "allow-ext", "", "allowed image extensions (e.g. \"webp|jpg|png\")")

	// runtime
	f.StringVar(&flagOutput, "output", "", "output folder for CBZ files")
	f.IntVar(&flagImageWorkers, "image-workers", 0, "parallel image downloads per chapter")
	f.IntVar(&flagChapterWorkers, "chapter-workers", 0, "parallel chapter downloads")
	f.BoolVar(&flagKeepFolders, "keep-folders", false, "keep temporary folders")
	f.BoolVar(&flagDryRun, "dry-run", false, "show what would be downloaded, don't download")
	f.BoolVar(&flagSkipBroken, "skip-broken", false, "skip failed images instead of failing the whole chapter")
	f.IntVar(&flagInterval, "interval", 0, "minimum milliseconds between requests to the site")
	f.BoolVar(&flagCloudflare, "cloudflare", false, "use the Cloudflare-friendly transport")

	// headers/auth
	f.StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	f.StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	f.StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, _ []string) error {
	s, err := openSession(config.Options{
		Output:            flagOutput,
		ImageWorkers:      flagImageWorkers,
		ChapterWorkers:    flagChapterWorkers,
		KeepFolders:       flagKeepFolders,
		DefaultURL:        flagURL,
		DefaultRange:      flagRange,
		DefaultList:       flagList,
		SkipLocked:        flagSkipLocked,
		Cookie:            flagCookie,
		CookieFile:        flagCookieFile,
		UserAgent:         flagUserAgent,
		RequestIntervalMS: flagInterval,
		CloudflareBypass:  flagCloudflare,
		SkipBroken:        flagSkipBroken,
		AllowExt:          splitExt(flagAllowExt),
	})
	if err != nil {
		return err
	}

	cfg, log := s.cfg, s.log
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Config file: %s\n", s.used)
	if cfg.Debug {
		if err := ui.Table(out, []string{"Setting", "Value"}, cfg.Rows()); err != nil {
			return err
		}
	}

	if cfg.DefaultURL == "" {
		return errors.New("missing --url and no default_url in config")
	}
	if err := os.MkdirAll(cfg.Output, 0755); err != nil {
		return fmt.Errorf("cannot create output folder: %w", err)
	}

	ctx, stop := util.InterruptContext(cmd.Context())
	defer stop()

	raw, err := s.scraper.GetChapters(ctx, cfg.DefaultURL)
	if err != nil {
		return err
	}
	all := chapters.Wrap(raw)
	log.Infof("Found %d chapters on the site.\n", len(all))

	selected, err := selectChapters(all, cfg)
	if err != nil {
		return err
	}

	if flagDryRun {
		fmt.Fprintf(out, "Dry-run: %d chapters selected.\n\n", len(selected))
		rows := make([][]string, len(selected))
		for i, ch := range selected {
			rows[i] = []string{fmt.Sprint(i + 1), ch.Label, ch.Title, ch.OutputCBZ()}
		}
		return ui.Table(out, []string{"#", "Label", "Title", "File"}, rows)
	}

	stats := &ui.Stats{}
	start := time.Now()

	dl := downloader.New(s.client, downloader.Options{
		Workers:    cfg.ImageWorkers,
		SkipBroken: cfg.SkipBroken,
		AllowExt:   cfg.AllowExt,
		Log:        log,
	})

	pm := ui.NewProgress(out)

	sem := make(chan struct{}, cfg.ChapterWorkers)
	var wg sync.WaitGroup

loop:
	for _, ch := range selected {
		select {
		case <-ctx.Done():
			break loop
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			downloadChapter(ctx, s, dl, pm, stats, ch)
		}()
	}

	wg.Wait()
	pm.Wait()

	if ctx.Err() != nil {
		removed, _ := util.CleanupUnfinishedTempFolders(cfg.Output)
		for _, p := range removed {
			log.Infof("Removed %s\n", p)
		}
		util.RemoveIfEmpty(cfg.Output)
		return errors.New("interrupted")
	}

	fmt.Fprintln(out)
	if err := stats.Summary(out); err != nil {
		return err
	}
	fmt.Fprintf(out, "Time: %s\n", time.Since(start).Round(time.Second))

	if n := stats.Failed.Load(); n > 0 {
		return fmt.Errorf("%d chapters failed", n)
	}
	return nil
}

func downloadChapter(
	ctx context.Context,
	s *session,
	dl *downloader.Downloader,
	pm *ui.Progress,
	stats *ui.Stats,
	ch chapters.Chapter,
) {
	cfg, log := s.cfg, s.log

	images, err := s.scraper.GetImages(ctx, ch.URL)
	if err != nil {
		var pay *yymh.PaymentRequiredError
		if errors.As(err, &pay) {
			stats.Locked.Add(1)
			log.Warnf("Chapter %s is paywalled: %s\n", ch.Label, pay.Message)
			return
		}

		stats.Failed.Add(1)
		log.Errorf("No images for %s (%s): %v\n", ch.Title, ch.Label, err)
		return
	}

	bar := pm.Chapter("Ch." + ch.Label)

	tmpFolder := filepath.Join(cfg.Output, ch.FolderName())
	cbzOut := ch.OutputCBZPath(cfg.Output)

	files, bytes, err := dl.Download(ctx, images, tmpFolder, bar)
	if err != nil {
		bar.Fail()
		stats.Failed.Add(1)
		log.Errorf("Chapter %s failed: %v\n", ch.Label, err)
		util.CleanupFolder(tmpFolder)
		return
	}

	if err := util.CreateCBZ(files, cbzOut); err != nil {
		bar.Fail()
		stats.Failed.Add(1)
		log.Errorf("CBZ for %s failed: %v\n", ch.Label, err)
		util.CleanupFolder(tmpFolder)
		return
	}

	if !cfg.KeepFolders {
		util.CleanupFolder(tmpFolder)
	}

	bar.Done()
	stats.Chapters.Add(1)
	stats.Images.Add(int64(len(files)))
	stats.Bytes.Add(bytes)
}

func selectChapters(all []chapters.Chapter, cfg *config.Config) ([]chapters.Chapter, error) {
	if flagPick {
		ch, err := pickChapter(all)
		if err != nil {
			return nil, err
		}
		return []chapters.Chapter{ch}, nil
	}

	selected := chapters.Filter(all, chapters.Selection{
		Chapter:    flagChapter,
		Range:      cfg.DefaultRange,
		List:       cfg.DefaultList,
		SkipLocked: cfg.SkipLocked,
	})
	if len(selected) == 0 {
		if flagChapter != "" {
			return nil, fmt.Errorf("chapter %q not found", flagChapter)
		}
		return nil, errors.New("no chapters selected")
	}
	return selected, nil
}

func pickChapter(all []chapters.Chapter) (chapters.Chapter, error) {
	if len(all) == 0 {
		return chapters.Chapter{}, errors.New("no chapters available")
	}

	items := make([]string, len(all))
	for i, ch := range all {
		items[i] = fmt.Sprintf("%s  [%s]", ch.Title, ch.Label)
	}

	prompt := promptui.Select{
		Label: "Select chapter",
		Items: items,
		Size:  15,
		Searcher: func(input string, index int) bool {
			return strings.Contains(strings.ToLower(items[index]), strings.ToLower(input))
		},
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return chapters.Chapter{}, fmt.Errorf("selection cancelled")
	}
	return all[idx], nil
}

func splitExt(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '|' || r == ',' || r == ' '
	})

	var out []string
	for _, f := range fields {
		f = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(f), "."))
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

package cmd

import (
	"net/http"
	"time"

	"github.com/brogergvhs/yymh/internal/config"
	"github.com/brogergvhs/yymh/internal/providers/yymh"
	"github.com/brogergvhs/yymh/internal/ui"
	"github.com/brogergvhs/yymh/internal/util"
)

type session struct {
	cfg     *config.Config
	used    string
	log     *ui.Logger
	scraper *yymh.Scraper
	client  *http.Client
}

// openSession loads the merged config and builds the HTTP client and
// scraper every network command shares.
func openSession(opts config.Options) (*session, error) {
	opts.IgnoreConfig = flagIgnoreConfig
	opts.Debug = opts.Debug || flagDebug
	if opts.BaseURL == "" {
		opts.BaseURL = flagBaseURL
	}

	cfg, used, err := config.LoadMerged(opts)
	if err != nil {
		return nil, err
	}

	log := ui.NewLogger(cfg.Debug)
	log.Debugf("Config: %s\n", used)

	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:          30 * time.Second,
		UserAgent:        util.PickUserAgent(cfg.UserAgent),
		Cookie:           cfg.Cookie,
		CookieFile:       cfg.CookieFile,
		CloudflareBypass: cfg.CloudflareBypass,
		DebugLogger:      log,
	})
	if err != nil {
		return nil, err
	}

	scr := yymh.NewScraper(client, yymh.Options{
		BaseURL:  cfg.BaseURL,
		Lang:     cfg.Lang,
		Workers:  cfg.ImageWorkers,
		Interval: cfg.RequestInterval(),
		Log:      log,
	})

	return &session{cfg: cfg, used: used, log: log, scraper: scr, client: client}, nil
}

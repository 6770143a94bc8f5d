package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Output         string   `yaml:"output"`
	ImageWorkers   int      `yaml:"image_workers"`
	ChapterWorkers int      `yaml:"chapter_workers"`
	KeepFolders    bool     `yaml:"keep_folders"`
	Debug          bool     `yaml:"debug"`
	AllowExt       []string `yaml:"allow_ext"`

	BaseURL      string `yaml:"base_url"`
	Lang         int    `yaml:"lang"`
	DefaultURL   string `yaml:"default_url"`
	DefaultRange string `yaml:"default_range"`
	DefaultList  string `yaml:"default_list"`
	SkipLocked   bool   `yaml:"skip_locked"`

	Cookie            string `yaml:"cookie"`
	CookieFile        string `yaml:"cookie_file"`
	UserAgent         string `yaml:"user_agent"`
	RequestIntervalMS int    `yaml:"request_interval_ms"`
	CloudflareBypass  bool   `yaml:"cloudflare_bypass"`

	SkipBroken bool `yaml:"skip_broken"`
}

// Options are command line overrides. Zero values leave the file value alone.
type Options struct {
	IgnoreConfig      bool
	Debug             bool
	Output            string
	ImageWorkers      int
	ChapterWorkers    int
	KeepFolders       bool
	BaseURL           string
	Lang              int
	DefaultURL        string
	DefaultRange      string
	DefaultList       string
	SkipLocked        bool
	Cookie            string
	CookieFile        string
	UserAgent         string
	RequestIntervalMS int
	CloudflareBypass  bool
	SkipBroken        bool
	AllowExt          []string
}

func DefaultConfig() *Config {
	return &Config{
		Output:            ".",
		ImageWorkers:      5,
		ChapterWorkers:    2,
		BaseURL:           "https://www.yymanhua.com",
		Lang:              1,
		RequestIntervalMS: 250,
		AllowExt:          []string{"jpg", "jpeg", "png", "webp"},
	}
}

func (c *Config) RequestInterval() time.Duration {
	return time.Duration(c.RequestIntervalMS) * time.Millisecond
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadMerged reads the active profile, applies opts on top and fills the
// remaining gaps with defaults. The second result names where the values
// came from.
func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if errors.Is(err, ErrNoConfig) || activePath == "" {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `yymh config init` to create an actual config\n", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, nil
}

func mergeConfig(c *Config, o Options) {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, v int) {
		if v != 0 {
			*dst = v
		}
	}
	setBool := func(dst *bool, v bool) {
		if v {
			*dst = true
		}
	}

	setString(&c.Output, o.Output)
	setInt(&c.ImageWorkers, o.ImageWorkers)
	setInt(&c.ChapterWorkers, o.ChapterWorkers)
	setBool(&c.KeepFolders, o.KeepFolders)
	setBool(&c.Debug, o.Debug)
	setString(&c.BaseURL, o.BaseURL)
	setInt(&c.Lang, o.Lang)
	setString(&c.DefaultURL, o.DefaultURL)
	setString(&c.DefaultRange, o.DefaultRange)
	setString(&c.DefaultList, o.DefaultList)
	setBool(&c.SkipLocked, o.SkipLocked)
	setString(&c.Cookie, o.Cookie)
	setString(&c.CookieFile, o.CookieFile)
	setString(&c.UserAgent, o.UserAgent)
	setInt(&c.RequestIntervalMS, o.RequestIntervalMS)
	setBool(&c.CloudflareBypass, o.CloudflareBypass)
	setBool(&c.SkipBroken, o.SkipBroken)

	if len(o.AllowExt) > 0 {
		c.AllowExt = o.AllowExt
	}
}

func normalizeDefaults(c *Config) {
	def := DefaultConfig()

	if c.Output == "" {
		c.Output = def.Output
	}
	if c.ImageWorkers <= 0 {
		c.ImageWorkers = def.ImageWorkers
	}
	if c.ChapterWorkers <= 0 {
		c.ChapterWorkers = def.ChapterWorkers
	}
	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	if c.Lang == 0 {
		c.Lang = def.Lang
	}
	if c.RequestIntervalMS < 0 {
		c.RequestIntervalMS = 0
	}
}

// Rows lists the settings worth showing, cookies excluded.
func (c *Config) Rows() [][]string {
	rows := [][]string{
		{"output", c.Output},
		{"image_workers", strconv.Itoa(c.ImageWorkers)},
		{"chapter_workers", strconv.Itoa(c.ChapterWorkers)},
		{"base_url", c.BaseURL},
		{"lang", strconv.Itoa(c.Lang)},
		{"request_interval_ms", strconv.Itoa(c.RequestIntervalMS)},
	}

	add := func(key, val string) {
		if val != "" && val != "false" {
			rows = append(rows, []string{key, val})
		}
	}

	add("keep_folders", strconv.FormatBool(c.KeepFolders))
	add("debug", strconv.FormatBool(c.Debug))
	add("default_url", c.DefaultURL)
	add("default_range", c.DefaultRange)
	add("default_list", c.DefaultList)
	add("skip_locked", strconv.FormatBool(c.SkipLocked))
	add("cookie_file", c.CookieFile)
	add("user_agent", c.UserAgent)
	add("cloudflare_bypass", strconv.FormatBool(c.CloudflareBypass))
	add("skip_broken", strconv.FormatBool(c.SkipBroken))
	add("allow_ext", strings.Join(c.AllowExt, ", "))

	return rows
}

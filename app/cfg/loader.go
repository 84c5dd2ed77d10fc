package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Application configuration
	Port    string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://feeds.example.com)"`
	DataDir string `long:"data-dir" env:"DATA_DIR" default:"./data" description:"Directory for generated feed documents"`
	DBPath  string `long:"db-path" env:"DB_PATH" default:"./data/socialrss.db" description:"Path to the SQLite database file"`

	// Background processing
	WorkerCount       int `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for feed refreshing"`
	SchedulerInterval int `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"60" description:"Scheduler interval in seconds"`
	StaleAgeDays      int `long:"stale-age-days" env:"STALE_AGE_DAYS" default:"30" description:"Feeds without updates for this many days are removed"`

	// Scraping behavior
	UserAgent       string  `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36" description:"User agent string for outbound requests"`
	RequestDelay    float64 `long:"request-delay" env:"REQUEST_DELAY" default:"2" description:"Politeness delay before each outbound request in seconds"`
	RequestTimeout  int     `long:"request-timeout" env:"REQUEST_TIMEOUT" default:"30" description:"Per-request timeout in seconds"`
	DefaultMaxPosts int     `long:"max-posts" env:"MAX_POSTS" default:"10" description:"Default number of posts per feed"`

	// Feed defaults
	UpdateInterval int    `long:"update-interval" env:"UPDATE_INTERVAL" default:"60" description:"Default feed update interval in minutes"`
	FeedLanguage   string `long:"feed-language" env:"FEED_LANGUAGE" default:"en" description:"Language reported in generated feeds"`
	AuthorName     string `long:"author-name" env:"AUTHOR_NAME" default:"Social RSS" description:"Author name reported in generated feeds"`
	AuthorEmail    string `long:"author-email" env:"AUTHOR_EMAIL" default:"feeds@localhost" description:"Author email reported in generated feeds"`

	// Access control
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for mutating endpoints (optional)"`

	// Application metadata
	SeedsFile string `long:"seeds-file" env:"SEEDS_FILE" description:"YAML file with source URLs registered at startup (optional)"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Port:              raw.Port,
		BaseUrl:           raw.BaseUrl,
		DataDir:           raw.DataDir,
		DBPath:            raw.DBPath,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		StaleAgeDays:      raw.StaleAgeDays,
		UserAgent:         raw.UserAgent,
		RequestDelay:      raw.RequestDelay,
		RequestTimeout:    raw.RequestTimeout,
		DefaultMaxPosts:   raw.DefaultMaxPosts,
		UpdateInterval:    raw.UpdateInterval,
		FeedLanguage:      raw.FeedLanguage,
		AuthorName:        raw.AuthorName,
		AuthorEmail:       raw.AuthorEmail,
		APIAccessKey:      raw.APIAccessKey,
		SeedsFile:         raw.SeedsFile,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set replaces the global configuration. Intended for tests.
func Set(cfg *Cfg) {
	globalCfg = cfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}

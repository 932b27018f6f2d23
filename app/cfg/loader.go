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
	// Database configuration
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"Database host"`
	DBPort     string `long:"db-port" env:"DB_PORT" default:"5432" description:"Database port"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"monitor_user" description:"Database user"`
	DBPassword string `long:"db-password" env:"DB_PASSWORD" default:"monitor_password" description:"Database password (required)" required:"true"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"conecta_monitor" description:"Database name"`

	// Application configuration
	MonitorsDir       string `long:"monitors-dir" env:"MONITORS_DIR" default:"./monitors" description:"Directory containing monitor configuration files"`
	RulesFile         string `long:"rules-file" env:"RULES_FILE" description:"Path to a YAML keyword rules file (optional, built-in rules used when unset)"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for monitor processing"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"30" description:"Scheduler interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Feed provider configuration
	RelayURL     string `long:"relay-url" env:"RELAY_URL" default:"https://api.allorigins.win/get" description:"CORS relay endpoint used to fetch the provider feed"`
	FeedBaseURL  string `long:"feed-base-url" env:"FEED_BASE_URL" default:"https://news.google.com/rss/search" description:"Feed provider search endpoint"`
	FeedLanguage string `long:"feed-language" env:"FEED_LANGUAGE" default:"pt-BR" description:"Feed provider hl parameter"`
	FeedCountry  string `long:"feed-country" env:"FEED_COUNTRY" default:"BR" description:"Feed provider gl parameter"`
	FeedEdition  string `long:"feed-edition" env:"FEED_EDITION" default:"BR:pt-419" description:"Feed provider ceid parameter"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Conecta Monitor/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/Sao_Paulo)"`
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
		DBHost:            raw.DBHost,
		DBPort:            raw.DBPort,
		DBUser:            raw.DBUser,
		DBPassword:        raw.DBPassword,
		DBName:            raw.DBName,
		MonitorsDir:       raw.MonitorsDir,
		RulesFile:         raw.RulesFile,
		Port:              raw.Port,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		APIAccessKey:      raw.APIAccessKey,
		RelayURL:          raw.RelayURL,
		FeedBaseURL:       raw.FeedBaseURL,
		FeedLanguage:      raw.FeedLanguage,
		FeedCountry:       raw.FeedCountry,
		FeedEdition:       raw.FeedEdition,
		UserAgent:         raw.UserAgent,
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

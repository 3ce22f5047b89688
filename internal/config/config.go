package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"
)

// Duration is a time.Duration written as "90s" or "5m" in the config file
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Config struct {
	Server       ServerConfig       `toml:"server"`
	Log          LogConfig          `toml:"log"`
	Store        StoreConfig        `toml:"store"`
	Bidding      BiddingConfig      `toml:"bidding"`
	Escalation   EscalationConfig   `toml:"escalation"`
	Settlement   SettlementConfig   `toml:"settlement"`
	Notification NotificationConfig `toml:"notification"`
	Invoice      InvoiceConfig      `toml:"invoice"`
	Live         LiveConfig         `toml:"live"`
}

type ServerConfig struct {
	Port            string   `toml:"port"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// Addr is the listen address for the HTTP server
func (s ServerConfig) Addr() string {
	return ":" + strings.TrimPrefix(s.Port, ":")
}

type LogConfig struct {
	Level string `toml:"level"`
}

type StoreConfig struct {
	Driver   string `toml:"driver"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
	// Seed loads the demo auctions on start
	Seed bool `toml:"seed"`
}

type BiddingConfig struct {
	MaxRetries int `toml:"max_retries"`
}

type EscalationConfig struct {
	// MaxRounds caps a cascade below the bound derived from the budgets. 0 leaves it uncapped.
	MaxRounds int             `toml:"max_rounds"`
	Increment decimal.Decimal `toml:"increment"`
}

type SettlementConfig struct {
	Interval           Duration `toml:"interval"`
	Workers            int      `toml:"workers"`
	MaxAuctionsPerTick int      `toml:"max_auctions_per_tick"`
}

type NotificationConfig struct {
	Driver       string `toml:"driver"`
	ResendAPIKey string `toml:"resend_api_key"`
	From         string `toml:"from"`
	Concurrency  int    `toml:"concurrency"`
	// Recipients maps participant ids to email addresses for participants the store does not know
	Recipients map[string]string `toml:"recipients"`
}

type InvoiceConfig struct {
	Driver        string   `toml:"driver"`
	Bucket        string   `toml:"bucket"`
	Region        string   `toml:"region"`
	Endpoint      string   `toml:"endpoint"`
	Key           string   `toml:"key"`
	Secret        string   `toml:"secret"`
	Prefix        string   `toml:"prefix"`
	PresignTTL    Duration `toml:"presign_ttl"`
	RenderTimeout Duration `toml:"render_timeout"`
}

type LiveConfig struct {
	BufferSize int `toml:"buffer_size"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Server: ServerConfig{Port: "8080", ShutdownTimeout: Duration(10 * time.Second)},
		Log:    LogConfig{Level: "info"},
		Store: StoreConfig{
			Driver:   "memory",
			MongoURI: "mongodb://localhost:27017",
			Database: "bidding",
			Seed:     true,
		},
		Bidding:    BiddingConfig{MaxRetries: 3},
		Escalation: EscalationConfig{Increment: decimal.NewFromInt(1)},
		Settlement: SettlementConfig{
			Interval:           Duration(time.Minute),
			Workers:            4,
			MaxAuctionsPerTick: 500,
		},
		Notification: NotificationConfig{Driver: "log", From: "auctions@example.com", Concurrency: 4},
		Invoice: InvoiceConfig{
			Driver:        "none",
			Region:        "us-east-1",
			Prefix:        "invoices",
			PresignTTL:    Duration(15 * time.Minute),
			RenderTimeout: Duration(30 * time.Second),
		},
		Live: LiveConfig{BufferSize: 16},
	}
}

// Load reads the TOML file at path over the defaults. An empty path yields the defaults.
// PORT, RESEND_API_KEY and MONGO_URI override the file when set.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config: failed to open %s: %w", path, err)
		}
		defer file.Close()

		if err := toml.NewDecoder(file).DisallowUnknownFields().Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, fmt.Errorf("config: %s: %s", path, strict.String())
			}
			return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
		}
	}

	if p := os.Getenv("PORT"); p != "" {
		cfg.Server.Port = p
	}
	if key := os.Getenv("RESEND_API_KEY"); key != "" {
		cfg.Notification.ResendAPIKey = key
	}
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		cfg.Store.MongoURI = uri
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown drivers and settings the chosen drivers cannot run without
func (c Config) Validate() error {
	switch c.Store.Driver {
	case "memory":
	case "mongo":
		if c.Store.MongoURI == "" || c.Store.Database == "" {
			return errors.New("config: store.mongo_uri and store.database are required for the mongo driver")
		}
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}

	switch c.Notification.Driver {
	case "log":
	case "resend":
		if c.Notification.ResendAPIKey == "" || c.Notification.From == "" {
			return errors.New("config: notification.resend_api_key and notification.from are required for the resend driver")
		}
	default:
		return fmt.Errorf("config: unknown notification driver %q", c.Notification.Driver)
	}

	switch c.Invoice.Driver {
	case "none":
	case "pdf":
		if c.Invoice.Bucket == "" {
			return errors.New("config: invoice.bucket is required for the pdf driver")
		}
	default:
		return fmt.Errorf("config: unknown invoice driver %q", c.Invoice.Driver)
	}

	if c.Escalation.MaxRounds < 0 {
		return errors.New("config: escalation.max_rounds must not be negative")
	}
	if c.Escalation.Increment.IsNegative() || c.Escalation.Increment.IsZero() {
		return errors.New("config: escalation.increment must be positive")
	}
	return nil
}

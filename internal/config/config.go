package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"TrendRadar/internal/strategy"
)

// DefaultTargets is the built-in watch list of large Taiwan listings.
var DefaultTargets = []string{
	"2330.TW", "2317.TW", "2454.TW", "2303.TW", "2881.TW", "2308.TW", "2882.TW", "2891.TW",
	"2002.TW", "2412.TW", "2886.TW", "2884.TW", "1216.TW", "2892.TW", "5880.TW", "2885.TW",
	"2382.TW", "2301.TW", "2880.TW", "3711.TW", "2345.TW", "2883.TW", "2887.TW", "1101.TW",
	"5876.TW", "2357.TW", "2890.TW", "2327.TW", "3008.TW", "2207.TW", "2379.TW", "2395.TW",
	"3045.TW", "5871.TW", "2912.TW", "2603.TW", "1303.TW", "1301.TW", "2353.TW", "4938.TW",
	"1326.TW", "1402.TW", "2801.TW", "2105.TW", "1102.TW", "2408.TW", "9910.TW", "2354.TW",
	"6669.TW", "3037.TW", "2645.TW", "0050.TW",
}

// Config holds all application configuration.
type Config struct {
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	} `yaml:"log"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id" validate:"required_with=BotToken"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider       string        `yaml:"provider" default:"yahoo" validate:"oneof=yahoo rest mock"`
		BaseURL        string        `yaml:"base_url" validate:"required_if=Provider rest"`
		APIKey         string        `yaml:"api_key"`
		HistoryDays    int           `yaml:"history_days" default:"120" validate:"min=60,max=1000"`
		Timeout        time.Duration `yaml:"timeout" default:"30s"`
		RequestsPerSec float64       `yaml:"requests_per_sec" default:"2" validate:"gt=0"`
		MaxRetries     uint64        `yaml:"max_retries" default:"3"`
	} `yaml:"data_source"`
	Cache struct {
		Backend       string        `yaml:"backend" default:"memory" validate:"oneof=none memory redis"`
		TTL           time.Duration `yaml:"ttl" default:"15m"`
		RedisAddr     string        `yaml:"redis_addr" validate:"required_if=Backend redis"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
	} `yaml:"cache"`
	Scan struct {
		Targets           []string `yaml:"targets"`
		Concurrency       int      `yaml:"concurrency" default:"4" validate:"min=1,max=32"`
		IncludeOverheated bool     `yaml:"include_overheated" default:"true"`
	} `yaml:"scan"`
	Schedule struct {
		ScanCron   string `yaml:"scan_cron" default:"0 40 13 * * 1-5"`
		RunOnStart bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Rules strategy.Rules `yaml:"rules"`
	API   struct {
		Addr string `yaml:"addr" default:":8080"`
	} `yaml:"api"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" default:"data/trendradar.db"`
	} `yaml:"database"`
	Glossary struct {
		Path string `yaml:"path"`
	} `yaml:"glossary"`
	Proxy string `yaml:"proxy"`
}

var validate = validator.New()

// Load reads config from a YAML file, then applies .env and environment
// variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Defaults go in first so YAML can switch boolean defaults off.
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	applyEnv(cfg)

	if len(cfg.Scan.Targets) == 0 {
		cfg.Scan.Targets = append([]string(nil), DefaultTargets...)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
		cfg.Cache.Backend = "redis"
	}
	if v := os.Getenv("SCAN_TARGETS"); v != "" {
		cfg.Scan.Targets = splitList(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("CRON_SCAN"); v != "" {
		cfg.Schedule.ScanCron = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// TelegramEnabled reports whether a bot is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != ""
}

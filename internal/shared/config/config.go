package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/reshetovitsme/media-relay-bot/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

type Config struct {
	TelegramBotToken   string        `koanf:"telegram_bot_token"`
	TelegramAPIURL     string        `koanf:"telegram_api_url"`
	APIID              int           `koanf:"api_id"`
	APIHash            string        `koanf:"api_hash"`
	SessionPath        string        `koanf:"session_path"`
	LogChannelID       int64         `koanf:"log_channel_id"`
	LogsFile           string        `koanf:"logs_file"`
	DownloadDir        string        `koanf:"download_dir"`
	HTTPPort           string        `koanf:"http_port"`
	BatchDelay         time.Duration `koanf:"batch_delay"`
	ProgressInterval   time.Duration `koanf:"progress_interval"`
	MaxFileSize        int64         `koanf:"max_file_size"`
	PremiumMaxFileSize int64         `koanf:"premium_max_file_size"`
	UpdateChannelURL   string        `koanf:"update_channel_url"`
	AllowedUsers       []int64       `koanf:"-"`
	AppEnv             AppEnv        `koanf:"-"`
}

// Options controls where Load looks for configuration.
type Options struct {
	// ConfigFile is an explicit config path. When empty the working
	// directory is searched for config.{yaml,yml,json,toml}.
	ConfigFile string
	// EnvFile is a dotenv file loaded into the process environment
	// before environment variables are read. Missing files are ignored.
	EnvFile string
}

func Load(opts Options) (*Config, error) {
	k := koanf.New(".")

	envFile := lo.Ternary(opts.EnvFile != "", opts.EnvFile, ".env")
	if err := godotenv.Load(envFile); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return nil, oops.With("env_file", envFile).Wrap(err)
	}

	configFile, found := opts.ConfigFile, opts.ConfigFile != ""
	if !found {
		configFiles := []string{
			"config.yaml",
			"config.yml",
			"config.json",
			"config.toml",
		}

		configFile, found = lo.Find(configFiles, func(file string) bool {
			_, err := os.Stat(file)
			return err == nil
		})
	}

	if found {
		var parser koanf.Parser
		ext := filepath.Ext(configFile)

		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = toml.Parser()
		default:
			return nil, oops.Errorf("unsupported config file extension: %s", ext)
		}

		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.With("config_file", configFile).Wrap(err)
		}
	}

	// Environment variables override config file values: API_HASH -> api_hash
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	defaults := map[string]any{
		"telegram_api_url":      "https://api.telegram.org",
		"session_path":          "./data/user.session",
		"logs_file":             "logs.txt",
		"download_dir":          "./downloads",
		"http_port":             "8080",
		"batch_delay":           "3s",
		"progress_interval":     "5s",
		"max_file_size":         int64(2 << 30),
		"premium_max_file_size": int64(4 << 30),
		"update_channel_url":    "https://t.me/itsSmartDev",
		"app_env":               "production",
	}
	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	// koanf returns a string from env vars and a slice from config files
	if allowedUsers := k.Get("allowed_users"); allowedUsers != nil {
		switch v := allowedUsers.(type) {
		case string:
			cfg.AllowedUsers = ParseAllowedUsers(v)
		case []interface{}:
			cfg.AllowedUsers = lo.FilterMap(v, func(item interface{}, _ int) (int64, bool) {
				switch val := item.(type) {
				case int64:
					return val, true
				case int:
					return int64(val), true
				case float64:
					return int64(val), true
				default:
					return 0, false
				}
			})
		}
	}

	if appEnv, err := ParseAppEnv(k.String("app_env")); err == nil {
		cfg.AppEnv = appEnv
	} else {
		cfg.AppEnv = AppEnvProduction
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks required fields and clamps values that would break the
// batch throttle or the size policy.
func (c *Config) Validate() error {
	if c.TelegramBotToken == "" {
		return errors.ErrMissingBotToken
	}
	if c.APIID == 0 || c.APIHash == "" {
		return errors.ErrMissingAPICredentials
	}
	if c.BatchDelay < 0 {
		return oops.With("batch_delay", c.BatchDelay).Errorf("batch delay must not be negative")
	}
	if c.PremiumMaxFileSize < c.MaxFileSize {
		c.PremiumMaxFileSize = c.MaxFileSize
	}
	return nil
}

// ParseAllowedUsers parses comma-separated user IDs string into []int64
func ParseAllowedUsers(s string) []int64 {
	if s == "" {
		return []int64{}
	}
	parts := strings.Split(s, ",")
	return lo.FilterMap(parts, func(part string, _ int) (int64, bool) {
		part = strings.TrimSpace(part)
		if part == "" {
			return 0, false
		}
		var id int64
		if _, err := fmt.Sscanf(part, "%d", &id); err == nil {
			return id, true
		}
		return 0, false
	})
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. SOCIALPULSE_LISTEN_ADDR.
const EnvPrefix = "SOCIALPULSE"

// Global configuration structure.
type Global struct {
	DatasetPath  string `mapstructure:"dataset_path" yaml:"dataset_path"`
	Delimiter    string `mapstructure:"delimiter" yaml:"delimiter" validate:"delimiter"`
	TopCountries int    `mapstructure:"top_countries" yaml:"top_countries" validate:"gte=0,lte=500"`
	ViewsDir     string `mapstructure:"views_dir" yaml:"views_dir"`

	// Charts
	ChartWidth  int `mapstructure:"chart_width" yaml:"chart_width" validate:"gte=200,lte=4000"`
	ChartHeight int `mapstructure:"chart_height" yaml:"chart_height" validate:"gte=200,lte=4000"`

	// HTTP server
	ListenAddr      string `mapstructure:"listen_addr" yaml:"listen_addr" validate:"required,hostname_port"`
	GinMode         string `mapstructure:"gin_mode" yaml:"gin_mode" validate:"oneof=debug release test"`
	ReadTimeoutSec  int    `mapstructure:"read_timeout_sec" yaml:"read_timeout_sec" validate:"gte=1"`
	WriteTimeoutSec int    `mapstructure:"write_timeout_sec" yaml:"write_timeout_sec" validate:"gte=1"`

	// Logging
	LogLevel      string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFile       string `mapstructure:"log_file" yaml:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb" yaml:"log_max_size_mb" validate:"gte=1"`
	LogMaxBackups int    `mapstructure:"log_max_backups" yaml:"log_max_backups" validate:"gte=0"`
	LogMaxAgeDays int    `mapstructure:"log_max_age_days" yaml:"log_max_age_days" validate:"gte=0"`
}

// Keys lists every setting name in display order.
var Keys = []string{
	"dataset_path", "delimiter", "top_countries", "views_dir",
	"chart_width", "chart_height",
	"listen_addr", "gin_mode", "read_timeout_sec", "write_timeout_sec",
	"log_level", "log_file", "log_max_size_mb", "log_max_backups", "log_max_age_days",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dataset_path", "")
	v.SetDefault("delimiter", "")
	v.SetDefault("top_countries", 15)
	v.SetDefault("views_dir", "")
	v.SetDefault("chart_width", 800)
	v.SetDefault("chart_height", 500)
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("read_timeout_sec", 15)
	v.SetDefault("write_timeout_sec", 30)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("log_max_size_mb", 10)
	v.SetDefault("log_max_backups", 3)
	v.SetDefault("log_max_age_days", 28)
}

// Default returns the built-in defaults without reading any file or env.
func Default() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

// Dir is the per-user state directory (~/.socialpulse).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".socialpulse"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.socialpulse/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env (including a .env file in the working directory) > config
// file > defaults. Command flags are applied on top by the caller.
func Load(cfgFile string) (*Global, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.ViewsDir == "" {
		c.ViewsDir = dir
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("delimiter", func(fl validator.FieldLevel) bool {
		_, err := ParseDelimiter(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks field ranges and enumerations.
func (c *Global) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (got %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// ParseDelimiter maps a configured delimiter to a rune. Empty means "pick
// from the file extension"; "tab" and `\t` mean a tab.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case "tab", `\t`, "\t":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\n' || r == '\r' || r == utf8.RuneError {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}

// DelimiterRune returns the configured delimiter (0 when unset).
func (c *Global) DelimiterRune() rune {
	r, _ := ParseDelimiter(c.Delimiter)
	return r
}

// Set assigns key from its string form. The result is not validated.
func (c *Global) Set(key, val string) error {
	switch key {
	case "dataset_path":
		c.DatasetPath = val
	case "delimiter":
		c.Delimiter = val
	case "views_dir":
		c.ViewsDir = val
	case "listen_addr":
		c.ListenAddr = val
	case "gin_mode":
		c.GinMode = strings.ToLower(val)
	case "log_level":
		c.LogLevel = strings.ToLower(val)
	case "log_file":
		c.LogFile = val
	case "top_countries", "chart_width", "chart_height", "read_timeout_sec", "write_timeout_sec",
		"log_max_size_mb", "log_max_backups", "log_max_age_days":
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return fmt.Errorf("invalid int for %s: %w", key, err)
		}
		*c.intField(key) = n
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// Get renders key's current value.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "dataset_path":
		return c.DatasetPath, nil
	case "delimiter":
		return c.Delimiter, nil
	case "views_dir":
		return c.ViewsDir, nil
	case "listen_addr":
		return c.ListenAddr, nil
	case "gin_mode":
		return c.GinMode, nil
	case "log_level":
		return c.LogLevel, nil
	case "log_file":
		return c.LogFile, nil
	}
	if p := c.intField(key); p != nil {
		return fmt.Sprint(*p), nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

func (c *Global) intField(key string) *int {
	switch key {
	case "top_countries":
		return &c.TopCountries
	case "chart_width":
		return &c.ChartWidth
	case "chart_height":
		return &c.ChartHeight
	case "read_timeout_sec":
		return &c.ReadTimeoutSec
	case "write_timeout_sec":
		return &c.WriteTimeoutSec
	case "log_max_size_mb":
		return &c.LogMaxSizeMB
	case "log_max_backups":
		return &c.LogMaxBackups
	case "log_max_age_days":
		return &c.LogMaxAgeDays
	}
	return nil
}

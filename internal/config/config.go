// Package config manages application configuration from files, environment
// variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/OftenOfuton/My-AZIK/internal/formats/tsv"
)

// Defaults.
const (
	DefaultExcel      = "設定値.xlsx"
	DefaultOutput     = "MyRomanTable.txt"
	DefaultBackupDir  = "Ignore_ExcelBackUp"
	DefaultTable      = "Tbl_Main"
	DefaultPolicy     = "auto"
	DefaultDebounceMS = 500

	// EnvPrefix prefixes every environment override, e.g. ROMANTABLE_TSV_POLICY.
	EnvPrefix = "ROMANTABLE"
	// LocalFile is looked up in the working directory before the user config.
	LocalFile = ".romantable.yaml"
)

// DefaultColumns are the input and output column headers.
var DefaultColumns = []string{"入力", "出力"}

// Config holds the application configuration.
type Config struct {
	Excel     string        `mapstructure:"excel" yaml:"excel"`
	Output    string        `mapstructure:"output" yaml:"output"`
	BackupDir string        `mapstructure:"backup_dir" yaml:"backup_dir"`
	Table     string        `mapstructure:"table" yaml:"table"`
	Columns   []string      `mapstructure:"columns" yaml:"columns"`
	TSV       TSVConfig     `mapstructure:"tsv" yaml:"tsv"`
	Publish   PublishConfig `mapstructure:"publish" yaml:"publish"`
	Watch     WatchConfig   `mapstructure:"watch" yaml:"watch"`
	Log       LogConfig     `mapstructure:"log" yaml:"log"`
}

// TSVConfig selects the output encoding policy.
type TSVConfig struct {
	Policy string `mapstructure:"policy" yaml:"policy"` // auto, unix, windows
}

// PublishConfig controls the git commit-and-push stage.
type PublishConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Message   string `mapstructure:"message" yaml:"message,omitempty"`
	Remote    string `mapstructure:"remote" yaml:"remote,omitempty"`
	Branch    string `mapstructure:"branch" yaml:"branch,omitempty"`
	SkipClean bool   `mapstructure:"skip_clean" yaml:"skip_clean"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms" yaml:"debounce_ms"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // pretty, json
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Excel:     DefaultExcel,
		Output:    DefaultOutput,
		BackupDir: DefaultBackupDir,
		Table:     DefaultTable,
		Columns:   append([]string(nil), DefaultColumns...),
		TSV:       TSVConfig{Policy: DefaultPolicy},
		Publish:   PublishConfig{Enabled: true},
		Watch:     WatchConfig{DebounceMS: DefaultDebounceMS},
		Log:       LogConfig{Level: "info", Format: "pretty"},
	}
}

// NewViper returns a viper instance with defaults and environment overrides
// registered. configFile is read instead of the search path when non-empty.
func NewViper(configFile string) *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path := FindConfigFile(configFile); path != "" {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("excel", d.Excel)
	v.SetDefault("output", d.Output)
	v.SetDefault("backup_dir", d.BackupDir)
	v.SetDefault("table", d.Table)
	v.SetDefault("columns", d.Columns)

	v.SetDefault("tsv.policy", d.TSV.Policy)

	v.SetDefault("publish.enabled", d.Publish.Enabled)
	v.SetDefault("publish.message", "")
	v.SetDefault("publish.remote", "")
	v.SetDefault("publish.branch", "")
	v.SetDefault("publish.skip_clean", d.Publish.SkipClean)

	v.SetDefault("watch.debounce_ms", d.Watch.DebounceMS)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load reads the config file, if any, and unmarshals the merged settings.
// A missing config file is not an error; a malformed one is.
func Load(v *viper.Viper) (*Config, error) {
	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not read config %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.Columns = trimAll(cfg.Columns)
	return &cfg, nil
}

// FindConfigFile returns the config file to read: explicit when set, else
// .romantable.yaml in the working directory, else the user config file when
// it exists. It returns "" when there is none.
func FindConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, candidate := range []string{LocalFile, UserConfigPath()} {
		if candidate == "" {
			continue
		}
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// UserConfigPath returns ~/.romantable/config.yaml.
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".romantable", "config.yaml")
}

// Issue is a configuration problem found by Validate.
type Issue struct {
	Key      string `json:"key"`
	Severity string `json:"severity"` // "error", "warning"
	Message  string `json:"message"`
}

// Validate checks config values and returns a list of issues.
func (c *Config) Validate() []Issue {
	var issues []Issue
	required := map[string]string{
		"excel":      c.Excel,
		"output":     c.Output,
		"backup_dir": c.BackupDir,
		"table":      c.Table,
	}
	for _, key := range []string{"excel", "output", "backup_dir", "table"} {
		if strings.TrimSpace(required[key]) == "" {
			issues = append(issues, Issue{Key: key, Severity: "error", Message: key + " must not be empty"})
		}
	}

	if len(c.Columns) != 2 {
		issues = append(issues, Issue{
			Key:      "columns",
			Severity: "error",
			Message:  fmt.Sprintf("exactly two columns are required, got %d", len(c.Columns)),
		})
	} else {
		for _, col := range c.Columns {
			if col == "" {
				issues = append(issues, Issue{Key: "columns", Severity: "error", Message: "column names must not be empty"})
				break
			}
		}
	}

	if _, err := tsv.ParsePolicy(c.TSV.Policy); err != nil {
		issues = append(issues, Issue{Key: "tsv.policy", Severity: "error", Message: err.Error()})
	}

	if c.Watch.DebounceMS < 0 {
		issues = append(issues, Issue{Key: "watch.debounce_ms", Severity: "error", Message: "debounce must not be negative"})
	}

	if c.Publish.Branch != "" && c.Publish.Remote == "" {
		issues = append(issues, Issue{
			Key:      "publish.branch",
			Severity: "warning",
			Message:  "publish.branch is ignored without publish.remote",
		})
	}

	if filepath.Clean(c.Output) == filepath.Clean(c.Excel) && c.Output != "" {
		issues = append(issues, Issue{Key: "output", Severity: "error", Message: "output must not overwrite the workbook"})
	}

	return issues
}

// Err joins the error-severity issues, or returns nil when there are none.
func Err(issues []Issue) error {
	var errs []error
	for _, issue := range issues {
		if issue.Severity == "error" {
			errs = append(errs, fmt.Errorf("%s: %s", issue.Key, issue.Message))
		}
	}
	return errors.Join(errs...)
}

// Policy resolves the configured TSV policy for this host.
func (c *Config) Policy() (tsv.Policy, error) {
	return tsv.ParsePolicy(c.TSV.Policy)
}

// Debounce returns the watch debounce interval.
func (c *Config) Debounce() time.Duration {
	if c.Watch.DebounceMS <= 0 {
		return DefaultDebounceMS * time.Millisecond
	}
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// YAML renders the configuration as YAML.
func (c *Config) YAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Init writes the default configuration to path. An existing file is only
// replaced when force is set.
func Init(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("could not create config directory: %w", err)
		}
	}

	body, err := Default().YAML()
	if err != nil {
		return err
	}
	header := "# romantable configuration\n# Environment overrides use the " + EnvPrefix + "_ prefix, e.g. " + EnvPrefix + "_TSV_POLICY=windows\n"
	if err := os.WriteFile(path, []byte(header+body), 0644); err != nil {
		return fmt.Errorf("could not write config: %w", err)
	}
	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}

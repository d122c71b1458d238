// Package config loads hashfold settings.
//
// Settings come from, in increasing priority: built-in defaults, a YAML
// file, HASHFOLD_* environment variables, and command-line flags. The merged
// result is validated against an embedded CUE schema.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "HASHFOLD"

// Config holds every setting.
type Config struct {
	Ledger  LedgerConfig  `yaml:"ledger" json:"ledger"`
	Hashing HashingConfig `yaml:"hashing" json:"hashing"`
	Scan    ScanConfig    `yaml:"scan" json:"scan"`
	Log     LogConfig     `yaml:"log" json:"log"`
}

// LedgerConfig locates the ledger database.
type LedgerConfig struct {
	Path string `yaml:"path" json:"path"`
}

// HashingConfig tunes hashing.
type HashingConfig struct {
	BigFileThreshold int64 `yaml:"big_file_threshold" json:"big_file_threshold"`
	MaxPerfEntries   int   `yaml:"max_perf_entries" json:"max_perf_entries"`
}

// ScanConfig tunes tree walking.
type ScanConfig struct {
	Exclude []string `yaml:"exclude" json:"exclude"`
}

// LogConfig selects log verbosity and encoding.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Ledger:  LedgerConfig{Path: DefaultLedgerPath()},
		Hashing: HashingConfig{BigFileThreshold: 100 << 20, MaxPerfEntries: 20},
		Scan:    ScanConfig{Exclude: []string{".hashfold"}},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// DefaultLedgerPath is $XDG_DATA_HOME/hashfold/ledger.db, falling back to
// ~/.local/share.
func DefaultLedgerPath() string {
	return filepath.Join(dataDir(), "ledger.db")
}

// DefaultConfigPath is $XDG_CONFIG_HOME/hashfold/config.yaml, falling back to
// ~/.config.
func DefaultConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "hashfold", "config.yaml")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "hashfold", "config.yaml")
	}
	return filepath.Join(".hashfold", "config.yaml")
}

func dataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "hashfold")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "hashfold")
	}
	return ".hashfold"
}

// Load reads a YAML file over the defaults and validates the result.
// Unknown keys are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cfg against the schema.
func Validate(cfg Config) error {
	if cfg.Scan.Exclude == nil {
		cfg.Scan.Exclude = []string{}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	v := def.Unify(ctx.Encode(cfg))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Resolve builds the effective configuration. The file at path is read when
// path is set, or when the default config file exists. Values set in v
// through bound flags or HASHFOLD_* environment variables win over the file.
func Resolve(v *viper.Viper, path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat(DefaultConfigPath()); err == nil {
			path = DefaultConfigPath()
		}
	}
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}

	if v != nil {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
		applyOverrides(&cfg, v)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyOverrides(cfg *Config, v *viper.Viper) {
	if v.IsSet("ledger.path") {
		cfg.Ledger.Path = v.GetString("ledger.path")
	}
	if v.IsSet("hashing.big_file_threshold") {
		cfg.Hashing.BigFileThreshold = v.GetInt64("hashing.big_file_threshold")
	}
	if v.IsSet("hashing.max_perf_entries") {
		cfg.Hashing.MaxPerfEntries = v.GetInt("hashing.max_perf_entries")
	}
	if v.IsSet("scan.exclude") {
		cfg.Scan.Exclude = v.GetStringSlice("scan.exclude")
	}
	if v.IsSet("log.level") {
		cfg.Log.Level = strings.ToLower(v.GetString("log.level"))
	}
	if v.IsSet("log.format") {
		cfg.Log.Format = strings.ToLower(v.GetString("log.format"))
	}
}

// Package config loads pagestore settings from defaults, an optional YAML
// file, PAGESTORE_* environment variables and command-line flags.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/sushant-115/pagestore/pkg/logger"
	"github.com/sushant-115/pagestore/pkg/telemetry"
)

const (
	DefaultConfigFile = "pagestore.yaml"
	DefaultDataDir    = "."
	DefaultDatabase   = "Datenbank"
	DefaultOutput     = "table"
	DefaultPromPort   = 9464

	envPrefix = "PAGESTORE_"
)

// Config is the fully resolved configuration.
type Config struct {
	DataDir   string           `koanf:"data_dir" yaml:"data_dir"`
	Database  string           `koanf:"database" yaml:"database"`
	Output    string           `koanf:"output" yaml:"output"`
	Log       logger.Config    `koanf:"log" yaml:"log"`
	Telemetry telemetry.Config `koanf:"telemetry" yaml:"telemetry"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		DataDir:  DefaultDataDir,
		Database: DefaultDatabase,
		Output:   DefaultOutput,
		Log: logger.Config{
			Level:      "info",
			Format:     "console",
			OutputFile: "stderr",
		},
		Telemetry: telemetry.Config{
			Enabled:          false,
			ServiceName:      "pagestore",
			PrometheusPort:   DefaultPromPort,
			TraceSampleRatio: 1.0,
		},
	}
}

func defaultsMap() map[string]interface{} {
	d := Default()
	return map[string]interface{}{
		"data_dir":                     d.DataDir,
		"database":                     d.Database,
		"output":                       d.Output,
		"log.level":                    d.Log.Level,
		"log.format":                   d.Log.Format,
		"log.output_file":              d.Log.OutputFile,
		"telemetry.enabled":            d.Telemetry.Enabled,
		"telemetry.service_name":       d.Telemetry.ServiceName,
		"telemetry.prometheus_port":    d.Telemetry.PrometheusPort,
		"telemetry.trace_sample_ratio": d.Telemetry.TraceSampleRatio,
	}
}

// flagKeys maps flag names to config keys where they differ from the
// kebab-to-snake rule.
var flagKeys = map[string]string{
	"log-level":    "log.level",
	"log-format":   "log.format",
	"log-file":     "log.output_file",
	"telemetry":    "telemetry.enabled",
	"metrics-port": "telemetry.prometheus_port",
}

// Load resolves the configuration.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
// An explicit cfgFile must exist; otherwise ./pagestore.yaml is used when
// present.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(defaultsMap(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	path := cfgFile
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// 3. Environment variables: PAGESTORE_LOG_LEVEL -> log.level
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, only the ones explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	for _, section := range []string{"log", "telemetry"} {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}

// Validate rejects settings the store cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return fmt.Errorf("database name must not be empty")
	}
	if strings.ContainsAny(c.Database, `/\`) {
		return fmt.Errorf("database name %q must not contain path separators", c.Database)
	}
	switch c.Output {
	case "table", "json":
	default:
		return fmt.Errorf("unknown output format %q (want table or json)", c.Output)
	}
	if c.Telemetry.Enabled && (c.Telemetry.PrometheusPort < 0 || c.Telemetry.PrometheusPort > 65535) {
		return fmt.Errorf("invalid prometheus port %d", c.Telemetry.PrometheusPort)
	}
	return nil
}

// WriteDefault writes the default configuration as YAML to path. An
// existing file is not overwritten.
func WriteDefault(path string) error {
	data, err := yamlv3.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

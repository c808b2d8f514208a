// Package config loads the ambient configuration for a run: environment
// variables, an optional config file, and CLI flags, merged via Viper —
// the same pattern the kubilitics-ai/ftahirops stack uses for its own
// env+flag+file precedence.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config is the resolved, read-only configuration for one process run.
type Config struct {
	v *viper.Viper
}

// Defaults, matching §6's environment variable table and §4.7's worker
// pool / preview-row knobs.
const (
	defaultBERThreshold           = 1e-12
	defaultBERWarnThreshold       = 1e-15
	defaultBERFallbackMin         = 1024
	defaultBERSymbolValidMinLog10 = -60
	defaultWorkerPoolSize         = 4
	defaultAnalyzerTimeoutSeconds = 300
	defaultPreviewRowLimit        = 2000
)

// Load builds a Config from the process environment (IBA_*,
// EXPECTED_TOPOLOGY_FILE and friends), optionally overlaying a config
// file at configPath if non-empty.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("IBA_BER_TH", defaultBERThreshold)
	v.SetDefault("IBA_BER_WARN_TH", defaultBERWarnThreshold)
	v.SetDefault("IBA_BER_FALLBACK_MIN", defaultBERFallbackMin)
	v.SetDefault("IBA_BER_SYMBOL_VALID_MIN_LOG10", defaultBERSymbolValidMinLog10)
	v.SetDefault("EXPECTED_TOPOLOGY_FILE", "")
	v.SetDefault("worker_pool_size", defaultWorkerPoolSize)
	v.SetDefault("analyzer_timeout_seconds", defaultAnalyzerTimeoutSeconds)
	v.SetDefault("preview_row_limit", defaultPreviewRowLimit)
	v.SetDefault("firmware_policy_file", "")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	return &Config{v: v}, nil
}

// BERCriticalThreshold returns IBA_BER_TH.
func (c *Config) BERCriticalThreshold() float64 { return c.v.GetFloat64("IBA_BER_TH") }

// BERWarnThreshold returns IBA_BER_WARN_TH.
func (c *Config) BERWarnThreshold() float64 { return c.v.GetFloat64("IBA_BER_WARN_TH") }

// BERFallbackMin returns IBA_BER_FALLBACK_MIN.
func (c *Config) BERFallbackMin() float64 { return c.v.GetFloat64("IBA_BER_FALLBACK_MIN") }

// BERSymbolValidMinLog10 returns IBA_BER_SYMBOL_VALID_MIN_LOG10.
func (c *Config) BERSymbolValidMinLog10() float64 {
	return c.v.GetFloat64("IBA_BER_SYMBOL_VALID_MIN_LOG10")
}

// ExpectedTopologyFile returns the optional baseline path.
func (c *Config) ExpectedTopologyFile() string { return c.v.GetString("EXPECTED_TOPOLOGY_FILE") }

// WorkerPoolSize returns the analyzer fan-out concurrency limit (§5).
func (c *Config) WorkerPoolSize() int { return c.v.GetInt("worker_pool_size") }

// AnalyzerTimeoutSeconds returns the per-analyzer timeout (§5).
func (c *Config) AnalyzerTimeoutSeconds() int { return c.v.GetInt("analyzer_timeout_seconds") }

// PreviewRowLimit returns the preview_row_limit knob (§9 Open Question:
// resolved to a configurable cap applied uniformly to every `<name>_data`
// view, defaulting to 2000 rows).
func (c *Config) PreviewRowLimit() int { return c.v.GetInt("preview_row_limit") }

// FirmwarePolicyFile returns the optional path to the firmware policy
// JSON consumed by the HCA analyzer (§4.4 Family D).
func (c *Config) FirmwarePolicyFile() string { return c.v.GetString("firmware_policy_file") }

// SetFirmwarePolicyFile lets a CLI flag override the configured firmware
// policy path, taking precedence over the env/file value per §6's
// flag > env > file > default merge order.
func (c *Config) SetFirmwarePolicyFile(path string) { c.v.Set("firmware_policy_file", path) }

// SetExpectedTopologyFile lets a CLI flag override EXPECTED_TOPOLOGY_FILE.
func (c *Config) SetExpectedTopologyFile(path string) { c.v.Set("EXPECTED_TOPOLOGY_FILE", path) }

// Default returns a Config built purely from environment defaults — used
// by callers (tests, analyzers invoked outside the CLI) that don't need
// file-based overrides.
func Default() *Config {
	c, _ := Load("")
	return c
}

// Package config defines the katamari configuration schema and loader.
//
// Configuration lives at ~/.katamari/config.json. Every field has a
// working default so a missing or partial file never blocks startup.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// TrimConfig holds the default trim parameters applied when a request
// leaves them unset.
type TrimConfig struct {
	Model         string   `json:"model"`
	TargetTokens  int      `json:"targetTokens"`
	MinTurns      int      `json:"minTurns"`
	PriorityRoles []string `json:"priorityRoles"`
}

func defaultTrimConfig() TrimConfig {
	return TrimConfig{
		Model:         "gpt-5-main",
		TargetTokens:  4096,
		MinTurns:      0,
		PriorityRoles: []string{},
	}
}

// RetentionConfig selects the semantic retention provider.
// Provider is "lexical" or "none".
type RetentionConfig struct {
	Provider   string `json:"provider"`
	Dimensions int    `json:"dimensions"`
}

func defaultRetentionConfig() RetentionConfig {
	return RetentionConfig{Provider: "lexical", Dimensions: 256}
}

// PersonaConfig points at the forbidden-term pattern file.
type PersonaConfig struct {
	PatternsPath string `json:"patternsPath"`
}

// OpsConfig configures the operational HTTP server.
type OpsConfig struct {
	Port int `json:"port"`
}

func defaultOpsConfig() OpsConfig {
	return OpsConfig{Port: 8787}
}

// UsageConfig configures the usage ledger and budget zones.
type UsageConfig struct {
	DBPath     string `json:"dbPath"`
	DailyLimit int    `json:"dailyLimit"`
	YellowPct  int    `json:"yellowPct"`
	OrangePct  int    `json:"orangePct"`
	RedPct     int    `json:"redPct"`
}

func defaultUsageConfig() UsageConfig {
	return UsageConfig{
		DBPath:     "~/.katamari/usage.db",
		DailyLimit: 1_000_000,
		YellowPct:  60,
		OrangePct:  80,
		RedPct:     90,
	}
}

// ReportConfig schedules the periodic usage report.
type ReportConfig struct {
	Cron string `json:"cron"` // standard 5-field cron expression or @descriptor
}

func defaultReportConfig() ReportConfig {
	return ReportConfig{Cron: "@hourly"}
}

// Config is the root configuration object.
type Config struct {
	Trim      TrimConfig      `json:"trim"`
	Retention RetentionConfig `json:"retention"`
	Persona   PersonaConfig   `json:"persona"`
	Ops       OpsConfig       `json:"ops"`
	Usage     UsageConfig     `json:"usage"`
	Report    ReportConfig    `json:"report"`
}

// DefaultConfig returns a fully populated configuration.
func DefaultConfig() Config {
	return Config{
		Trim:      defaultTrimConfig(),
		Retention: defaultRetentionConfig(),
		Persona:   PersonaConfig{},
		Ops:       defaultOpsConfig(),
		Usage:     defaultUsageConfig(),
		Report:    defaultReportConfig(),
	}
}

// UsageDBPath returns the usage database path with "~" expanded.
func (c *Config) UsageDBPath() string {
	return expandHome(c.Usage.DBPath)
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

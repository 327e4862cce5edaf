// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Variant selects which build of the application is running.
type Variant string

const (
	// Admin is the administrator build.
	Admin Variant = "admin"
	// Client is the end-user build.
	Client Variant = "client"
)

// ParseVariant validates a variant name from a flag or environment
// variable.
func ParseVariant(name string) (Variant, error) {
	switch Variant(name) {
	case Admin, Client:
		return Variant(name), nil
	}
	return "", fmt.Errorf("unknown variant %q (want admin or client)", name)
}

// Config is the master configuration for duoshell.
type Config struct {
	// Variant selects admin or client behavior.
	Variant Variant `yaml:"variant"`

	// App describes the application the host reports.
	App AppConfig `yaml:"app"`

	// Paths configures socket and manifest locations.
	Paths PathsConfig `yaml:"paths"`

	// Invoke holds the default options for remote calls.
	Invoke InvokeConfig `yaml:"invoke"`

	// Log configures the process logger.
	Log LogConfig `yaml:"log"`

	// Features lists the built-in feature modules to expose.
	Features []string `yaml:"features"`

	// Variant sections, applied after the base config is loaded.
	AdminOverrides  *ConfigOverrides `yaml:"admin,omitempty"`
	ClientOverrides *ConfigOverrides `yaml:"client,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per variant.
type ConfigOverrides struct {
	App      *AppConfig       `yaml:"app,omitempty"`
	Paths    *PathsConfig     `yaml:"paths,omitempty"`
	Invoke   *InvokeOverrides `yaml:"invoke,omitempty"`
	Features []string         `yaml:"features,omitempty"`
}

// AppConfig describes the application.
type AppConfig struct {
	// Name is the product name returned by app.getName.
	Name string `yaml:"name"`

	// Version is returned by app.getVersion. Empty means the binary's
	// build version.
	Version string `yaml:"version"`
}

// PathsConfig configures filesystem locations.
type PathsConfig struct {
	// Root is the base directory for runtime state.
	Root string `yaml:"root"`

	// Socket is the Unix socket the privileged host listens on.
	// Default: ${DUOSHELL_ROOT}/host.sock
	Socket string `yaml:"socket"`

	// Manifests lists JSONC module manifest files to expose in
	// addition to the built-in features.
	Manifests []string `yaml:"manifests"`
}

// InvokeConfig holds the default invocation options. Durations use
// time.ParseDuration syntax.
type InvokeConfig struct {
	// Timeout bounds each attempt. Default: 30s
	Timeout string `yaml:"timeout"`

	// Retry enables retries. Default: false
	Retry bool `yaml:"retry"`

	// RetryCount is the number of retries after the first attempt.
	// Default: 3
	RetryCount int `yaml:"retry_count"`

	// BackoffUnit is the linear backoff step. Default: 1s
	BackoffUnit string `yaml:"backoff_unit"`
}

// InvokeOverrides is InvokeConfig with every field optional.
type InvokeOverrides struct {
	Timeout     string `yaml:"timeout,omitempty"`
	Retry       *bool  `yaml:"retry,omitempty"`
	RetryCount  *int   `yaml:"retry_count,omitempty"`
	BackoffUnit string `yaml:"backoff_unit,omitempty"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	// Level is debug, info, warn, or error. Default: info
	Level string `yaml:"level"`

	// Format is auto, text, or json. Auto picks text on a terminal.
	// Default: auto
	Format string `yaml:"format"`
}

// Default returns the default configuration. The config file is still
// required; defaults only fill fields it leaves out.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".cache", "duoshell")

	return &Config{
		Variant: Admin,
		Paths: PathsConfig{
			Root:   defaultRoot,
			Socket: "${DUOSHELL_ROOT}/host.sock",
		},
		Invoke: InvokeConfig{
			Timeout:     "30s",
			Retry:       false,
			RetryCount:  3,
			BackoffUnit: "1s",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		Features: []string{"app"},
	}
}

// Load loads configuration from the DUOSHELL_CONFIG environment
// variable. There is no fallback when it is unset.
func Load() (*Config, error) {
	configPath := os.Getenv("DUOSHELL_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("DUOSHELL_CONFIG environment variable not set; " +
			"set it to the path of your duoshell.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadSelected is the entry point for binaries with --config and
// --variant flags: an empty path falls back to DUOSHELL_CONFIG, and an
// empty variant keeps the file's.
func LoadSelected(path string, variant Variant) (*Config, error) {
	if path == "" {
		path = os.Getenv("DUOSHELL_CONFIG")
		if path == "" {
			return nil, fmt.Errorf("no config file: pass --config or set DUOSHELL_CONFIG")
		}
	}
	return LoadFileVariant(path, variant)
}

// LoadFile loads configuration from path using the variant the file
// names.
func LoadFile(path string) (*Config, error) {
	return LoadFileVariant(path, "")
}

// LoadFileVariant loads configuration from path and selects variant,
// overriding the file's own choice. An empty variant keeps the file's.
func LoadFileVariant(path string, variant Variant) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	if variant != "" {
		cfg.Variant = variant
	}

	cfg.applyVariantOverrides()
	cfg.expandVariables()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// applyVariantOverrides applies the section matching c.Variant.
func (c *Config) applyVariantOverrides() {
	var overrides *ConfigOverrides
	var productName string

	switch c.Variant {
	case Admin:
		overrides = c.AdminOverrides
		productName = "Duoshell Admin"
	case Client:
		overrides = c.ClientOverrides
		productName = "Duoshell Client"
	}
	if c.App.Name == "" {
		c.App.Name = productName
	}

	if overrides == nil {
		return
	}

	if overrides.App != nil {
		if overrides.App.Name != "" {
			c.App.Name = overrides.App.Name
		}
		if overrides.App.Version != "" {
			c.App.Version = overrides.App.Version
		}
	}

	if overrides.Paths != nil {
		if overrides.Paths.Root != "" {
			c.Paths.Root = overrides.Paths.Root
		}
		if overrides.Paths.Socket != "" {
			c.Paths.Socket = overrides.Paths.Socket
		}
		if overrides.Paths.Manifests != nil {
			c.Paths.Manifests = overrides.Paths.Manifests
		}
	}

	if overrides.Invoke != nil {
		if overrides.Invoke.Timeout != "" {
			c.Invoke.Timeout = overrides.Invoke.Timeout
		}
		if overrides.Invoke.Retry != nil {
			c.Invoke.Retry = *overrides.Invoke.Retry
		}
		if overrides.Invoke.RetryCount != nil {
			c.Invoke.RetryCount = *overrides.Invoke.RetryCount
		}
		if overrides.Invoke.BackoffUnit != "" {
			c.Invoke.BackoffUnit = overrides.Invoke.BackoffUnit
		}
	}

	if overrides.Features != nil {
		c.Features = overrides.Features
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"DUOSHELL_ROOT": c.Paths.Root,
		"HOME":          os.Getenv("HOME"),
	}

	c.Paths.Root = expandVars(c.Paths.Root, vars)
	vars["DUOSHELL_ROOT"] = c.Paths.Root // Update for dependent paths.

	c.Paths.Socket = expandVars(c.Paths.Socket, vars)
	for index, manifest := range c.Paths.Manifests {
		c.Paths.Manifests[index] = expandVars(manifest, vars)
	}
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// TimeoutDuration returns the parsed attempt timeout.
func (i InvokeConfig) TimeoutDuration() (time.Duration, error) {
	return parsePositiveDuration("invoke.timeout", i.Timeout)
}

// BackoffDuration returns the parsed backoff unit.
func (i InvokeConfig) BackoffDuration() (time.Duration, error) {
	return parsePositiveDuration("invoke.backoff_unit", i.BackoffUnit)
}

func parsePositiveDuration(field, value string) (time.Duration, error) {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", field, value)
	}
	return duration, nil
}

var logLevels = []string{"debug", "info", "warn", "error"}
var logFormats = []string{"auto", "text", "json"}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Variant != Admin && c.Variant != Client {
		errs = append(errs, fmt.Errorf("invalid variant: %s", c.Variant))
	}

	if c.App.Name == "" {
		errs = append(errs, fmt.Errorf("app.name is required"))
	}

	if c.Paths.Socket == "" {
		errs = append(errs, fmt.Errorf("paths.socket is required"))
	}

	if _, err := c.Invoke.TimeoutDuration(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Invoke.BackoffDuration(); err != nil {
		errs = append(errs, err)
	}
	if c.Invoke.RetryCount < 0 {
		errs = append(errs, fmt.Errorf("invoke.retry_count must be non-negative, got %d", c.Invoke.RetryCount))
	}

	if !slices.Contains(logLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", logLevels))
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: %v", logFormats))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EnsurePaths creates the directory holding the host socket.
func (c *Config) EnsurePaths() error {
	directory := filepath.Dir(c.Paths.Socket)
	if err := os.MkdirAll(directory, 0700); err != nil {
		return fmt.Errorf("creating %s: %w", directory, err)
	}
	return nil
}

// Package config loads and validates the site configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	sgerrors "git.home.luguber.info/inful/sitegen/internal/errors"
)

// Config represents the site configuration (site.yaml).
type Config struct {
	Site   SiteConfig   `yaml:"site"`
	Source SourceConfig `yaml:"source"`
	Output OutputConfig `yaml:"output"`
	Build  BuildConfig  `yaml:"build"`
	Serve  ServeConfig  `yaml:"serve"`
	State  StateConfig  `yaml:"state"`
}

// SiteConfig is the site-wide metadata exposed to layouts.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
}

// SourceConfig names the input directories.
type SourceConfig struct {
	Content string `yaml:"content"`
	Layouts string `yaml:"layouts"`
	Static  string `yaml:"static"`
}

// OutputConfig names the output root.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // Remove the output root before writing
}

// BuildConfig tunes the build pipeline.
type BuildConfig struct {
	Workers         int  `yaml:"workers,omitempty"` // render pool size, 0 = NumCPU
	CategoryIndexes bool `yaml:"category_indexes"`
	GitLastMod      bool `yaml:"git_lastmod"` // take page LastMod from git history
}

// ServeConfig tunes the preview server.
type ServeConfig struct {
	Addr            string   `yaml:"addr"`
	Metrics         bool     `yaml:"metrics"`
	RebuildInterval Duration `yaml:"rebuild_interval,omitempty"` // periodic full rebuild, 0 disables
	Debounce        Duration `yaml:"debounce,omitempty"`
}

// Duration decodes YAML duration strings like "15m" or "300ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// StateConfig names the build-state database.
type StateConfig struct {
	Path string `yaml:"path"`
}

// Load loads the configuration from the specified file, expanding ${VAR}
// references from the process environment and any .env file first.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, sgerrors.Config(fmt.Sprintf("read config file %s", configPath), err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, sgerrors.Config(fmt.Sprintf("parse config file %s", configPath), err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Source.Content == "" {
		c.Source.Content = "content"
	}
	if c.Source.Layouts == "" {
		c.Source.Layouts = "layouts"
	}
	if c.Source.Static == "" {
		c.Source.Static = "static"
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "public"
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = ":8080"
	}
	if c.Serve.Debounce <= 0 {
		c.Serve.Debounce = Duration(300 * time.Millisecond)
	}
	if c.State.Path == "" {
		c.State.Path = ".sitegen/state.db"
	}
}

func (c *Config) validate() error {
	if c.Build.Workers < 0 {
		return sgerrors.Config("build.workers must not be negative", nil)
	}
	if c.Serve.RebuildInterval < 0 {
		return sgerrors.Config("serve.rebuild_interval must not be negative", nil)
	}
	if c.Output.Directory == c.Source.Content {
		return sgerrors.Config("output.directory must not equal source.content", nil)
	}
	return nil
}

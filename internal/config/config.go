// Package config implements smarttree's layered configuration resolution,
// generalized from the teacher's 5-layer koanf-based resolver
// (internal/config/resolver.go) down to this spec's smaller option set:
// allow-list roots, ignore-pattern additions, default encoder format,
// concurrency bound, and log settings (spec §6.3's persisted-state paths
// live under internal/signature and internal/oplog, not here — this
// package only resolves the server's *startup* options).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/knadh/koanf/providers/confmap"
	koanf "github.com/knadh/koanf/v2"
)

// Config is smarttree's resolved startup configuration.
type Config struct {
	AllowRoots     []string `toml:"allow_roots"`
	ExtraIgnores   []string `toml:"extra_ignores"`
	DefaultFormat  string   `toml:"default_format"`
	Concurrency    int      `toml:"concurrency"`
	LogFormat      string   `toml:"log_format"`
	LogLevel       string   `toml:"log_level"`
}

// Default returns the built-in baseline, used as the first resolution
// layer (spec's ambient-stack equivalent of the teacher's DefaultProfile).
func Default() *Config {
	return &Config{
		DefaultFormat: "hextree",
		Concurrency:   64,
		LogFormat:     "text",
		LogLevel:      "info",
	}
}

// fileName is the project-level config file name, analogous to the
// teacher's harvx.toml.
const fileName = ".smarttree.toml"

// Options mirrors the teacher's ResolveOptions, trimmed to this spec's
// layers: defaults, global XDG config, project config file, SMARTTREE_*
// environment variables, then explicit CLI flags (highest precedence).
type Options struct {
	ProjectDir string
	CLIFlags   map[string]any
}

// Resolve runs the five-layer resolution pipeline (spec's ambient
// configuration stack, generalized from the teacher's 5-layer pipeline
// down to this module's smaller option set — no profile/target-preset
// concept exists here since smarttree has one configuration, not named
// profiles).
func Resolve(opts Options) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(toFlatMap(Default()), "."), nil); err != nil {
		return nil, fmt.Errorf("loading config defaults: %w", err)
	}

	globalPath := filepath.Join(xdg.ConfigHome, "smarttree", "config.toml")
	if err := mergeFile(k, globalPath); err != nil {
		return nil, err
	}

	projectDir := opts.ProjectDir
	if projectDir == "" {
		projectDir = "."
	}
	if err := mergeFile(k, filepath.Join(projectDir, fileName)); err != nil {
		return nil, err
	}

	if env := envOverrides(); len(env) > 0 {
		if err := k.Load(confmap.Provider(env, "."), nil); err != nil {
			return nil, fmt.Errorf("merging env overrides: %w", err)
		}
	}

	if len(opts.CLIFlags) > 0 {
		if err := k.Load(confmap.Provider(opts.CLIFlags, "."), nil); err != nil {
			return nil, fmt.Errorf("merging CLI flag overrides: %w", err)
		}
	}

	return fromKoanf(k), nil
}

// mergeFile loads path as TOML into k if it exists; a missing file is
// silently skipped, matching the teacher's loadFileLayer behaviour.
func mergeFile(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	var raw map[string]any
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := k.Load(confmap.Provider(raw, "."), nil); err != nil {
		return fmt.Errorf("merging %s: %w", path, err)
	}
	return nil
}

// envOverrides reads SMARTTREE_* environment variables into a flat map,
// mirroring the teacher's buildEnvMap — a bad value is skipped rather than
// aborting resolution.
func envOverrides() map[string]any {
	m := map[string]any{}
	if v := os.Getenv("SMARTTREE_DEFAULT_FORMAT"); v != "" {
		m["default_format"] = v
	}
	if v := os.Getenv("SMARTTREE_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			m["concurrency"] = n
		}
	}
	if v := os.Getenv("SMARTTREE_LOG_FORMAT"); v != "" {
		m["log_format"] = v
	}
	if v := os.Getenv("SMARTTREE_LOG_LEVEL"); v != "" {
		m["log_level"] = v
	}
	if v := os.Getenv("SMART_TREE_ALLOW"); v != "" {
		m["allow_roots"] = strings.Split(v, ":")
	}
	return m
}

func toFlatMap(c *Config) map[string]any {
	return map[string]any{
		"allow_roots":    c.AllowRoots,
		"extra_ignores":  c.ExtraIgnores,
		"default_format": c.DefaultFormat,
		"concurrency":    c.Concurrency,
		"log_format":     c.LogFormat,
		"log_level":      c.LogLevel,
	}
}

func fromKoanf(k *koanf.Koanf) *Config {
	return &Config{
		AllowRoots:    k.Strings("allow_roots"),
		ExtraIgnores:  k.Strings("extra_ignores"),
		DefaultFormat: k.String("default_format"),
		Concurrency:   k.Int("concurrency"),
		LogFormat:     k.String("log_format"),
		LogLevel:      k.String("log_level"),
	}
}

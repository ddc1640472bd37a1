// Package config provides configuration loading and validation for rootdnsd.
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Command-line flags (not handled here, see cmd/rootdnsd/main.go)
//  2. Environment variables (ROOTDNS_* prefix)
//  3. YAML config file (if specified with --config)
//  4. Hardcoded defaults
//
// All configuration is validated during Load() to ensure correctness early.
package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/spf13/viper"
)

// initConfig sets up the config loader with defaults, env binding, and config file.
func initConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()

	setDefaults(v)

	// Environment variable binding.
	// Uses ROOTDNS_ prefix: ROOTDNS_SERVER_HOST -> server.host
	v.SetEnvPrefix("ROOTDNS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return v, nil
}

// setDefaults configures all default values.
func setDefaults(v *viper.Viper) {
	// Server defaults.
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8053)

	// Resolver defaults.
	v.SetDefault("resolver.root_server", "198.41.0.4")
	v.SetDefault("resolver.max_steps", 16)
	v.SetDefault("resolver.glue_depth", 4)
	v.SetDefault("resolver.upstream_timeout", "2s")

	// Logging defaults.
	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.structured", false)

	// Admin side-car defaults. Disabled and bound to localhost for safety.
	v.SetDefault("admin.enabled", false)
	v.SetDefault("admin.host", "127.0.0.1")
	v.SetDefault("admin.port", 8080)
}

// loadFromSource loads configuration from file and environment.
func loadFromSource(configPath string) (*Config, error) {
	v, err := initConfig(configPath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}

	loadServerConfig(v, cfg)
	loadResolverConfig(v, cfg)
	loadLoggingConfig(v, cfg)
	loadAdminConfig(v, cfg)

	if err := normalizeConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadServerConfig(v *viper.Viper, cfg *Config) {
	cfg.Server.Host = v.GetString("server.host")
	cfg.Server.Port = v.GetInt("server.port")
}

func loadResolverConfig(v *viper.Viper, cfg *Config) {
	cfg.Resolver.RootServer = v.GetString("resolver.root_server")
	cfg.Resolver.MaxSteps = v.GetInt("resolver.max_steps")
	cfg.Resolver.GlueDepth = v.GetInt("resolver.glue_depth")
	cfg.Resolver.UpstreamTimeout = v.GetString("resolver.upstream_timeout")
}

func loadLoggingConfig(v *viper.Viper, cfg *Config) {
	cfg.Logging.Level = strings.ToUpper(v.GetString("logging.level"))
	cfg.Logging.Structured = v.GetBool("logging.structured")
}

func loadAdminConfig(v *viper.Viper, cfg *Config) {
	cfg.Admin.Enabled = v.GetBool("admin.enabled")
	cfg.Admin.Host = v.GetString("admin.host")
	cfg.Admin.Port = v.GetInt("admin.port")
}

// normalizeConfig validates and normalizes the configuration.
func normalizeConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return errors.New("server.port must be 1..65535")
	}

	if cfg.Resolver.RootServer == "" {
		return errors.New("resolver.root_server must not be empty")
	}
	if net.ParseIP(cfg.Resolver.RootServer) == nil {
		return fmt.Errorf("resolver.root_server %q is not an IP address", cfg.Resolver.RootServer)
	}
	if cfg.Resolver.MaxSteps <= 0 {
		cfg.Resolver.MaxSteps = 16
	}
	if cfg.Resolver.GlueDepth <= 0 {
		cfg.Resolver.GlueDepth = 4
	}
	if cfg.Resolver.UpstreamTimeout == "" {
		cfg.Resolver.UpstreamTimeout = "2s"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}

	if cfg.Admin.Host == "" {
		cfg.Admin.Host = "127.0.0.1"
	}
	if cfg.Admin.Enabled {
		if cfg.Admin.Port <= 0 || cfg.Admin.Port > 65535 {
			return errors.New("admin.port must be 1..65535")
		}
	}

	return nil
}

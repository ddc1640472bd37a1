// Package config provides configuration loading for rootdnsd using Viper.
// Configuration is loaded from an optional YAML file with automatic
// environment variable binding.
//
// Environment variables use the ROOTDNS_ prefix and underscore-separated
// keys:
//   - ROOTDNS_SERVER_HOST -> server.host
//   - ROOTDNS_RESOLVER_ROOT_SERVER -> resolver.root_server
//   - ROOTDNS_ADMIN_ENABLED -> admin.enabled
package config

import (
	"os"
	"strings"
)

// ServerConfig contains the DNS listener settings.
type ServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

// ResolverConfig contains the iterative resolver settings.
type ResolverConfig struct {
	RootServer      string `yaml:"root_server"      mapstructure:"root_server"`
	MaxSteps        int    `yaml:"max_steps"        mapstructure:"max_steps"`
	GlueDepth       int    `yaml:"glue_depth"       mapstructure:"glue_depth"`
	UpstreamTimeout string `yaml:"upstream_timeout" mapstructure:"upstream_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"      mapstructure:"level"`
	Structured bool   `yaml:"structured" mapstructure:"structured"`
}

// AdminConfig contains the optional observability side-car settings.
type AdminConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Host    string `yaml:"host"    mapstructure:"host"`
	Port    int    `yaml:"port"    mapstructure:"port"`
}

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"   mapstructure:"server"`
	Resolver ResolverConfig `yaml:"resolver" mapstructure:"resolver"`
	Logging  LoggingConfig  `yaml:"logging"  mapstructure:"logging"`
	Admin    AdminConfig    `yaml:"admin"    mapstructure:"admin"`
}

// ResolveConfigPath determines the config file path from flag or environment.
func ResolveConfigPath(flagValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	if v := strings.TrimSpace(os.Getenv("ROOTDNS_CONFIG")); v != "" {
		return v
	}
	return ""
}

// Load loads configuration from an optional YAML file with environment
// variable overrides. This is the main entry point for loading configuration.
//
// Configuration priority (highest to lowest):
//  1. Environment variables (ROOTDNS_*)
//  2. Config file values
//  3. Default values
func Load(path string) (*Config, error) {
	return loadFromSource(path)
}

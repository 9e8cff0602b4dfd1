// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

// Package config loads service configuration from a YAML file overlaid with
// command-line flags.
package config

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Token holds bearer token settings. The secret has no default: it must be
// supplied explicitly via file or flag.
type Token struct {
	Secret string `koanf:"secret"`
	Issuer string `koanf:"issuer"`
	TTL    string `koanf:"ttl"`
}

// Password holds password hashing settings.
type Password struct {
	Iterations int `koanf:"iterations"`
}

// Config is the complete service configuration.
type Config struct {
	ListenAddr  string   `koanf:"listen_addr"`
	MetricsAddr string   `koanf:"metrics_addr"`
	DatabaseURL string   `koanf:"database_url"`
	LogFormat   string   `koanf:"log_format"`
	Token       Token    `koanf:"token"`
	Password    Password `koanf:"password"`
}

// Defaults returns the configuration defaults applied before file and flag
// values are merged in.
func Defaults() *Config {
	return &Config{
		ListenAddr:  ":8080",
		MetricsAddr: "127.0.0.1:9100",
		LogFormat:   "json",
		Token: Token{
			TTL: "24h",
		},
		Password: Password{
			Iterations: 10000,
		},
	}
}

// Load merges defaults, the optional YAML file at path, and flags, in that
// order of precedence. Flag names use the same dotted keys as the file
// (e.g. token.secret); a flag left at its zero default does not override
// file or default values.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, oops.Code("CONFIG_DEFAULTS_FAILED").Wrap(err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}
	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}
	return &cfg, nil
}

// TokenTTL returns the parsed token lifetime.
func (c *Config) TokenTTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.Token.TTL)
	if err != nil {
		return 0, oops.Code("CONFIG_INVALID").
			With("field", "token.ttl").
			With("value", c.Token.TTL).
			Wrap(err)
	}
	return d, nil
}

// Validate checks the configuration for the serve command.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return oops.Code("CONFIG_INVALID").With("field", "listen_addr").Errorf("listen_addr is required")
	}
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").With("field", "database_url").Errorf("database_url is required")
	}
	if c.Token.Secret == "" {
		return oops.Code("CONFIG_INVALID").With("field", "token.secret").Errorf("token.secret is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			With("field", "log_format").
			Errorf("log_format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if _, err := c.TokenTTL(); err != nil {
		return err
	}
	if c.Password.Iterations < 10000 {
		return oops.Code("CONFIG_INVALID").
			With("field", "password.iterations").
			Errorf("password.iterations must be at least 10000")
	}
	return nil
}

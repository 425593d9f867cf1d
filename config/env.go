// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"
)

// envVarPattern matches ${VAR} or ${VAR:default}
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

// SubstituteEnvVars replaces ${VAR} or ${VAR:default} with environment variable values
func SubstituteEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultValue := ""
		if len(parts) > 2 {
			defaultValue = parts[2]
		}

		value := os.Getenv(varName)
		if value == "" {
			return defaultValue
		}
		return value
	})
}

// SubstituteEnvVarsInConfig recursively substitutes environment variables in config
func SubstituteEnvVarsInConfig(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Identity != nil {
		cfg.Identity.KeySourceEnv = SubstituteEnvVars(cfg.Identity.KeySourceEnv)
	}
	if cfg.Relay != nil {
		cfg.Relay.URL = SubstituteEnvVars(cfg.Relay.URL)
		cfg.Relay.Device = SubstituteEnvVars(cfg.Relay.Device)
	}
	if cfg.Store != nil {
		cfg.Store.Driver = SubstituteEnvVars(cfg.Store.Driver)
		cfg.Store.DSN = SubstituteEnvVars(cfg.Store.DSN)
	}
	if cfg.Logging != nil {
		cfg.Logging.Level = SubstituteEnvVars(cfg.Logging.Level)
	}
	if cfg.Directory != nil {
		cfg.Directory.BaseURL = SubstituteEnvVars(cfg.Directory.BaseURL)
	}
}

// applyEnvironmentOverrides overrides config with environment variables
// (highest priority, applied after file + substitution).
func applyEnvironmentOverrides(cfg *Config) {
	if relayURL := os.Getenv("GNS_RELAY_URL"); relayURL != "" && cfg.Relay != nil {
		cfg.Relay.URL = relayURL
	}
	if device := os.Getenv("GNS_RELAY_DEVICE"); device != "" && cfg.Relay != nil {
		cfg.Relay.Device = device
	}

	if driver := os.Getenv("GNS_STORE_DRIVER"); driver != "" && cfg.Store != nil {
		cfg.Store.Driver = driver
	}
	if dsn := os.Getenv("GNS_STORE_DSN"); dsn != "" && cfg.Store != nil {
		cfg.Store.DSN = dsn
	}

	if logLevel := os.Getenv("GNS_LOG_LEVEL"); logLevel != "" && cfg.Logging != nil {
		cfg.Logging.Level = logLevel
	}
	if pretty := os.Getenv("GNS_LOG_PRETTY"); pretty != "" && cfg.Logging != nil {
		if v, err := strconv.ParseBool(pretty); err == nil {
			cfg.Logging.Pretty = v
		}
	}

	if baseURL := os.Getenv("GNS_DIRECTORY_URL"); baseURL != "" && cfg.Directory != nil {
		cfg.Directory.BaseURL = baseURL
	}
}

// GetEnvironment returns the current environment from GNS_ENV or defaults to development
func GetEnvironment() string {
	env := os.Getenv("GNS_ENV")
	if env == "" {
		env = os.Getenv("ENVIRONMENT")
	}
	if env == "" {
		env = "development"
	}
	return strings.ToLower(env)
}

// IsProduction returns true if running in production environment
func IsProduction() bool {
	return GetEnvironment() == "production"
}

// IsDevelopment returns true if running in development or local environment
func IsDevelopment() bool {
	env := GetEnvironment()
	return env == "development" || env == "local"
}

package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstituteEnvVarsUsesDefaultWhenUnset(t *testing.T) {
	os.Unsetenv("GNS_CONFIG_TEST_VAR")
	assert.Equal(t, "fallback", SubstituteEnvVars("${GNS_CONFIG_TEST_VAR:fallback}"))
}

func TestSubstituteEnvVarsUsesSetValue(t *testing.T) {
	t.Setenv("GNS_CONFIG_TEST_VAR", "actual")
	assert.Equal(t, "actual", SubstituteEnvVars("${GNS_CONFIG_TEST_VAR:fallback}"))
}

func TestSubstituteEnvVarsInConfigWalksAllSections(t *testing.T) {
	t.Setenv("GNS_CONFIG_RELAY_URL", "ws://from-env/ws")
	cfg := &Config{Relay: &RelayConfig{URL: "${GNS_CONFIG_RELAY_URL}"}}
	SubstituteEnvVarsInConfig(cfg)
	assert.Equal(t, "ws://from-env/ws", cfg.Relay.URL)
}

func TestApplyEnvironmentOverridesTakesPriorityOverFile(t *testing.T) {
	t.Setenv("GNS_LOG_LEVEL", "debug")
	cfg := &Config{Logging: &LoggingConfig{Level: "info"}}
	applyEnvironmentOverrides(cfg)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestGetEnvironmentDefaultsToDevelopment(t *testing.T) {
	os.Unsetenv("GNS_ENV")
	os.Unsetenv("ENVIRONMENT")
	assert.Equal(t, "development", GetEnvironment())
}

func TestIsProductionReflectsGNSEnv(t *testing.T) {
	t.Setenv("GNS_ENV", "production")
	assert.True(t, IsProduction())
	assert.False(t, IsDevelopment())
}

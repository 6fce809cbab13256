package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keelframe/keel/framework/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := config.Load("testdata/does-not-exist.env")

	assert.Equal(t, "Keel", cfg.App.Name)
	assert.Equal(t, "local", cfg.App.Env)
	assert.True(t, cfg.App.Debug)
	assert.Equal(t, "8000", cfg.HTTP.Port)
	assert.Equal(t, 10, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_NAME", "custom-app")
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_DEBUG", "false")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg := config.Load("testdata/does-not-exist.env")

	assert.Equal(t, "custom-app", cfg.App.Name)
	assert.Equal(t, "production", cfg.App.Env)
	assert.False(t, cfg.App.Debug)
	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestHTTPConfig_Addr(t *testing.T) {
	h := config.HTTPConfig{Host: "127.0.0.1", Port: "8000"}
	assert.Equal(t, "127.0.0.1:8000", h.Addr())

	h.Host = ""
	assert.Equal(t, ":8000", h.Addr())
}

func TestGet_Helpers(t *testing.T) {
	t.Setenv("SOME_STRING", "value")
	t.Setenv("SOME_INT", "42")
	t.Setenv("SOME_BOOL", "true")
	t.Setenv("BAD_INT", "not-a-number")

	assert.Equal(t, "value", config.Get("SOME_STRING", "fallback"))
	assert.Equal(t, "fallback", config.Get("UNSET_STRING", "fallback"))
	assert.Equal(t, 42, config.GetInt("SOME_INT", 7))
	assert.Equal(t, 7, config.GetInt("BAD_INT", 7))
	assert.True(t, config.GetBool("SOME_BOOL", false))
	assert.False(t, config.GetBool("UNSET_BOOL", false))
}

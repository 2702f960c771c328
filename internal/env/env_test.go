package env

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serverSettings struct {
	Addr        string        `env:"TEST_ADDR" default:":8080"`
	DSN         string        `env:"TEST_DSN"`
	MaxConns    int           `env:"TEST_MAX_CONNS" default:"10"`
	Debug       bool          `env:"TEST_DEBUG" default:"false"`
	IdleTimeout time.Duration `env:"TEST_IDLE_TIMEOUT" default:"30s"`
}

func TestLoadDefaults(t *testing.T) {
	var cfg serverSettings
	require.NoError(t, Load(&cfg))

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Empty(t, cfg.DSN)
	assert.Equal(t, 10, cfg.MaxConns)
	assert.False(t, cfg.Debug)
	assert.Equal(t, 30*time.Second, cfg.IdleTimeout)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TEST_ADDR", ":9090")
	t.Setenv("TEST_DSN", "file:tasks.db")
	t.Setenv("TEST_MAX_CONNS", "25")
	t.Setenv("TEST_DEBUG", "true")
	t.Setenv("TEST_IDLE_TIMEOUT", "2m")

	var cfg serverSettings
	require.NoError(t, Load(&cfg))

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "file:tasks.db", cfg.DSN)
	assert.Equal(t, 25, cfg.MaxConns)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 2*time.Minute, cfg.IdleTimeout)
}

func TestLoadEmptyValueOverridesDefault(t *testing.T) {
	t.Setenv("TEST_ADDR", "")

	var cfg serverSettings
	require.NoError(t, Load(&cfg))
	assert.Empty(t, cfg.Addr)
}

func TestLoadInvalidValue(t *testing.T) {
	t.Setenv("TEST_MAX_CONNS", "not-a-number")

	var cfg serverSettings
	err := Load(&cfg)
	require.Error(t, err)

	var invalid ErrInvalidValue
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "TEST_MAX_CONNS", invalid.EnvVar)
	assert.Equal(t, "MaxConns", invalid.Field)
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("TEST_IDLE_TIMEOUT", "banana")

	var cfg serverSettings
	var invalid ErrInvalidValue
	require.ErrorAs(t, Load(&cfg), &invalid)
	assert.Equal(t, "TEST_IDLE_TIMEOUT", invalid.EnvVar)
}

func TestLoadNotStructPointer(t *testing.T) {
	var cfg serverSettings

	var notPtr ErrNotStructPointer
	require.ErrorAs(t, Load(cfg), &notPtr)

	n := 42
	require.ErrorAs(t, Load(&n), &notPtr)
}

type nestedSettings struct {
	Name  string `env:"TEST_NESTED_NAME" default:"dayplan"`
	Inner serverSettings
}

func TestLoadNestedStruct(t *testing.T) {
	t.Setenv("TEST_ADDR", ":7070")

	var cfg nestedSettings
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "dayplan", cfg.Name)
	assert.Equal(t, ":7070", cfg.Inner.Addr)
	assert.Equal(t, 10, cfg.Inner.MaxConns)
}

type validatedSettings struct {
	Port int `env:"TEST_VALIDATED_PORT" default:"8080"`
}

var errPortRange = errors.New("port out of range")

func (s *validatedSettings) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return errPortRange
	}
	return nil
}

func TestLoadValidator(t *testing.T) {
	var cfg validatedSettings
	require.NoError(t, Load(&cfg))

	t.Setenv("TEST_VALIDATED_PORT", "99999")
	require.ErrorIs(t, Load(&cfg), errPortRange)
}

func TestLoadIgnoresUntaggedFields(t *testing.T) {
	type cfg struct {
		Tagged   string `env:"TEST_TAGGED"`
		Untagged string
	}

	t.Setenv("TEST_TAGGED", "yes")

	var c cfg
	require.NoError(t, Load(&c))
	assert.Equal(t, "yes", c.Tagged)
	assert.Empty(t, c.Untagged)
}

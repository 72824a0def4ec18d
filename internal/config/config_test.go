package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"educonnect/internal/auth"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("EDUCONNECT_CONFIG", "")
	t.Setenv("EDUCONNECT_JWT_KEY", "jwt-secret-key")
	t.Setenv("EDUCONNECT_JWT_ISSUER", "educonnect")
	t.Setenv("EDUCONNECT_HMAC_KEY", "hmac-secret-key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "hmac", cfg.Password.Scheme)
	assert.Equal(t, auth.DefaultTokenLifetime, cfg.JWT.Lifetime)
	assert.Equal(t, 30*time.Minute, cfg.JWT.Lifetime)
	assert.Equal(t, "educonnect", cfg.JWT.Audience, "audience falls back to issuer")
}

func TestLoad_MissingSecretsFail(t *testing.T) {
	tests := []struct {
		name  string
		unset string
		want  string
	}{
		{name: "jwt key", unset: "EDUCONNECT_JWT_KEY", want: "jwt key"},
		{name: "issuer", unset: "EDUCONNECT_JWT_ISSUER", want: "jwt issuer"},
		{name: "hmac key", unset: "EDUCONNECT_HMAC_KEY", want: "hmac key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.unset, "")

			_, err := Load()
			require.Error(t, err)
			assert.ErrorIs(t, err, auth.ErrConfigurationMissing)
			assert.Contains(t, err.Error(), tt.want)
			assert.NotContains(t, err.Error(), "secret-key")
		})
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	setRequired(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
http_addr: ":9090"
log:
  level: debug
jwt:
  issuer: file-issuer
  audience: mobile
  lifetime: 10m
password:
  scheme: argon2id
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("EDUCONNECT_CONFIG", path)
	t.Setenv("EDUCONNECT_JWT_ISSUER", "")
	t.Setenv("EDUCONNECT_HTTP_ADDR", ":7070")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.HTTPAddr, "env overrides file")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "file-issuer", cfg.JWT.Issuer)
	assert.Equal(t, "mobile", cfg.JWT.Audience)
	assert.Equal(t, 10*time.Minute, cfg.JWT.Lifetime)
	assert.Equal(t, "argon2id", cfg.Password.Scheme)
}

func TestLoad_BadFile(t *testing.T) {
	setRequired(t)
	t.Setenv("EDUCONNECT_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.Error(t, err)
}

func TestValidate_UnknownScheme(t *testing.T) {
	cfg := defaults()
	cfg.JWT.Key = "k"
	cfg.JWT.Issuer = "i"
	cfg.Password.HMACKey = "h"
	cfg.Password.Scheme = "md5"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "md5")
}

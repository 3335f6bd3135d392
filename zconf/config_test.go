package zconf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SparkleBo/zchain/zerr"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, ":8888", cfg.TCP.Addr)
	assert.Equal(t, 4096, cfg.TCP.MaxLine)
	assert.Equal(t, 100, cfg.RateLimit.RPS)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.Pipeline.Intercept)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ZCHAIN_HTTP__ADDR", ":9000")
	t.Setenv("ZCHAIN_RATE_LIMIT__RPS", "5")
	t.Setenv("ZCHAIN_PIPELINE__INTERCEPT", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, 5, cfg.RateLimit.RPS)
	assert.False(t, cfg.Pipeline.Intercept)
}

func TestLoad_Files(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: "zchain.toml",
			content: `[http]
addr = ":7001"

[rate_limit]
rps = 3
burst = 4
`,
		},
		{
			name: "yaml",
			file: "zchain.yaml",
			content: `http:
  addr: ":7001"
rate_limit:
  rps: 3
  burst: 4
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, ":7001", cfg.HTTP.Addr)
			assert.Equal(t, 3, cfg.RateLimit.RPS)
			assert.Equal(t, 4, cfg.RateLimit.Burst)
			// 文件未覆盖的字段保持默认值
			assert.Equal(t, ":8888", cfg.TCP.Addr)
		})
	}
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zchain.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  addr: \":7001\"\n"), 0o644))
	t.Setenv("ZCHAIN_HTTP__ADDR", ":7002")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7002", cfg.HTTP.Addr)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "zchain.ini"))
	assert.True(t, zerr.IsErrorCode(err, zerr.ErrConfigLoad))

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, zerr.IsErrorCode(err, zerr.ErrConfigLoad))

	t.Setenv("ZCHAIN_RATE_LIMIT__BURST", "0")
	_, err = Load("")
	assert.True(t, zerr.IsErrorCode(err, zerr.ErrConfigInvalid))
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "http.addr", envKey("ZCHAIN_HTTP__ADDR"))
	assert.Equal(t, "rate_limit.burst", envKey("ZCHAIN_RATE_LIMIT__BURST"))
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpgate/mcpgate/internal/core/logger"
)

const minimalConfig = `
server:
  command: mcp-server
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Listen.Host)
	assert.Equal(t, 8840, cfg.Listen.Port)
	assert.Equal(t, "mcp-server", cfg.Server.Command)
	assert.Equal(t, "USER_ACCESS_TOKEN", cfg.Server.TokenVar)
	assert.Equal(t, 5*time.Second, cfg.Shutdown.GracePeriod.Std())
	assert.Equal(t, 0, cfg.Limits.MaxSessions)
	assert.Equal(t, "127.0.0.1:8840", cfg.Addr())
}

func TestLoad_FullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
listen:
  host: 0.0.0.0
  port: 9000
server:
  command: python
  args: ["main.py", "--stdio"]
  env:
    API_PROXY_URL: http://localhost:8031
    AUTH_API_URL: http://localhost:8030
  token_var: ACCESS_TOKEN
limits:
  max_sessions: 16
shutdown:
  grace_period: 2s
log:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Addr())
	assert.Equal(t, []string{"main.py", "--stdio"}, cfg.Server.Args)
	assert.Equal(t, "http://localhost:8031", cfg.Server.Env["API_PROXY_URL"])
	assert.Equal(t, "ACCESS_TOKEN", cfg.Server.TokenVar)
	assert.Equal(t, 16, cfg.Limits.MaxSessions)
	assert.Equal(t, 2*time.Second, cfg.Shutdown.GracePeriod.Std())
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing command", "listen:\n  port: 9000\n"},
		{"bad port", "listen:\n  port: 99999\nserver:\n  command: x\n"},
		{"negative sessions", "server:\n  command: x\nlimits:\n  max_sessions: -1\n"},
		{"bad duration", "server:\n  command: x\nshutdown:\n  grace_period: soonish\n"},
		{"bad log format", "server:\n  command: x\nlog:\n  format: xml\n"},
		{"unknown field", "server:\n  command: x\n  shell: bash\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestWatcher_ReloadOnRewrite(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	reloaded := make(chan *Config, 1)
	watcher, err := NewWatcher(path, logger.Nop(), func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, os.WriteFile(path, []byte(`
server:
  command: updated-server
`), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "updated-server", cfg.Server.Command)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not deliver reloaded config")
	}
}

func TestWatcher_BadRewriteKeepsOld(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	reloaded := make(chan *Config, 1)
	watcher, err := NewWatcher(path, logger.Nop(), func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	require.NoError(t, err)
	defer watcher.Close()

	// Invalid rewrite must not reach the callback.
	require.NoError(t, os.WriteFile(path, []byte("listen: [broken"), 0o644))

	select {
	case cfg := <-reloaded:
		t.Fatalf("callback fired for invalid config: %+v", cfg)
	case <-time.After(500 * time.Millisecond):
	}
}

package boot_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junioryono/autowire"
	"github.com/junioryono/autowire/annotation"
	"github.com/junioryono/autowire/boot"
)

type Server struct {
	Host string
	Port int
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "config.yml", "db:\n  host: localhost\n  port: 5432\n")

	t.Run("file and defaults", func(t *testing.T) {
		v, err := boot.LoadConfig(boot.ConfigOptions{
			File:     file,
			Defaults: map[string]any{"db.host": "default", "http.port": 8080},
		})
		require.NoError(t, err)
		assert.Equal(t, "localhost", v.GetString("db.host"))
		assert.Equal(t, 5432, v.GetInt("db.port"))
		assert.Equal(t, 8080, v.GetInt("http.port"))
		assert.Equal(t, file, v.ConfigFileUsed())
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("AWCFG_DB_HOST", "db.internal")

		v, err := boot.LoadConfig(boot.ConfigOptions{File: file, EnvPrefix: "AWCFG"})
		require.NoError(t, err)
		assert.Equal(t, "db.internal", v.GetString("db.host"))
	})

	t.Run("env file", func(t *testing.T) {
		envFile := writeFile(t, dir, ".env", "AWENV_DB_HOST=from-dotenv\n")
		t.Cleanup(func() { os.Unsetenv("AWENV_DB_HOST") })

		v, err := boot.LoadConfig(boot.ConfigOptions{File: file, EnvFile: envFile, EnvPrefix: "AWENV"})
		require.NoError(t, err)
		assert.Equal(t, "from-dotenv", v.GetString("db.host"))
	})

	t.Run("missing env file is ignored", func(t *testing.T) {
		_, err := boot.LoadConfig(boot.ConfigOptions{EnvFile: filepath.Join(dir, "missing.env")})
		assert.NoError(t, err)
	})

	t.Run("missing config file fails", func(t *testing.T) {
		_, err := boot.LoadConfig(boot.ConfigOptions{File: filepath.Join(dir, "missing.yml")})
		assert.Error(t, err)
	})
}

func TestConfigBooter(t *testing.T) {
	ctx := context.Background()
	file := writeFile(t, t.TempDir(), "config.yml", "db:\n  host: localhost\n  port: 5432\n")

	reg := autowire.NewRegistry()
	require.NoError(t, reg.Mark(annotation.OnType[Server](), reg.Component()))
	require.NoError(t, reg.Mark(annotation.OnField[Server]("Host"), reg.Autowired(boot.ConfigKey("db.host"))))
	require.NoError(t, reg.Mark(annotation.OnField[Server]("Port"), reg.Autowired(boot.ConfigKey("db.port"))))

	app := boot.New(autowire.WithRegistry(reg))
	app.Use(
		boot.Config(boot.ConfigOptions{File: file, Defaults: map[string]any{"http.port": 8080}}),
		boot.Components(),
	)
	require.NoError(t, app.Start(ctx))

	srv, err := autowire.GetByType[*Server](ctx, app.Container)
	require.NoError(t, err)
	assert.Equal(t, "localhost", srv.Host)
	assert.Equal(t, 5432, srv.Port)

	port, err := autowire.Get[int](ctx, app.Container, boot.ConfigKey("http.port"))
	require.NoError(t, err)
	assert.Equal(t, 8080, port)

	v, err := autowire.Get[*viper.Viper](ctx, app.Container, boot.ConfigID)
	require.NoError(t, err)
	assert.Equal(t, "localhost", v.GetString("db.host"))

	assert.Equal(t, "config:db.host", boot.ConfigKey("db.host").String())

	t.Run("logs the loaded file", func(t *testing.T) {
		var buf bytes.Buffer
		app := boot.New(autowire.WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))
		require.NoError(t, app.Use(boot.Config(boot.ConfigOptions{File: file})).Start(ctx))

		assert.Contains(t, buf.String(), "configuration loaded")
		assert.Contains(t, buf.String(), `"keys":2`)
	})
}

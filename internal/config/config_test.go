package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadAppliesDefaultsForUnsetFields(t *testing.T) {
	path := writeConfigFile(t, `
database:
  host: localhost
  dbname: catalyst
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "America/New_York", cfg.Market.Timezone)
	assert.Equal(t, 30.0, cfg.Scanner.MinCatalystScore)
	assert.Equal(t, 5, cfg.Scanner.TopK)
}

func TestLoadOverridesDefaultsFromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: "9090"
scanner:
  topK: 10
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Scanner.TopK)
}

func TestLoadEnvironmentVariableOverridesFileValue(t *testing.T) {
	path := writeConfigFile(t, `
serviceKey: "from-file-key"
`)
	t.Setenv("SERVICEKEY", "from-env-key")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env-key", cfg.ServiceKey)
}

func TestLoadReturnsErrorWhenFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}

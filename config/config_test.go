package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, n := range []string{
		EnvHwrApplicationKey, EnvHwrHmac, EnvHwrURL, EnvVisionAPIKey, EnvVisionURL,
		EnvVisionModel, EnvDebounce, EnvEntitlementToken, EnvStorePath, EnvTrace, EnvLogFile,
		envRmapiHwrApplicationKey, envRmapiHwrHmac, envOpenAIKey,
	} {
		t.Setenv(n, "")
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 1500*time.Millisecond, cfg.Recognize.Debounce)
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte(`
hwr:
  applicationKey: app
  hmacKey: secret
vision:
  model: local-model
recognize:
  debounce: 2500ms
  parallelism: 2
store:
  enabled: true
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "app", cfg.Hwr.ApplicationKey)
	assert.Equal(t, "secret", cfg.Hwr.HmacKey)
	assert.Equal(t, "en_US", cfg.Hwr.Lang, "defaults survive")
	assert.Equal(t, "local-model", cfg.Vision.Model)
	assert.Equal(t, 2500*time.Millisecond, cfg.Recognize.Debounce)
	assert.EqualValues(t, 2, cfg.Recognize.Parallelism)
	assert.True(t, cfg.Store.Enabled)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(envRmapiHwrApplicationKey, "legacy")
	t.Setenv(EnvHwrHmac, "h")
	t.Setenv(EnvVisionAPIKey, "sk")
	t.Setenv(EnvDebounce, "800")
	t.Setenv(EnvTrace, "1")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "legacy", cfg.Hwr.ApplicationKey)
	assert.Equal(t, "h", cfg.Hwr.HmacKey)
	assert.Equal(t, "sk", cfg.Vision.APIKey)
	assert.Equal(t, 800*time.Millisecond, cfg.Recognize.Debounce)
	assert.True(t, cfg.Log.Trace)

	t.Setenv(EnvHwrApplicationKey, "new")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "new", cfg.Hwr.ApplicationKey)
}

func TestLoadInvalid(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte("recognize: [1"), 0600))
	_, err := Load(path)
	assert.Error(t, err)

	require.NoError(t, ioutil.WriteFile(path, []byte("recognize:\n  parallelism: 0\n"), 0600))
	_, err = Load(path)
	assert.Error(t, err)

	t.Setenv(EnvDebounce, "soon")
	_, err = Load("")
	assert.Error(t, err)
}

package client

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigDir(t *testing.T) {
	dir, err := GetConfigDir()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(dir))
	assert.True(t, strings.HasSuffix(dir, "shopmate"))
}

func TestGetConfigPath(t *testing.T) {
	path, err := GetConfigPath()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "config.json"))
}

func TestLoadGlobalConfig_FileNotExists(t *testing.T) {
	isolateConfig(t)

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Nil(t, config)
}

func TestSaveAndLoadGlobalConfig(t *testing.T) {
	path := isolateConfig(t)

	require.NoError(t, SaveGlobalConfig(&GlobalConfig{APIKey: "sm-key", APIURL: "http://shop:8000"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Equal(t, &GlobalConfig{APIKey: "sm-key", APIURL: "http://shop:8000"}, config)
}

func TestSaveGlobalConfig_Nil(t *testing.T) {
	assert.Error(t, SaveGlobalConfig(nil))
}

func TestLoadGlobalConfig_InvalidJSON(t *testing.T) {
	path := isolateConfig(t)
	require.NoError(t, os.WriteFile(path, []byte("{invalid json}"), 0600))

	_, err := LoadGlobalConfig()
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestDeleteGlobalConfig(t *testing.T) {
	path := isolateConfig(t)

	assert.NoError(t, DeleteGlobalConfig())

	require.NoError(t, SaveGlobalConfig(&GlobalConfig{APIURL: "http://x"}))
	require.NoError(t, DeleteGlobalConfig())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestGetCredentialSource(t *testing.T) {
	isolateConfig(t)

	source, _, url := GetCredentialSource("", "")
	assert.Equal(t, SourceDefault, source)
	assert.Equal(t, defaultAPIURL, url)

	require.NoError(t, SaveGlobalConfig(&GlobalConfig{APIKey: "k", APIURL: "http://cfg"}))
	source, key, url := GetCredentialSource("", "")
	assert.Equal(t, SourceGlobalConfig, source)
	assert.Equal(t, "k", key)
	assert.Equal(t, "http://cfg", url)

	t.Setenv(envAPIURL, "http://env")
	source, _, url = GetCredentialSource("", "")
	assert.Equal(t, SourceEnv, source)
	assert.Equal(t, "http://env", url)

	source, key, url = GetCredentialSource("fk", "http://flag")
	assert.Equal(t, SourceFlag, source)
	assert.Equal(t, "fk", key)
	assert.Equal(t, "http://flag", url)
}

package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cytodash/domain/core"
	"cytodash/internal/config"
	"cytodash/internal/errors"
	"cytodash/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(file string) *config.Config {
	return &config.Config{
		Data:   config.DataConfig{File: file, SourceTimeout: 5 * time.Second},
		Server: config.ServerConfig{Port: "8080", GinMode: "test"},
	}
}

func TestContainer_LoadDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serum.csv")
	require.NoError(t, os.WriteFile(path, []byte(testkit.PanelCSV), 0o644))

	c, err := New(testConfig(path), nil)
	require.NoError(t, err)
	require.NoError(t, c.LoadDataset(context.Background()))

	require.NotNil(t, c.Dashboard)
	assert.NoError(t, c.LoadErr)
	assert.Equal(t, "serum.csv", c.Dashboard.Dataset().Source)
	assert.Equal(t, testkit.PanelAnalytes, c.Dashboard.Analytes())
	assert.NoError(t, c.Shutdown(context.Background()))
}

func TestContainer_MissingFileKeepsError(t *testing.T) {
	c, err := New(testConfig(filepath.Join(t.TempDir(), "absent.csv")), nil)
	require.NoError(t, err)

	err = c.LoadDataset(context.Background())

	require.Error(t, err)
	assert.Nil(t, c.Dashboard)
	assert.True(t, core.IsSourceUnavailable(c.LoadErr))
	assert.Equal(t, errors.CodeSourceUnavailable, errors.GetCode(c.LoadErr))
}

func TestContainer_BadTaxonomyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groups.yaml")
	require.NoError(t, os.WriteFile(path, []byte("groups: []\n"), 0o644))

	cfg := testConfig("serum.csv")
	cfg.Data.TaxonomyFile = path

	_, err := New(cfg, nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

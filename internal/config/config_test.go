package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Offers.Backend)
	assert.Equal(t, 0.28, cfg.Matching.Threshold)
	assert.Equal(t, 4, cfg.Matching.Shortlist)
	assert.Equal(t, 0.3, cfg.Matching.WeightText)
	assert.Equal(t, 100, cfg.Model.Trees)
	assert.Equal(t, 10*time.Second, cfg.Worker.PollInterval)
	assert.Equal(t, "fr", cfg.Translation.Target)
	assert.False(t, cfg.Translation.Enabled)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "8080")
	t.Setenv("OFFERS_BACKEND", "sqlite")
	t.Setenv("MATCH_THRESHOLD", "0.5")
	t.Setenv("WORKER_CONCURRENCY", "7")
	t.Setenv("TRANSLATION_ENABLED", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Offers.Backend)
	assert.Equal(t, 0.5, cfg.Matching.Threshold)
	assert.Equal(t, 7, cfg.Worker.Concurrency)
	assert.True(t, cfg.Translation.Enabled)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "cvmatch.yaml")
	content := "matching:\n  shortlist: 10\nmodel:\n  trees: 25\n  train-on-missing: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Matching.Shortlist)
	assert.Equal(t, 25, cfg.Model.Trees)
	assert.True(t, cfg.Model.TrainOnMissing)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OFFERS_BACKEND", "mongo")
	t.Setenv("MATCH_THRESHOLD", "2")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offers.backend")
	assert.Contains(t, err.Error(), "matching.threshold")
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Host: "db", Port: "5433", User: "u", Password: "p", DBName: "cv"}}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=cv sslmode=disable", cfg.GetDatabaseDSN())
}

func TestOpenSQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "offers.db")

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(filepath.Dir(path))
	assert.NoError(t, err)
}

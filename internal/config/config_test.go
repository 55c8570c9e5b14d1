package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, time.Hour, cfg.Results.TTL)
	assert.Equal(t, 5*time.Minute, cfg.Results.SweepInterval)
	assert.Equal(t, ComplianceModeGlobal, cfg.Compliance.Mode)
	assert.Equal(t, 0.7, cfg.Compliance.LowConfidence)
	require.NoError(t, cfg.Validate())
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "bookkeeping.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
company:
  name: Muster AG
  fiscal_year: 2024
results:
  ttl: 30m
  sweep_interval: 1m
compliance:
  mode: per_transaction
`), 0o644))

	t.Setenv("RESULTS_TTL", "2h")
	t.Setenv("EXPORT_BUCKET", "ledger-exports")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Muster AG", cfg.Company.Name)
	assert.Equal(t, 2024, cfg.Company.FiscalYear)
	assert.Equal(t, 2*time.Hour, cfg.Results.TTL)
	assert.Equal(t, time.Minute, cfg.Results.SweepInterval)
	assert.Equal(t, ComplianceModePerTransaction, cfg.Compliance.Mode)
	assert.Equal(t, "ledger-exports", cfg.Export.Bucket)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("COMPANY_NAME=Beispiel GmbH\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("COMPANY_NAME") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Beispiel GmbH", cfg.Company.Name)
}

func TestLoad_MissingFile(t *testing.T) {
	chdirTemp(t)
	_, err := Load("does-not-exist.yaml")
	require.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "out.yaml")

	cfg := Default()
	cfg.Company.Name = "Roundtrip SA"
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Roundtrip SA", got.Company.Name)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero ttl", func(c *Config) { c.Results.TTL = 0 }},
		{"negative interval", func(c *Config) { c.Results.SweepInterval = -time.Second }},
		{"unknown backend", func(c *Config) { c.Results.Backend = "memcached" }},
		{"unknown mode", func(c *Config) { c.Compliance.Mode = "strict" }},
		{"threshold above one", func(c *Config) { c.Compliance.LowConfidence = 1.5 }},
		{"bigquery without project", func(c *Config) { c.BigQuery.Enabled = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(campIDEnv, "")
	t.Setenv(campCodeEnv, "")
	t.Setenv(locationIDEnv, "")
	t.Setenv(logLevelEnv, "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 500*time.Millisecond, cfg.Fetch.RateLimit)
	assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 3, cfg.Fetch.MaxAttempts)
	assert.Equal(t, []string{"both"}, cfg.Output.Formats)
	assert.Equal(t, "./output", cfg.Output.Dir)
	assert.Equal(t, defaultTimezone, cfg.Site.Location().String())

	assert.Error(t, cfg.Validate())
}

func TestLoadMergesFileLocalAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scraper.yaml")
	writeFile(t, path, `
camp:
  id: 502
  code: cis
  locationId: 5710
fetch:
  rateLimit: 2s
  maxAttempts: 5
output:
  formats: [yaml, ics]
site:
  timezone: America/New_York
`)
	writeFile(t, filepath.Join(dir, "scraper.local.yaml"), `
camp:
  grade: 3rd
fetch:
  timeout: 30s
`)

	t.Setenv(configPathEnv, "")
	t.Setenv(campIDEnv, "")
	t.Setenv(campCodeEnv, "abc")
	t.Setenv(locationIDEnv, "")
	t.Setenv(logLevelEnv, "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 502, cfg.Camp.ID)
	assert.Equal(t, "abc", cfg.Camp.Code)
	assert.Equal(t, 5710, cfg.Camp.LocationID)
	assert.Equal(t, "3rd", cfg.Camp.GradeFilter)
	assert.Equal(t, 2*time.Second, cfg.Fetch.RateLimit)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 5, cfg.Fetch.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Fetch.BackoffUnit)
	assert.Equal(t, []string{"yaml", "ics"}, cfg.Output.Formats)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "America/New_York", cfg.Site.Location().String())

	sc := cfg.ScrapeConfig()
	assert.Equal(t, 502, sc.CampID)
	assert.Equal(t, "abc", sc.CampCode)
	assert.Equal(t, "3rd", sc.GradeFilter)
	assert.Equal(t, 5, sc.MaxAttempts)
}

func TestLoadZeroRateLimitDisablesPacing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scraper.yaml")
	writeFile(t, path, "fetch:\n  rateLimit: 2s\n")
	writeFile(t, filepath.Join(dir, "scraper.local.yaml"), "fetch:\n  rateLimit: 0s\n")
	t.Setenv(configPathEnv, "")
	t.Setenv(campIDEnv, "")
	t.Setenv(campCodeEnv, "")
	t.Setenv(locationIDEnv, "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.Fetch.RateLimit)
	assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Setenv(configPathEnv, "")

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(campIDEnv, "five-oh-two")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadFallsBackOnUnknownTimezone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraper.yaml")
	writeFile(t, path, "site:\n  timezone: Mars/Olympus\n")
	t.Setenv(configPathEnv, "")
	t.Setenv(campIDEnv, "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, defaultTimezone, cfg.Site.Timezone)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := Default()
	valid.Camp = CampConfig{ID: 502, Code: "cis", LocationID: 5710}
	require.NoError(t, valid.Validate())

	cases := map[string]func(*Config){
		"missing camp id":  func(c *Config) { c.Camp.ID = 0 },
		"blank camp code":  func(c *Config) { c.Camp.Code = "  " },
		"missing location": func(c *Config) { c.Camp.LocationID = 0 },
		"negative rate":    func(c *Config) { c.Fetch.RateLimit = -time.Second },
		"zero timeout":     func(c *Config) { c.Fetch.Timeout = 0 },
		"zero attempts":    func(c *Config) { c.Fetch.MaxAttempts = 0 },
		"no formats":       func(c *Config) { c.Output.Formats = nil },
	}
	for name, mutate := range cases {
		cfg := valid
		cfg.Output.Formats = append([]string(nil), valid.Output.Formats...)
		mutate(&cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}

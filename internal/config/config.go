package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"UltraCampScraper/internal/domain"
)

const (
	defaultTimezone = "America/Los_Angeles"
	defaultBaseURL  = "https://www.ultracamp.com/info/"

	configPathEnv = "ULTRACAMP_SCRAPER_CONFIG"
	logLevelEnv   = "ULTRACAMP_LOG_LEVEL"
	campIDEnv     = "ULTRACAMP_CAMP_ID"
	campCodeEnv   = "ULTRACAMP_CAMP_CODE"
	locationIDEnv = "ULTRACAMP_LOCATION_ID"
)

// Config holds every setting of a scrape run.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Camp    CampConfig    `yaml:"camp"`
	Site    SiteConfig    `yaml:"site"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Output  OutputConfig  `yaml:"output"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// CampConfig identifies the listing page to scrape.
type CampConfig struct {
	ID          int    `yaml:"id"`
	Code        string `yaml:"code"`
	LocationID  int    `yaml:"locationId"`
	GradeFilter string `yaml:"grade"`
}

// SiteConfig describes the remote site and how calendar output is anchored.
type SiteConfig struct {
	BaseURL   string         `yaml:"baseUrl"`
	UserAgent string         `yaml:"userAgent"`
	Timezone  string         `yaml:"timezone"`
	location  *time.Location `yaml:"-"`
}

// Location resolves the site timezone string to a time.Location.
func (s SiteConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FetchConfig tunes the pacing gate and retry policy.
type FetchConfig struct {
	RateLimit   time.Duration `yaml:"rateLimit"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BackoffUnit time.Duration `yaml:"backoffUnit"`
}

// OutputConfig selects export formats and the target directory.
type OutputConfig struct {
	Formats []string `yaml:"formats"`
	Dir     string   `yaml:"dir"`
}

// Load builds the configuration from defaults, the YAML file at path (or the
// path named by ULTRACAMP_SCRAPER_CONFIG), its sibling <name>.local.<ext>
// and finally environment overrides. A missing file is only an error when a
// path was given explicitly.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(configPathEnv)
	}

	if path != "" {
		found, err := mergeFile(&cfg, path)
		if err != nil {
			return Config{}, err
		}
		if !found && explicit {
			return Config{}, fmt.Errorf("config: %s: %w", path, os.ErrNotExist)
		}
		if _, err := mergeFile(&cfg, localPath(path)); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}
	cfg.bindTimezone()

	return cfg, nil
}

// Default returns the settings used when nothing else is configured.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Site: SiteConfig{
			BaseURL:  defaultBaseURL,
			Timezone: defaultTimezone,
		},
		Fetch: FetchConfig{
			RateLimit:   500 * time.Millisecond,
			Timeout:     10 * time.Second,
			MaxAttempts: 3,
			BackoffUnit: 2 * time.Second,
		},
		Output: OutputConfig{
			Formats: []string{"both"},
			Dir:     "./output",
		},
	}
}

func mergeFile(cfg *Config, path string) (bool, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("config: read %s: %w", path, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return false, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := mergo.Merge(cfg, fileCfg, mergo.WithOverride); err != nil {
		return false, fmt.Errorf("config: merge %s: %w", path, err)
	}

	// mergo skips zero values, yet rateLimit: 0 is how a file turns pacing off.
	var explicit struct {
		Fetch struct {
			RateLimit *time.Duration `yaml:"rateLimit"`
		} `yaml:"fetch"`
	}
	if err := yaml.Unmarshal(raw, &explicit); err != nil {
		return false, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if explicit.Fetch.RateLimit != nil {
		cfg.Fetch.RateLimit = *explicit.Fetch.RateLimit
	}
	return true, nil
}

// localPath maps scraper.yaml to scraper.local.yaml in the same directory.
func localPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(campCodeEnv); v != "" {
		c.Camp.Code = v
	}

	if v := os.Getenv(campIDEnv); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", campIDEnv, err)
		}
		c.Camp.ID = id
	}

	if v := os.Getenv(locationIDEnv); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", locationIDEnv, err)
		}
		c.Camp.LocationID = id
	}

	return nil
}

func (c *Config) bindTimezone() {
	tz := c.Site.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		slog.Warn("config: unknown timezone, reverting to default", "timezone", tz, "default", defaultTimezone)
		tz = defaultTimezone
		if loc, err = time.LoadLocation(defaultTimezone); err != nil {
			loc = time.UTC
		}
	}
	c.Site.Timezone = tz
	c.Site.location = loc
}

// Validate reports the first missing or out-of-range run parameter.
func (c Config) Validate() error {
	switch {
	case c.Camp.ID <= 0:
		return errors.New("camp id is required")
	case strings.TrimSpace(c.Camp.Code) == "":
		return errors.New("camp code is required")
	case c.Camp.LocationID <= 0:
		return errors.New("location id is required")
	case c.Fetch.RateLimit < 0:
		return fmt.Errorf("rate limit must not be negative, got %s", c.Fetch.RateLimit)
	case c.Fetch.Timeout <= 0:
		return fmt.Errorf("timeout must be positive, got %s", c.Fetch.Timeout)
	case c.Fetch.MaxAttempts < 1:
		return fmt.Errorf("max attempts must be at least 1, got %d", c.Fetch.MaxAttempts)
	case len(c.Output.Formats) == 0:
		return errors.New("at least one output format is required")
	}
	return nil
}

// ScrapeConfig snapshots the run parameters handed to the pipeline.
func (c Config) ScrapeConfig() domain.ScrapeConfig {
	return domain.ScrapeConfig{
		CampID:      c.Camp.ID,
		CampCode:    c.Camp.Code,
		LocationID:  c.Camp.LocationID,
		GradeFilter: c.Camp.GradeFilter,
		RateLimit:   c.Fetch.RateLimit,
		Timeout:     c.Fetch.Timeout,
		MaxAttempts: c.Fetch.MaxAttempts,
	}
}

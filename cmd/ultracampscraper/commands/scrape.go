package commands

import (
	"time"

	"github.com/spf13/cobra"

	"UltraCampScraper/internal/app"
	"UltraCampScraper/internal/config"
	"UltraCampScraper/internal/logging"
)

var scrapeFlags struct {
	campID      int
	campCode    string
	locationID  int
	grade       string
	formats     []string
	outputDir   string
	rateLimit   time.Duration
	timeout     time.Duration
	maxAttempts int
	verbose     bool
}

func init() {
	f := scrapeCmd.Flags()
	f.IntVar(&scrapeFlags.campID, "camp-id", 0, "Camp ID (e.g. 502)")
	f.StringVar(&scrapeFlags.campCode, "camp-code", "", "Camp code (e.g. cis)")
	f.IntVar(&scrapeFlags.locationID, "location-id", 0, "Location ID (e.g. 5710)")
	f.StringVar(&scrapeFlags.grade, "grade", "", "Grade to filter (e.g. K, 1st, 3rd)")
	f.StringSliceVar(&scrapeFlags.formats, "format", nil, "Output formats: yaml, csv, ics, sqlite, both, all (default both)")
	f.StringVar(&scrapeFlags.outputDir, "output-dir", "", "Output directory (default ./output)")
	f.DurationVar(&scrapeFlags.rateLimit, "rate-limit", 0, "Minimum delay between requests (default 500ms)")
	f.DurationVar(&scrapeFlags.timeout, "timeout", 0, "Per-request timeout (default 10s)")
	f.IntVar(&scrapeFlags.maxAttempts, "retries", 0, "Attempts per page before giving up (default 3)")
	f.BoolVarP(&scrapeFlags.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape --camp-id <id> --camp-code <code> --location-id <id> [--grade <grade>] [--format <fmt>]",
	Short: "Scrapes the class listing and every class detail page, then exports the results.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		applyScrapeFlags(cmd, &cfg)

		logger := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, scrapeFlags.verbose)
		_, err = app.New(cfg, logger, cmd.OutOrStdout()).Run(cmd.Context())
		return err
	},
}

// applyScrapeFlags overrides cfg with the flags given on the command line.
func applyScrapeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("camp-id") {
		cfg.Camp.ID = scrapeFlags.campID
	}
	if flags.Changed("camp-code") {
		cfg.Camp.Code = scrapeFlags.campCode
	}
	if flags.Changed("location-id") {
		cfg.Camp.LocationID = scrapeFlags.locationID
	}
	if flags.Changed("grade") {
		cfg.Camp.GradeFilter = scrapeFlags.grade
	}
	if flags.Changed("format") {
		cfg.Output.Formats = scrapeFlags.formats
	}
	if flags.Changed("output-dir") {
		cfg.Output.Dir = scrapeFlags.outputDir
	}
	if flags.Changed("rate-limit") {
		cfg.Fetch.RateLimit = scrapeFlags.rateLimit
	}
	if flags.Changed("timeout") {
		cfg.Fetch.Timeout = scrapeFlags.timeout
	}
	if flags.Changed("retries") {
		cfg.Fetch.MaxAttempts = scrapeFlags.maxAttempts
	}
}

package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"UltraCampScraper/internal/ports"
)

const (
	// DefaultUserAgent is sent with every request; the site rejects non-browser clients.
	DefaultUserAgent   = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
	defaultMaxAttempts = 3
	defaultTimeout     = 10 * time.Second
	defaultBackoffUnit = 2 * time.Second
)

var tracer = otel.Tracer("ultracampscraper/fetcher")

// FetchError is returned once every attempt for a URL has failed.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Options tunes pacing, timeouts and retries.
type Options struct {
	// Interval is the minimum spacing between admitted requests. Zero disables pacing.
	Interval time.Duration
	// Timeout bounds a single HTTP round trip.
	Timeout     time.Duration
	MaxAttempts int
	// BackoffUnit is the first wait between attempts; later waits double it.
	BackoffUnit time.Duration
	UserAgent   string
	Logger      *slog.Logger
}

// Fetcher serializes outbound GETs through a single-permit pacing gate and
// retries failed attempts with exponential backoff.
type Fetcher struct {
	client      *resty.Client
	gate        *rate.Limiter
	maxAttempts int
	backoffUnit time.Duration
	logger      *slog.Logger

	// newTimer lets tests observe backoff waits; nil uses real timers.
	newTimer func() backoff.Timer
}

var _ ports.PageFetcher = (*Fetcher)(nil)

// New builds a Fetcher, filling unset options with defaults.
func New(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.BackoffUnit <= 0 {
		opts.BackoffUnit = defaultBackoffUnit
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent)

	return &Fetcher{
		client:      client,
		gate:        rate.NewLimiter(limit, 1),
		maxAttempts: opts.MaxAttempts,
		backoffUnit: opts.BackoffUnit,
		logger:      opts.Logger,
	}
}

// Fetch waits for the pacing gate once, then tries the URL up to the configured
// number of attempts. The returned error is a *FetchError unless ctx ended first.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	ctx, span := tracer.Start(ctx, "Fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("url", url)))
	defer span.End()

	if err := f.gate.Wait(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "pacing gate")
		return "", fmt.Errorf("wait for pacing gate: %w", err)
	}

	var (
		body     string
		attempts int
	)
	operation := func() error {
		attempts++
		var err error
		body, err = f.get(ctx, url)
		return err
	}
	notify := func(err error, wait time.Duration) {
		f.debug("fetch attempt failed", "url", url, "attempt", attempts, "retry_in", wait, "error", err)
	}

	var timer backoff.Timer
	if f.newTimer != nil {
		timer = f.newTimer()
	}

	err := backoff.RetryNotifyWithTimer(operation, f.policy(ctx), notify, timer)
	span.SetAttributes(attribute.Int("attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("fetch %s: %w", url, ctxErr)
		}
		if f.logger != nil {
			f.logger.Warn("fetch exhausted retries", "url", url, "attempts", attempts, "error", err)
		}
		return "", &FetchError{URL: url, Attempts: attempts, Err: err}
	}

	return body, nil
}

func (f *Fetcher) policy(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = f.backoffUnit
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxInterval = f.backoffUnit << 16
	exp.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(f.maxAttempts-1)), ctx)
}

func (f *Fetcher) get(ctx context.Context, url string) (string, error) {
	res, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("request page: %w", err)
	}

	if code := res.StatusCode(); code < 200 || code > 299 {
		return "", fmt.Errorf("unexpected status %s", res.Status())
	}

	return res.String(), nil
}

func (f *Fetcher) debug(msg string, args ...interface{}) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}

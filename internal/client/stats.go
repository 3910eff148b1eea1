package client

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/metrics"
)

// UserAgent is sent with every request; the site rejects non-browser agents
const UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_4) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36"

var statusMessages = map[int]string{
	http.StatusBadRequest:                    "malformed request",
	http.StatusUnauthorized:                  "access to this part of the site is not authorized",
	http.StatusForbidden:                     "the site refuses access",
	http.StatusNotFound:                      "nothing is associated with this URL",
	http.StatusRequestTimeout:                "the request timed out",
	http.StatusTeapot:                        "the server is a teapot",
	http.StatusTooManyRequests:               "too many requests in too short a timeframe",
	http.StatusUnavailableForLegalReasons:    "the contents are unavailable for legal reasons",
	http.StatusInternalServerError:           "internal server error",
	http.StatusBadGateway:                    "bad gateway",
	http.StatusServiceUnavailable:            "the page is unavailable",
	http.StatusGatewayTimeout:                "gateway timeout",
	http.StatusNetworkAuthenticationRequired: "network authentication required",
}

// StatusError is returned for any non-200 response from the stats site
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	msg, ok := statusMessages[e.StatusCode]
	if !ok {
		msg = "unhandled status code"
	}
	return fmt.Sprintf("[HTTP %d] %s: %s", e.StatusCode, msg, e.URL)
}

// Retryable reports whether the request may succeed if repeated
func (e *StatusError) Retryable() bool {
	switch e.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// IsNotFound reports whether err is a 404 from the stats site
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// Options configures a Client
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	RequestDelay   time.Duration
	MaxRetries     int
	MaxConcurrency int
	RetryDelay     time.Duration
}

// Client fetches pages from the stats site
type Client struct {
	http         *resty.Client
	rateLimiter  chan struct{} // Rate limiting semaphore
	maxRetries   int
	retryDelay   time.Duration
	requestDelay time.Duration

	mu       sync.Mutex
	nextSlot time.Time
}

// NewClient creates a new stats site client
func NewClient(opts Options) *Client {
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = 1
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = 1 * time.Second
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	rateLimiter := make(chan struct{}, opts.MaxConcurrency)
	for i := 0; i < opts.MaxConcurrency; i++ {
		rateLimiter <- struct{}{}
	}

	httpClient := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", UserAgent).
		SetHeader("Accept", "text/html")
	httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)

	return &Client{
		http:         httpClient,
		rateLimiter:  rateLimiter,
		maxRetries:   opts.MaxRetries,
		retryDelay:   opts.RetryDelay,
		requestDelay: opts.RequestDelay,
	}
}

// PlayByPlayPage fetches the play-by-play page of a contest
func (c *Client) PlayByPlayPage(ctx context.Context, gameID int) ([]byte, error) {
	body, err := c.get(ctx, "play_by_play", fmt.Sprintf("/contests/%d/play_by_play", gameID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch play-by-play for game %d: %w", gameID, err)
	}
	return body, nil
}

// AcademicYear returns the academic year the stats site files a date under.
// Seasons starting in August or later belong to the following year.
func AcademicYear(date time.Time) int {
	if date.Month() > time.July {
		return date.Year() + 1
	}
	return date.Year()
}

// DaySchedulePage fetches the livestream scoreboard listing a sport's games on one date
func (c *Client) DaySchedulePage(ctx context.Context, sportCode string, division int, date time.Time) ([]byte, error) {
	query := url.Values{}
	query.Set("utf8", "✓")
	query.Set("sport_code", sportCode)
	query.Set("academic_year", strconv.Itoa(AcademicYear(date)))
	query.Set("division", strconv.Itoa(division))
	query.Set("game_date", date.Format("01/02/2006"))
	query.Set("commit", "Submit")

	body, err := c.get(ctx, "day_schedule", "/contests/livestream_scoreboards?"+query.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s schedule for %s: %w", sportCode, date.Format("2006-01-02"), err)
	}
	return body, nil
}

// wait blocks until the politeness delay since the previous request has passed
func (c *Client) wait(ctx context.Context) error {
	if c.requestDelay <= 0 {
		return nil
	}

	c.mu.Lock()
	now := time.Now()
	slot := c.nextSlot
	if slot.Before(now) {
		slot = now
	}
	c.nextSlot = slot.Add(c.requestDelay)
	c.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Until(slot)):
		return nil
	}
}

// get performs a GET request with retry logic and rate limiting
func (c *Client) get(ctx context.Context, endpoint, path string) ([]byte, error) {
	// Rate limiting: acquire semaphore
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.rateLimiter:
		defer func() { c.rateLimiter <- struct{}{} }()
	}

	var lastErr error
	var retryAfter time.Duration
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s, unless the site asked for longer
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			if retryAfter > backoff {
				backoff = retryAfter
			}
			backoff += time.Duration(rand.Intn(250)) * time.Millisecond

			log.Info().
				Str("path", path).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying stats site request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := c.wait(ctx); err != nil {
			return nil, err
		}

		log.Debug().
			Str("path", path).
			Int("attempt", attempt+1).
			Msg("Making stats site request")

		start := time.Now()
		resp, err := c.http.R().SetContext(ctx).Get(path)
		duration := time.Since(start).Seconds()
		if err != nil {
			metrics.RecordSiteRequest(endpoint, "error", duration)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("stats site request failed: %w", err)
			continue
		}
		metrics.RecordSiteRequest(endpoint, strconv.Itoa(resp.StatusCode()), duration)

		if resp.StatusCode() == http.StatusOK {
			log.Debug().
				Str("path", path).
				Int("size", len(resp.Body())).
				Msg("Stats site request successful")
			return resp.Body(), nil
		}

		statusErr := &StatusError{StatusCode: resp.StatusCode(), URL: resp.Request.URL}
		if !statusErr.Retryable() {
			return nil, statusErr
		}

		lastErr = statusErr
		retryAfter = parseRetryAfter(resp.Header().Get("Retry-After"))
		log.Warn().
			Str("path", path).
			Int("status", resp.StatusCode()).
			Int("attempt", attempt+1).
			Msg("Received retryable error, will retry")
	}

	return nil, lastErr
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		return time.Until(t)
	}
	return 0
}

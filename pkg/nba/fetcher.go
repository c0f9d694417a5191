package nba

import (
	"errors"
	"net"
	"time"

	"golang.org/x/time/rate"

	"github.com/richard-senior/nbapredict/internal/logger"
	"github.com/richard-senior/nbapredict/pkg/metrics"
	"github.com/richard-senior/nbapredict/pkg/transport"
)

// Fetcher retrieves and parses one document
type Fetcher interface {
	Fetch(url string) (*Document, error)
}

// HTMLGetter is the transport a fetcher sits on, satisfied by *transport.HTMLClient
type HTMLGetter interface {
	GetHtml(url string) ([]byte, error)
}

// RateLimitedFetcher starts consecutive requests at least interval apart,
// whether or not the previous request succeeded
type RateLimitedFetcher struct {
	client  HTMLGetter
	limiter *rate.Limiter

	now   func() time.Time
	sleep func(time.Duration)
}

// NewRateLimitedFetcher wraps client with a minimum interval between calls.
// A zero interval disables the limit
func NewRateLimitedFetcher(client HTMLGetter, interval time.Duration) *RateLimitedFetcher {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &RateLimitedFetcher{
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		now:     time.Now,
		sleep:   time.Sleep,
	}
}

// NewFetcher builds the fetch path described by config: http client, rate
// limiter and, when CachePath is set, the on disk cache in front of both
func NewFetcher(config *Config) Fetcher {
	client := transport.NewHTMLClient(transport.ClientOptions{
		Timeout:   config.RequestTimeout,
		UserAgent: config.UserAgent,
		CABundle:  config.CABundle,
	})
	var f Fetcher = NewRateLimitedFetcher(client, config.RequestDelay)
	if config.CachePath != "" {
		f = NewCachingFetcher(config.CachePath, f)
	}
	return f
}

// Fetch waits out the remaining interval, then retrieves and parses url
func (f *RateLimitedFetcher) Fetch(url string) (*Document, error) {
	f.wait()

	start := f.now()
	body, err := f.client.GetHtml(url)
	metrics.ObserveFetchDuration(f.now().Sub(start))

	if err != nil {
		metrics.RecordFetch(metrics.FetchFailed)
		failure := classifyFailure(url, err)
		logger.Warn("Fetch failed", failure.Error())
		return nil, failure
	}

	doc, err := NewDocument(url, body)
	if err != nil {
		metrics.RecordFetch(metrics.FetchFailed)
		return nil, &FetchFailure{URL: url, Reason: "undecodable body", Err: err}
	}
	metrics.RecordFetch(metrics.FetchOK)
	logger.Debug("Fetched", url)
	return doc, nil
}

// wait reserves the next slot against the injected clock and sleeps until it
func (f *RateLimitedFetcher) wait() {
	now := f.now()
	if d := f.limiter.ReserveN(now, 1).DelayFrom(now); d > 0 {
		f.sleep(d)
	}
}

func classifyFailure(url string, err error) *FetchFailure {
	var statusErr *transport.StatusError
	if errors.As(err, &statusErr) {
		return &FetchFailure{URL: url, Reason: "non-success status", StatusCode: statusErr.StatusCode, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &FetchFailure{URL: url, Reason: "timeout", Err: err}
	}
	return &FetchFailure{URL: url, Reason: "network error", Err: err}
}

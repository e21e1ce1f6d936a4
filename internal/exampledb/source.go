package exampledb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// userAgent is sent by the scrapers, some sites refuse Go's default
const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/77.0.3865.90 Safari/537.36"

// Pair is a Chinese sentence with its English translation
type Pair struct {
	Chinese string
	English string
}

// Source provides example sentences for a word
type Source interface {
	// Sentences returns example sentences containing word
	Sentences(ctx context.Context, word string) ([]Pair, error)

	// Name identifies the source, it is stored with every sentence
	Name() string
}

// scraper holds what all HTTP based sources share
type scraper struct {
	client *http.Client
}

func newScraper(client *http.Client) scraper {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return scraper{client: client}
}

// get fetches url and returns the response for the caller to close
func (s scraper) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp, nil
}

// BreakerSource trips after repeated failures of the wrapped source so a
// dead site does not slow down every lookup
type BreakerSource struct {
	source  Source
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerSource wraps source in a circuit breaker that opens after
// failures consecutive errors and probes again after timeout
func NewBreakerSource(source Source, failures uint32, timeout time.Duration) *BreakerSource {
	if failures == 0 {
		failures = 3
	}
	settings := gobreaker.Settings{
		Name:        source.Name(),
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
	}
	return &BreakerSource{
		source:  source,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Sentences calls the wrapped source unless the breaker is open
func (b *BreakerSource) Sentences(ctx context.Context, word string) ([]Pair, error) {
	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.source.Sentences(ctx, word)
	})
	if err != nil {
		return nil, err
	}
	pairs, _ := result.([]Pair)
	return pairs, nil
}

// Name returns the wrapped source's name
func (b *BreakerSource) Name() string {
	return b.source.Name()
}

// State reports the breaker state, e.g. "closed" or "open"
func (b *BreakerSource) State() string {
	return b.breaker.State().String()
}

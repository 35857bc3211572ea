package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// RetryConfig defines retry and rate limit behavior for remote modules
type RetryConfig struct {
	MaxRetries        int
	MinWait           time.Duration
	MaxWait           time.Duration
	RequestsPerSecond float64 // zero or negative means unlimited
}

// DefaultRetryConfig returns the retry policy used by NewURLProvider.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		MinWait:    500 * time.Millisecond,
		MaxWait:    5 * time.Second,
	}
}

// URLProvider fetches modules mapped to URLs.
type URLProvider struct {
	client  *resty.Client
	limiter *rate.Limiter
	urls    map[string]string
}

// NewURLProvider creates a provider for the id to URL mapping.
func NewURLProvider(urls map[string]string, retry RetryConfig) *URLProvider {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = retry.MaxRetries
	retryClient.RetryWaitMin = retry.MinWait
	retryClient.RetryWaitMax = retry.MaxWait
	retryClient.Logger = nil // Disable logging

	client := resty.NewWithClient(retryClient.StandardClient()).
		SetTimeout(30*time.Second).
		SetHeader("User-Agent", "modloader/1.0").
		SetHeader("Accept", "application/javascript, text/plain, */*")

	copied := make(map[string]string, len(urls))
	for id, u := range urls {
		copied[id] = u
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if retry.RequestsPerSecond > 0 {
		burst := int(retry.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(retry.RequestsPerSecond), burst)
	}

	return &URLProvider{client: client, limiter: limiter, urls: copied}
}

func (p *URLProvider) Source(ctx context.Context, id string) (string, error) {
	u, ok := p.urls[id]
	if !ok {
		return "", fmt.Errorf("module %s: %w", id, ErrNotFound)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit error: %w", err)
	}

	resp, err := p.client.R().SetContext(ctx).Get(u)
	if err != nil {
		return "", fmt.Errorf("failed to fetch module %s: %w", id, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return "", fmt.Errorf("module %s at %s: %w", id, u, ErrNotFound)
	}
	if resp.IsError() {
		return "", fmt.Errorf("failed to fetch module %s: %s", id, resp.Status())
	}
	return resp.String(), nil
}

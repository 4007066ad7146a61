package http

import (
	"crypto/tls"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// HTTPClientOptions configures HTTP client creation
type HTTPClientOptions struct {
	// Timeout is the request timeout duration (0 means no timeout)
	Timeout time.Duration
	// SkipSSLVerify disables SSL certificate verification (use with caution)
	SkipSSLVerify bool
	// RetryMax is the number of retries for retryable clients
	RetryMax int
}

// NewHTTPClient creates an HTTP client with the specified options
func NewHTTPClient(opts HTTPClientOptions) *http.Client {
	client := &http.Client{
		Timeout: opts.Timeout,
	}

	// Only configure custom transport if SSL verification needs to be skipped
	if opts.SkipSSLVerify {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
		}
	}

	return client
}

// NewRetryableClient creates a client that retries connection errors and 5xx responses
// with exponential backoff. Retry attempts are logged through logger when it is set.
func NewRetryableClient(opts HTTPClientOptions, logger *slog.Logger) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.HTTPClient = NewHTTPClient(opts)
	client.RetryMax = opts.RetryMax
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.Logger = nil
	if logger != nil {
		client.Logger = logger
	}
	return client
}

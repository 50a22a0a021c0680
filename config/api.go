package config

import "time"

// APIConfig contains configuration for the upstream commerce REST API.
// The API is an external collaborator; this service only consumes it.
type APIConfig struct {
	// BaseURL is the root of the commerce API, without a trailing slash.
	BaseURL string `env:"BASE_URL" envDefault:"https://exclusive.runasp.net/api"`

	// Timeout is the per-request timeout for upstream calls.
	// Zero disables the timeout entirely, matching the upstream client
	// behavior where a hung request stays in flight indefinitely.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"0s"`

	// PageSize is the page size used when listing products.
	PageSize int `env:"PAGE_SIZE" envDefault:"16"`

	// FetchConcurrency bounds concurrent page fetches when materializing
	// the full catalog (wishlist rendering needs every page).
	FetchConcurrency int `env:"FETCH_CONCURRENCY" envDefault:"4"`
}

const (
	maxPageSize         = 100
	maxFetchConcurrency = 16
)

// Sanitize applies guardrails to API configuration values.
func (a *APIConfig) Sanitize() {
	if a.PageSize < 1 {
		a.PageSize = 1
	}
	if a.PageSize > maxPageSize {
		a.PageSize = maxPageSize
	}
	if a.FetchConcurrency < 1 {
		a.FetchConcurrency = 1
	}
	if a.FetchConcurrency > maxFetchConcurrency {
		a.FetchConcurrency = maxFetchConcurrency
	}
	if a.Timeout < 0 {
		a.Timeout = 0
	}
}

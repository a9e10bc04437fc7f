package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultFrankfurterURL     = "https://api.frankfurter.dev"
	DefaultExchangeRateAPIURL = "https://api.exchangerate-api.com/v4/latest"
	defaultTimeout            = 10 * time.Second
)

// Provider quotes how many units of to one unit of from is worth.
type Provider interface {
	Rate(ctx context.Context, from, to string) (float64, error)
}

// FrankfurterProvider queries {BaseURL}/latest?from=X&to=Y.
type FrankfurterProvider struct {
	baseURL string
	client  *http.Client
}

func NewFrankfurterProvider(baseURL string, timeout time.Duration) *FrankfurterProvider {
	if baseURL == "" {
		baseURL = DefaultFrankfurterURL
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &FrankfurterProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *FrankfurterProvider) Rate(ctx context.Context, from, to string) (float64, error) {
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)

	rate, err := getRate(ctx, p.client, p.baseURL+"/latest?"+q.Encode(), to)
	if err != nil {
		return 0, &RateFetchError{Currency: from, Provider: "frankfurter", Err: err}
	}

	return rate, nil
}

// ExchangeRateAPIProvider queries {BaseURL}/X and picks the target out of the full table.
type ExchangeRateAPIProvider struct {
	baseURL string
	client  *http.Client
}

func NewExchangeRateAPIProvider(baseURL string, timeout time.Duration) *ExchangeRateAPIProvider {
	if baseURL == "" {
		baseURL = DefaultExchangeRateAPIURL
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &ExchangeRateAPIProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *ExchangeRateAPIProvider) Rate(ctx context.Context, from, to string) (float64, error) {
	rate, err := getRate(ctx, p.client, p.baseURL+"/"+url.PathEscape(from), to)
	if err != nil {
		return 0, &RateFetchError{Currency: from, Provider: "exchangerate-api", Err: err}
	}

	return rate, nil
}

// FallbackProvider asks Primary first and Secondary whenever Primary fails for any
// reason, including unsupported currencies and responses without the target rate.
type FallbackProvider struct {
	primary   Provider
	secondary Provider
	log       *slog.Logger
}

func NewFallbackProvider(primary, secondary Provider, log *slog.Logger) *FallbackProvider {
	if log == nil {
		log = slog.Default()
	}

	return &FallbackProvider{
		primary:   primary,
		secondary: secondary,
		log:       log.With("component", "rates"),
	}
}

func (p *FallbackProvider) Rate(ctx context.Context, from, to string) (float64, error) {
	rate, err := p.primary.Rate(ctx, from, to)
	if err == nil {
		return rate, nil
	}

	p.log.Warn("primary rate provider failed, trying secondary", "currency", from, "error", err)

	rate, secondErr := p.secondary.Rate(ctx, from, to)
	if secondErr != nil {
		return 0, &RateFetchError{Currency: from, Provider: "fallback", Err: errors.Join(err, secondErr)}
	}

	return rate, nil
}

type ratesResponse struct {
	Rates map[string]float64 `json:"rates"`
}

func getRate(ctx context.Context, client *http.Client, endpoint, to string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusBadRequest:
		return 0, fmt.Errorf("status %d: %w", resp.StatusCode, ErrUnsupported)
	case resp.StatusCode != http.StatusOK:
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decoding response: %w", err)
	}

	rate, ok := body.Rates[to]
	if !ok || !usable(rate) {
		return 0, fmt.Errorf("%s: %w", to, ErrRateMissing)
	}

	return rate, nil
}

func usable(rate float64) bool {
	return rate > 0 && !math.IsInf(rate, 0) && !math.IsNaN(rate)
}

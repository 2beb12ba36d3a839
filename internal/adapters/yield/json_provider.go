package yield

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/alchemix-labs/yieldkit/internal/core/domain"
)

// maxBodyBytes caps provider responses; every endpoint returns a small object
// except the DefiLlama pool list.
const maxBodyBytes = 32 << 20

// Option customizes a provider.
type Option func(*settings)

type settings struct {
	client            *http.Client
	requestsPerSecond float64
	userAgent         string
}

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.client = c }
}

// WithRequestsPerSecond throttles each provider independently. Zero disables
// throttling.
func WithRequestsPerSecond(rps float64) Option {
	return func(s *settings) { s.requestsPerSecond = rps }
}

// WithUserAgent sets the User-Agent header on outbound requests.
func WithUserAgent(ua string) Option {
	return func(s *settings) { s.userAgent = ua }
}

func newSettings(opts []Option) settings {
	s := settings{
		client:    &http.Client{Timeout: 10 * time.Second},
		userAgent: "yieldkit",
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// JSONFieldProvider performs one GET against a fixed endpoint and reads one
// numeric field from the JSON response.
type JSONFieldProvider struct {
	name      string
	url       string
	field     string
	scale     decimal.Decimal
	fee       decimal.Decimal
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// NewJSONFieldProvider creates a provider reading field (a gjson path) from
// url. The extracted value is multiplied by scale and then by fee.
func NewJSONFieldProvider(name, url, field string, scale, fee decimal.Decimal, opts ...Option) *JSONFieldProvider {
	s := newSettings(opts)

	p := &JSONFieldProvider{
		name:      name,
		url:       url,
		field:     field,
		scale:     scale,
		fee:       fee,
		client:    s.client,
		userAgent: s.userAgent,
	}
	if s.requestsPerSecond > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(s.requestsPerSecond), 1)
	}
	return p
}

// NewDefiLlamaPoolProvider reads the apy of one pool from the DefiLlama pools
// list. baseURL may point at the upstream or at a local proxy prefix.
func NewDefiLlamaPoolProvider(name, baseURL, poolID string, fee decimal.Decimal, opts ...Option) *JSONFieldProvider {
	url := strings.TrimRight(baseURL, "/") + "/pools"
	field := fmt.Sprintf(`data.#(pool==%q).apy`, poolID)
	return NewJSONFieldProvider(name, url, field, decimal.NewFromInt(1), fee, opts...)
}

func (p *JSONFieldProvider) Name() string {
	return p.name
}

// URL returns the endpoint this provider calls.
func (p *JSONFieldProvider) URL() string {
	return p.url
}

// FetchRate implements domain.RateProvider.
func (p *JSONFieldProvider) FetchRate(ctx context.Context) (float64, error) {
	body, err := p.get(ctx)
	if err != nil {
		return 0, err
	}

	value, err := extractNumber(p.name, body, p.field)
	if err != nil {
		return 0, err
	}

	adjusted, _ := value.Mul(p.scale).Mul(p.fee).Float64()
	if math.IsInf(adjusted, 0) || math.IsNaN(adjusted) {
		return 0, domain.NewFetchError(p.name, domain.KindInvalidValue, "field %q is out of range: %s", p.field, value)
	}
	return adjusted, nil
}

func (p *JSONFieldProvider) get(ctx context.Context) ([]byte, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, &domain.FetchError{Provider: p.name, Kind: domain.KindNetwork, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, &domain.FetchError{Provider: p.name, Kind: domain.KindNetwork, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Provider: p.name, Kind: domain.KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.NewFetchError(p.name, domain.KindStatus, "unexpected status %d from %s", resp.StatusCode, p.url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.FetchError{Provider: p.name, Kind: domain.KindNetwork, Err: fmt.Errorf("read response: %w", err)}
	}
	if !gjson.ValidBytes(body) {
		return nil, domain.NewFetchError(p.name, domain.KindDecode, "response is not valid JSON")
	}
	return body, nil
}

// extractNumber reads path from body. Numbers and numeric strings are
// accepted; anything else is a FetchError.
func extractNumber(provider string, body []byte, path string) (decimal.Decimal, error) {
	res := gjson.GetBytes(body, path)
	if !res.Exists() {
		return decimal.Decimal{}, domain.NewFetchError(provider, domain.KindMissingField, "field %q not found", path)
	}

	var raw string
	switch res.Type {
	case gjson.Number:
		raw = res.Raw
	case gjson.String:
		raw = strings.TrimSpace(res.Str)
	default:
		return decimal.Decimal{}, domain.NewFetchError(provider, domain.KindNotNumeric, "field %q is %s, want number", path, res.Type)
	}

	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, domain.NewFetchError(provider, domain.KindNotNumeric, "field %q: %q is not a number", path, raw)
	}
	if value.IsNegative() {
		return decimal.Decimal{}, domain.NewFetchError(provider, domain.KindInvalidValue, "field %q is negative: %s", path, value)
	}
	return value, nil
}

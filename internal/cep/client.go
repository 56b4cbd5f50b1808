// Package cep resolves Brazilian postal codes against a ViaCEP-compatible
// provider.
package cep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"cepbook/internal/address/models"
	"cepbook/internal/address/validate"
	cepmetrics "cepbook/internal/cep/metrics"
	"cepbook/internal/sentinel"
	dErrors "cepbook/pkg/domain-errors"
)

// Lookup failure modes. A code that does not exist is not a provider
// failure; callers treat both as "fill the address in by hand" but report
// them differently.
var (
	ErrNoMatch = fmt.Errorf("no address for postal code: %w", sentinel.ErrNotFound)
	ErrLookup  = fmt.Errorf("postal code provider failed: %w", sentinel.ErrUnavailable)
)

// Client calls a ViaCEP-compatible HTTP provider. Concurrent lookups for the
// same code are collapsed into one upstream request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *cepmetrics.Metrics
	tracer     trace.Tracer
	group      singleflight.Group
}

type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *cepmetrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds a lookup client against baseURL, e.g. https://viacep.com.br.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.Default(),
		tracer:     otel.Tracer("cepbook/cep"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// providerResponse is the ViaCEP wire format. A nonexistent code still
// answers 200 with {"erro": true}.
type providerResponse struct {
	Cep         string `json:"cep"`
	Logradouro  string `json:"logradouro"`
	Complemento string `json:"complemento"`
	Localidade  string `json:"localidade"`
	UF          string `json:"uf"`
	Erro        bool   `json:"erro"`
}

// Lookup resolves code to an address. The code may arrive formatted or as
// bare digits; anything that is not a full 8-digit code is rejected before
// the provider is called.
func (c *Client) Lookup(ctx context.Context, code string) (*models.Address, error) {
	digits := validate.Digits(code)
	if len(digits) != 8 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "postal code must have 8 digits")
	}

	result, err, _ := c.group.Do(digits, func() (any, error) {
		return c.fetch(ctx, digits)
	})
	if err != nil {
		return nil, err
	}
	address := result.(models.Address)
	return &address, nil
}

func (c *Client) fetch(ctx context.Context, digits string) (any, error) {
	ctx, span := c.tracer.Start(ctx, "cep.lookup",
		trace.WithAttributes(attribute.String("cep.code", digits)))
	start := time.Now()
	defer c.observeDuration(start)

	address, err := c.doFetch(ctx, digits)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return nil, err
	}
	span.End()
	return *address, nil
}

func (c *Client) doFetch(ctx context.Context, digits string) (*models.Address, error) {
	url := fmt.Sprintf("%s/ws/%s/json/", c.baseURL, digits)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create lookup request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			c.failure(ctx, digits, cepmetrics.ReasonTimeout, err)
			return nil, fmt.Errorf("postal code lookup timed out: %w", ErrLookup)
		}
		c.failure(ctx, digits, cepmetrics.ReasonUnavailable, err)
		return nil, fmt.Errorf("postal code lookup: %w", ErrLookup)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.failure(ctx, digits, cepmetrics.ReasonUnavailable, fmt.Errorf("status %d", resp.StatusCode))
		return nil, fmt.Errorf("postal code provider answered %d: %w", resp.StatusCode, ErrLookup)
	}

	var body providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.failure(ctx, digits, cepmetrics.ReasonUnavailable, err)
		return nil, fmt.Errorf("decode provider response: %w", ErrLookup)
	}

	if body.Erro {
		c.logger.InfoContext(ctx, "postal code has no address", "cep", digits)
		if c.metrics != nil {
			c.metrics.IncrementFailure(cepmetrics.ReasonNoMatch)
		}
		return nil, ErrNoMatch
	}

	return &models.Address{
		PostalCode: validate.FormatPostalCode(body.Cep),
		Street:     body.Logradouro,
		City:       body.Localidade,
		StateCode:  body.UF,
		Complement: body.Complemento,
	}, nil
}

// Health reports whether the provider answers at all. Any HTTP response
// counts as reachable; status codes are not inspected.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("build lookup health request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("lookup provider unreachable: %w", err)
	}
	resp.Body.Close()
	return nil
}

func (c *Client) failure(ctx context.Context, digits, reason string, err error) {
	c.logger.WarnContext(ctx, "postal code lookup failed",
		"cep", digits, "reason", reason, "error", err)
	if c.metrics != nil {
		c.metrics.IncrementFailure(reason)
	}
}

func (c *Client) observeDuration(start time.Time) {
	if c.metrics != nil {
		c.metrics.ObserveLookup(start)
	}
}

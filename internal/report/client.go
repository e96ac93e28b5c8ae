// Package report provides a client for the remote consumption report API.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rangosemfila/consumo/internal/model"
)

const (
	// DefaultBaseURL is the production reporting API.
	DefaultBaseURL = "https://api.rangosemfila.com.br"
	// ReportPath is the consumption report endpoint, relative to the base URL.
	ReportPath = "/v2/clientsConsumptionReport"

	defaultTimeout = 30 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
	userAgent      = "github.com/rangosemfila/consumo/1.0"
)

var (
	// ErrMissingIdentifier means no client identifier was supplied; no request is made.
	ErrMissingIdentifier = errors.New("report: missing client identifier")
	// ErrTransport covers network, DNS, timeout and non-2xx failures.
	ErrTransport = errors.New("report: transport failure")
	// ErrEmptyResponse means the request succeeded but carried no usable body.
	ErrEmptyResponse = errors.New("report: empty response")
	// ErrMalformedResponse means the body did not match the report schema.
	ErrMalformedResponse = errors.New("report: malformed response")
)

// Kind classifies the outcome of a fetch for diagnostics.
type Kind int

const (
	KindOK Kind = iota
	KindMissingIdentifier
	KindTransport
	KindEmptyResponse
	KindMalformedResponse
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindMissingIdentifier:
		return "missing_identifier"
	case KindTransport:
		return "transport_failure"
	case KindEmptyResponse:
		return "empty_response"
	case KindMalformedResponse:
		return "malformed_response"
	}
	return "unknown"
}

// Classify maps a Fetch error to its Kind. Unrecognized errors count as transport failures.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, ErrMissingIdentifier):
		return KindMissingIdentifier
	case errors.Is(err, ErrEmptyResponse):
		return KindEmptyResponse
	case errors.Is(err, ErrMalformedResponse):
		return KindMalformedResponse
	default:
		return KindTransport
	}
}

// FetchEvent describes one completed fetch attempt.
type FetchEvent struct {
	RequestID  string
	ClientID   string
	Kind       Kind
	StatusCode int // 0 when no response was received
	Duration   time.Duration
	At         time.Time
	Err        error
}

// Observer receives a FetchEvent after every fetch. Observers run on the
// fetching goroutine and must not block.
type Observer func(FetchEvent)

// Client fetches consumption reports from the reporting API.
type Client struct {
	http      *resty.Client
	validate  *validator.Validate
	log       *zap.Logger
	observers []Observer
}

type options struct {
	timeout    time.Duration
	log        *zap.Logger
	observers  []Observer
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*options)

// WithTimeout bounds each request. Zero disables the client-side timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithLogger sets the diagnostic logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithObserver registers fetch observers.
func WithObserver(obs ...Observer) Option {
	return func(o *options) { o.observers = append(o.observers, obs...) }
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// NewClient creates a client for the API at baseURL.
// An empty baseURL falls back to DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	o := options{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}

	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	var rc *resty.Client
	if o.httpClient != nil {
		rc = resty.NewWithClient(o.httpClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(baseURL).
		SetTimeout(o.timeout).
		SetLogger(o.log.Sugar()).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent)

	return &Client{
		http:      rc,
		validate:  validator.New(),
		log:       o.log,
		observers: o.observers,
	}
}

// BaseURL returns the API base URL the client talks to.
func (c *Client) BaseURL() string {
	return c.http.BaseURL
}

// Fetch requests the consumption report for id.
// Every failure wraps one of the package sentinel errors.
func (c *Client) Fetch(ctx context.Context, id string) (*model.ConsumptionReport, error) {
	ev := FetchEvent{
		RequestID: uuid.NewString(),
		ClientID:  strings.TrimSpace(id),
		At:        time.Now(),
	}

	rep, status, err := c.fetch(ctx, ev.RequestID, ev.ClientID)

	ev.StatusCode = status
	ev.Duration = time.Since(ev.At)
	ev.Kind = Classify(err)
	ev.Err = err

	c.log.Debug("consumption report fetch",
		zap.String("request_id", ev.RequestID),
		zap.String("client_id", ev.ClientID),
		zap.Stringer("kind", ev.Kind),
		zap.Int("status", status),
		zap.Duration("duration", ev.Duration),
	)
	for _, obs := range c.observers {
		obs(ev)
	}

	return rep, err
}

func (c *Client) fetch(ctx context.Context, requestID, id string) (*model.ConsumptionReport, int, error) {
	if id == "" {
		return nil, 0, ErrMissingIdentifier
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("id", id).
		SetHeader("X-Request-ID", requestID).
		SetDoNotParseResponse(true).
		Get(ReportPath)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	raw := resp.RawBody()
	defer func() { _ = raw.Close() }()

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return nil, status, fmt.Errorf("%w: unexpected status %d", ErrTransport, status)
	}

	body, err := io.ReadAll(io.LimitReader(raw, maxBodySize+1))
	if err != nil {
		return nil, status, fmt.Errorf("%w: reading response: %w", ErrTransport, err)
	}
	if len(body) > maxBodySize {
		return nil, status, fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedResponse, maxBodySize)
	}

	rep, err := c.Decode(body)
	return rep, status, err
}

// Decode validates a raw response body and converts it into a report.
func (c *Client) Decode(body []byte) (*model.ConsumptionReport, error) {
	body = bytes.TrimSpace(body)
	if isEmptyBody(body) {
		return nil, ErrEmptyResponse
	}

	var raw reportResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if err := c.validate.Struct(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return raw.toModel(), nil
}

// isEmptyBody reports whether body is blank or a JSON falsy literal.
func isEmptyBody(body []byte) bool {
	if len(body) == 0 {
		return true
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return false
	}
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case float64:
		return x == 0
	case string:
		return x == ""
	}
	return false
}

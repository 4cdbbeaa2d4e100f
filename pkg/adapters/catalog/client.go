// Package catalog fetches the remote function and journey catalog over HTTP.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
)

const (
	functionsPath = "/api/v1/config/functions/all"
	journeysPath  = "/api/v1/config/journey/all"
)

// Client implements ports.FunctionCatalog against the configuration service.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.http.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// New creates a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListFunctions returns every function the service knows, in service order.
func (c *Client) ListFunctions(ctx context.Context) ([]domain.Function, error) {
	body, err := c.get(ctx, functionsPath)
	if err != nil {
		return nil, err
	}

	var wire []remoteFunction
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("catalog: decode functions: %w", err)
	}

	out := make([]domain.Function, 0, len(wire))
	for _, rf := range wire {
		fn, err := rf.toDomain()
		if err != nil {
			c.logger.Warn("skipping catalog function", "reference_id", rf.ReferenceID, "err", err)
			continue
		}
		out = append(out, fn)
	}
	c.logger.Debug("catalog functions fetched", "count", len(out))
	return out, nil
}

// ListJourneys returns the journey listing. The service wraps it in {"data": [...]};
// a bare array is accepted too.
func (c *Client) ListJourneys(ctx context.Context) ([]domain.Summary, error) {
	body, err := c.get(ctx, journeysPath)
	if err != nil {
		return nil, err
	}

	var list []domain.Summary
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &list)
	} else {
		var env struct {
			Data []domain.Summary `json:"data"`
		}
		err = json.Unmarshal(trimmed, &env)
		list = env.Data
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: decode journeys: %w", err)
	}
	if list == nil {
		list = []domain.Summary{}
	}
	return list, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("catalog: GET %s: unexpected status %d", path, resp.StatusCode)
	}
	return body, nil
}

// remoteFunction is the service's function shape. It names the verb httpMethod
// and sends headers as a plain object.
type remoteFunction struct {
	ReferenceID      string              `json:"referenceId"`
	Name             string              `json:"name"`
	Type             domain.FunctionType `json:"type"`
	Config           remoteConfig        `json:"config"`
	InputProperties  domain.Entries      `json:"inputProperties"`
	OutputProperties domain.Entries      `json:"outputProperties"`
}

type remoteConfig struct {
	HTTPMethod      string                    `json:"httpMethod"`
	Method          string                    `json:"method"`
	Host            string                    `json:"host"`
	Path            string                    `json:"path"`
	Headers         json.RawMessage           `json:"headers"`
	HeaderParams    domain.Entries            `json:"headerParams"`
	RequestBody     []domain.RequestBodyField `json:"requestBody"`
	RequestBodyPath domain.Entries            `json:"requestBodyPath"`
	TimeoutMs       int                       `json:"timeoutMs"`
}

func (rf remoteFunction) toDomain() (domain.Function, error) {
	if rf.ReferenceID == "" {
		return domain.Function{}, fmt.Errorf("%w: referenceId", domain.ErrMissingRequiredField)
	}
	method := rf.Config.HTTPMethod
	if method == "" {
		method = rf.Config.Method
	}
	headers, err := decodeHeaders(rf.Config.Headers)
	if err != nil {
		return domain.Function{}, err
	}
	typ := rf.Type
	if typ == "" {
		typ = domain.FunctionAPI
	}
	return domain.Function{
		ReferenceID: rf.ReferenceID,
		Name:        rf.Name,
		Type:        typ,
		Config: domain.FunctionConfig{
			Host:            rf.Config.Host,
			Path:            rf.Config.Path,
			Method:          strings.ToUpper(method),
			Headers:         headers,
			HeaderParams:    rf.Config.HeaderParams,
			RequestBody:     rf.Config.RequestBody,
			RequestBodyPath: rf.Config.RequestBodyPath,
			TimeoutMs:       rf.Config.TimeoutMs,
		},
		InputProperties:  rf.InputProperties,
		OutputProperties: rf.OutputProperties,
	}, nil
}

// decodeHeaders accepts either a header list or an object of constant headers.
func decodeHeaders(raw json.RawMessage) ([]domain.Header, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '[' {
		var list []domain.Header
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("headers: %w", err)
		}
		return list, nil
	}
	var obj domain.Entries
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("headers: %w", err)
	}
	var list []domain.Header
	for _, e := range obj {
		list = append(list, domain.Header{Key: e.Key, Type: domain.HeaderConstant, Value: e.Value})
	}
	return list, nil
}

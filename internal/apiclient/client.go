// Package apiclient talks to the directory REST API. Outcomes are classified
// from the envelope code, so it works whether or not the server maps errors
// to HTTP statuses.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go-directory/internal/form"
	"go-directory/internal/shared/contextutil"
	"go-directory/internal/view"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// New builds a client for baseURL, e.g. http://localhost:3000/api/v1.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zap.L(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("apiclient")
	return c
}

type payload struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	ImageURL string `json:"imageUrl"`
}

func toPayload(v form.Values) payload {
	return payload{Name: v.Name, Phone: v.Phone, Email: v.Email, Address: v.Address, ImageURL: v.ImageURL}
}

type envelope struct {
	Message   string          `json:"message"`
	Code      string          `json:"code"`
	Error     string          `json:"error"`
	Details   json.RawMessage `json:"details"`
	Employee  *view.Record    `json:"employee"`
	Employees []view.Record   `json:"employees"`
}

func (c *Client) List(ctx context.Context) ([]view.Record, error) {
	env, err := c.do(ctx, http.MethodGet, "/employees", nil, nil)
	if err != nil {
		return nil, err
	}
	if env.Employees == nil {
		return []view.Record{}, nil
	}
	return env.Employees, nil
}

func (c *Client) Get(ctx context.Context, id string) (view.Record, error) {
	env, err := c.do(ctx, http.MethodGet, "/employees/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return view.Record{}, err
	}
	return recordOf(env)
}

// Create sends a fresh Idempotency-Key so a retried submit is not stored twice.
func (c *Client) Create(ctx context.Context, v form.Values) (view.Record, error) {
	headers := map[string]string{"Idempotency-Key": uuid.NewString()}
	env, err := c.do(ctx, http.MethodPost, "/employees", toPayload(v), headers)
	if err != nil {
		return view.Record{}, err
	}
	return recordOf(env)
}

// Update sends every field; an empty imageUrl resets the picture.
func (c *Client) Update(ctx context.Context, id string, v form.Values) (view.Record, error) {
	env, err := c.do(ctx, http.MethodPut, "/employees/"+url.PathEscape(id), toPayload(v), nil)
	if err != nil {
		return view.Record{}, err
	}
	return recordOf(env)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/employees/"+url.PathEscape(id), nil, nil)
	return err
}

func recordOf(env *envelope) (view.Record, error) {
	if env.Employee == nil {
		return view.Record{}, fmt.Errorf("apiclient: response has no employee")
	}
	return *env.Employee, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, headers map[string]string) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if rid := contextutil.GetRequestID(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("directory api unreachable", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &APIError{
			Status:  resp.StatusCode,
			Code:    fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message: http.StatusText(resp.StatusCode),
			Detail:  "undecodable response body",
		}
	}

	if env.Code == "" && resp.StatusCode < http.StatusBadRequest {
		return &env, nil
	}

	apiErr := c.classify(resp.StatusCode, &env)
	c.logger.Debug("directory api rejected request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("code", env.Code),
	)
	return nil, apiErr
}

func (c *Client) classify(status int, env *envelope) error {
	base := APIError{Status: status, Code: env.Code, Message: env.Message, Detail: env.Error}
	if base.Code == "" {
		base.Code = fmt.Sprintf("HTTP_%d", status)
	}
	if base.Message == "" {
		base.Message = http.StatusText(status)
	}

	switch env.Code {
	case codeValidation:
		verr := &ValidationError{APIError: base}
		if len(env.Details) > 0 {
			if err := json.Unmarshal(env.Details, &verr.Violations); err != nil {
				c.logger.Debug("validation details undecodable",
					zap.ByteString("details", env.Details),
					zap.Error(err),
				)
			}
		}
		return verr
	case codeStore:
		return &StoreError{APIError: base}
	default:
		return &base
	}
}

// Package wirecard is a client for the Wirecard (Moip) v2 REST API covering
// customers, funding instruments, orders, payments and accounts.
package wirecard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Adda-Baaj/wirecard-go/pkg/httpclient"
)

const contentTypeJSON = `application/json; charset="UTF-8"`

// Client issues authenticated calls against one Wirecard environment.
// It holds no mutable state and is safe for concurrent use.
type Client struct {
	env     Environment
	baseURL string
	key     string
	token   string
	http    httpclient.Client
	log     Logger
}

// Option customizes a Client at construction.
type Option func(*Client)

// WithHTTPClient injects a shared transport. The default is a resty client without a timeout.
func WithHTTPClient(hc httpclient.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the diagnostic sink failures are reported to.
func WithLogger(log Logger) Option {
	return func(c *Client) { c.log = ensureLogger(log) }
}

// WithBaseURL overrides the environment's API root.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base = strings.TrimSpace(base); base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// New builds a Client. key and token are sent as Basic-Auth password and username.
func New(env Environment, key, token string, opts ...Option) (*Client, error) {
	base, err := env.BaseURL()
	if err != nil {
		return nil, err
	}

	c := &Client{
		env:     env,
		baseURL: base,
		key:     key,
		token:   token,
		log:     noopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.NewRestyClient(0)
	}
	return c, nil
}

// Environment returns the environment the client was built for.
func (c *Client) Environment() Environment { return c.env }

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) get(ctx context.Context, op, path string, query url.Values) (string, error) {
	resp, err := c.do(ctx, op, httpclient.Request{
		Method: http.MethodGet,
		URL:    c.endpoint(path),
		Query:  query,
	})
	if err != nil {
		return "", err
	}
	if resp.StatusCode() != http.StatusOK {
		return "", unexpectedStatus(op, http.StatusOK, resp.StatusCode(), resp.Header(), resp.Body())
	}
	return string(resp.Body()), nil
}

func (c *Client) post(ctx context.Context, op, path string, status int, payload any) (string, error) {
	var body []byte
	if payload != nil {
		raw, err := encodePayload(payload)
		if err != nil {
			return "", &Error{Kind: KindInvalidRequest, Op: op, Message: "encode payload", Err: err}
		}
		body = raw
	}

	resp, err := c.do(ctx, op, httpclient.Request{
		Method:  http.MethodPost,
		URL:     c.endpoint(path),
		Headers: map[string]string{"Content-Type": contentTypeJSON},
		Body:    body,
	})
	if err != nil {
		return "", err
	}
	if resp.StatusCode() != status {
		return "", unexpectedStatus(op, status, resp.StatusCode(), resp.Header(), resp.Body())
	}
	return string(resp.Body()), nil
}

func (c *Client) delete(ctx context.Context, op, path string) (int, error) {
	resp, err := c.do(ctx, op, httpclient.Request{
		Method: http.MethodDelete,
		URL:    c.endpoint(path),
	})
	if err != nil {
		return 0, err
	}
	return resp.StatusCode(), nil
}

func (c *Client) do(ctx context.Context, op string, req httpclient.Request) (httpclient.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req.Username = c.token
	req.Password = c.key

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	c.log.DebugObj("wirecard call completed", "wirecard_call", map[string]any{
		"operation": op,
		"method":    req.Method,
		"url":       req.URL,
		"status":    resp.StatusCode(),
	})
	return resp, nil
}

// report emits the error notification for a failed call and hands err back.
func (c *Client) report(err error) error {
	if err == nil {
		return nil
	}
	c.log.ErrorObj("wirecard call failed", "wirecard_error", map[string]any{
		"status":  "error",
		"message": err.Error(),
	})
	return err
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// resourcePath joins a collection path with an escaped identifier and optional suffix.
func resourcePath(op, prefix, id, suffix string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", &Error{Kind: KindInvalidRequest, Op: op, Message: "resource id is empty"}
	}
	p := prefix + "/" + url.PathEscape(id)
	if suffix != "" {
		p += "/" + suffix
	}
	return p, nil
}

// encodePayload passes pre-encoded JSON through and marshals everything else.
func encodePayload(payload any) ([]byte, error) {
	switch v := payload.(type) {
	case json.RawMessage:
		if !json.Valid(v) {
			return nil, fmt.Errorf("payload is not valid JSON")
		}
		return v, nil
	case []byte:
		if !json.Valid(v) {
			return nil, fmt.Errorf("payload is not valid JSON")
		}
		return v, nil
	default:
		return json.Marshal(v)
	}
}

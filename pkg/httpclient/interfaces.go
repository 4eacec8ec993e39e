package httpclient

import (
	"context"
	"net/http"
	"net/url"
)

// Request describes a single outbound HTTP exchange.
type Request struct {
	Method  string
	URL     string
	Query   url.Values
	Headers map[string]string
	Body    []byte

	// Basic-Auth credentials; ignored when both are empty.
	Username string
	Password string
}

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
}

package wirecard

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Adda-Baaj/wirecard-go/pkg/httpclient"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// observedLogger routes the client's diagnostic sink into a zap observer.
type observedLogger struct {
	l *zap.Logger
}

func (o observedLogger) InfoObj(msg, key string, obj interface{})  { o.l.Info(msg, zap.Any(key, obj)) }
func (o observedLogger) DebugObj(msg, key string, obj interface{}) { o.l.Debug(msg, zap.Any(key, obj)) }
func (o observedLogger) WarnObj(msg, key string, obj interface{})  { o.l.Warn(msg, zap.Any(key, obj)) }
func (o observedLogger) ErrorObj(msg, key string, obj interface{}) { o.l.Error(msg, zap.Any(key, obj)) }

func newObservedLogger() (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return observedLogger{l: zap.New(core)}, logs
}

type recordedRequest struct {
	method      string
	path        string
	contentType string
	user        string
	pass        string
	authOK      bool
	body        string
}

type apiStub struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
	header   map[string]string
}

func (s *apiStub) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		user, pass, ok := r.BasicAuth()
		s.mu.Lock()
		s.requests = append(s.requests, recordedRequest{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			user:        user,
			pass:        pass,
			authOK:      ok,
			body:        string(raw),
		})
		s.mu.Unlock()
		for k, v := range s.header {
			w.Header().Set(k, v)
		}
		w.WriteHeader(s.status)
		_, _ = w.Write([]byte(s.body))
	})
}

func (s *apiStub) only(t *testing.T) recordedRequest {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) != 1 {
		t.Fatalf("expected exactly one request, got %d", len(s.requests))
	}
	return s.requests[0]
}

func newStubClient(t *testing.T, stub *apiStub) (*Client, *observer.ObservedLogs) {
	t.Helper()
	srv := httptest.NewServer(stub.handler(t))
	t.Cleanup(srv.Close)

	log, logs := newObservedLogger()
	client, err := New(Sandbox, "the-key", "the-token", WithBaseURL(srv.URL), WithLogger(log))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client, logs
}

func TestEnvironmentBaseURLs(t *testing.T) {
	prod, err := New(Production, "k", "t")
	if err != nil {
		t.Fatalf("New production: %v", err)
	}
	if prod.BaseURL() != "https://api.moip.com.br" {
		t.Fatalf("production base url = %s", prod.BaseURL())
	}

	sandbox, err := New(Sandbox, "k", "t")
	if err != nil {
		t.Fatalf("New sandbox: %v", err)
	}
	if sandbox.BaseURL() != "https://sandbox.moip.com.br" {
		t.Fatalf("sandbox base url = %s", sandbox.BaseURL())
	}
}

func TestNewRejectsUnknownEnvironment(t *testing.T) {
	for _, env := range []Environment{"", "staging", "Production", " sandbox"} {
		client, err := New(env, "k", "t")
		if !errors.Is(err, ErrUnknownEnvironment) {
			t.Fatalf("env %q: expected ErrUnknownEnvironment, got %v", env, err)
		}
		if client != nil {
			t.Fatalf("env %q: expected no client to be built", env)
		}
	}

	if _, err := ParseEnvironment("qa"); !errors.Is(err, ErrUnknownEnvironment) {
		t.Fatalf("ParseEnvironment: expected ErrUnknownEnvironment, got %v", err)
	}
	if env, err := ParseEnvironment("sandbox"); err != nil || env != Sandbox {
		t.Fatalf("ParseEnvironment(sandbox) = %v, %v", env, err)
	}
}

func TestCreateCustomerReturnsRawBody(t *testing.T) {
	stub := &apiStub{status: http.StatusCreated, body: `{"id":"CUS-1","ownId":"me"}`}
	client, logs := newStubClient(t, stub)

	body, err := client.CreateCustomer(context.Background(), map[string]string{"ownId": "me"})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	if body != stub.body {
		t.Fatalf("body = %s", body)
	}

	req := stub.only(t)
	if req.method != http.MethodPost || req.path != "/v2/customers" {
		t.Fatalf("unexpected request %s %s", req.method, req.path)
	}
	if req.contentType != `application/json; charset="UTF-8"` {
		t.Fatalf("content type = %s", req.contentType)
	}
	if !req.authOK || req.user != "the-token" || req.pass != "the-key" {
		t.Fatalf("basic auth = %q/%q ok=%v", req.user, req.pass, req.authOK)
	}
	if req.body != `{"ownId":"me"}` {
		t.Fatalf("request body = %s", req.body)
	}
	if logs.FilterMessage("wirecard call failed").Len() != 0 {
		t.Fatalf("no failure should be reported on success")
	}
}

func TestCreateCustomerUnexpectedStatusIsReported(t *testing.T) {
	stub := &apiStub{status: http.StatusBadRequest, body: `{"errors":[{"code":"CUS-007"}]}`}
	client, logs := newStubClient(t, stub)

	body, err := client.CreateCustomer(context.Background(), map[string]string{})
	if body != "" {
		t.Fatalf("expected empty body on failure, got %s", body)
	}
	if !IsKind(err, KindUnexpectedStatus) {
		t.Fatalf("expected unexpected status error, got %v", err)
	}
	if status, ok := StatusCode(err); !ok || status != http.StatusBadRequest {
		t.Fatalf("status = %d ok=%v", status, ok)
	}
	if !strings.Contains(err.Error(), "CUS-007") {
		t.Fatalf("error should carry body snippet: %v", err)
	}

	failures := logs.FilterMessage("wirecard call failed").All()
	if len(failures) != 1 {
		t.Fatalf("expected one failure notification, got %d", len(failures))
	}
	fields, ok := failures[0].ContextMap()["wirecard_error"].(map[string]any)
	if !ok {
		t.Fatalf("wirecard_error field missing: %#v", failures[0].ContextMap())
	}
	if fields["status"] != "error" || fields["message"] != err.Error() {
		t.Fatalf("unexpected notification %#v", fields)
	}
}

func TestGetEndpointsRequireOK(t *testing.T) {
	cases := []struct {
		name string
		path string
		call func(*Client) (string, error)
	}{
		{"customer", "/v2/customers/CUS-1", func(c *Client) (string, error) { return c.GetCustomer(context.Background(), "CUS-1") }},
		{"order", "/v2/orders/ORD-1", func(c *Client) (string, error) { return c.GetOrder(context.Background(), "ORD-1") }},
		{"payment", "/v2/payments/PAY-1", func(c *Client) (string, error) { return c.GetPayment(context.Background(), "PAY-1") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok := &apiStub{status: http.StatusOK, body: `{"id":"x"}`}
			client, _ := newStubClient(t, ok)
			body, err := tc.call(client)
			if err != nil || body != `{"id":"x"}` {
				t.Fatalf("got %q, %v", body, err)
			}
			req := ok.only(t)
			if req.method != http.MethodGet || req.path != tc.path {
				t.Fatalf("unexpected request %s %s", req.method, req.path)
			}
			if req.user != "the-token" || req.pass != "the-key" {
				t.Fatalf("basic auth = %q/%q", req.user, req.pass)
			}

			created := &apiStub{status: http.StatusCreated, body: `{}`}
			client, _ = newStubClient(t, created)
			if _, err := tc.call(client); !IsKind(err, KindUnexpectedStatus) {
				t.Fatalf("201 on GET should fail, got %v", err)
			}
		})
	}
}

func TestPostEndpointsExpectedStatus(t *testing.T) {
	cases := []struct {
		name   string
		path   string
		status int
		call   func(*Client) (string, error)
	}{
		{"create order", "/v2/orders", http.StatusCreated, func(c *Client) (string, error) {
			return c.CreateOrder(context.Background(), map[string]string{"ownId": "o"})
		}},
		{"create payment", "/v2/orders/ORD-1/payments", http.StatusOK, func(c *Client) (string, error) {
			return c.CreatePayment(context.Background(), "ORD-1", map[string]int{"installmentCount": 1})
		}},
		{"capture payment", "/v2/payments/PAY-1/capture", http.StatusOK, func(c *Client) (string, error) {
			return c.CapturePayment(context.Background(), "PAY-1")
		}},
		{"void payment", "/v2/payments/PAY-1/void", http.StatusOK, func(c *Client) (string, error) {
			return c.VoidPayment(context.Background(), "PAY-1")
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &apiStub{status: tc.status, body: `{"status":"ok"}`}
			client, _ := newStubClient(t, stub)
			body, err := tc.call(client)
			if err != nil || body != `{"status":"ok"}` {
				t.Fatalf("got %q, %v", body, err)
			}
			req := stub.only(t)
			if req.method != http.MethodPost || req.path != tc.path {
				t.Fatalf("unexpected request %s %s", req.method, req.path)
			}

			other := http.StatusAccepted
			wrong := &apiStub{status: other, body: `{}`}
			client, _ = newStubClient(t, wrong)
			if _, err := tc.call(client); !IsKind(err, KindUnexpectedStatus) {
				t.Fatalf("status %d should fail, got %v", other, err)
			}
		})
	}
}

func TestAddCreditCardReturnsCardID(t *testing.T) {
	stub := &apiStub{status: http.StatusCreated, body: `{"method":"CREDIT_CARD","creditCard":{"id":"CARD-123","brand":"VISA"}}`}
	client, _ := newStubClient(t, stub)

	id, err := client.AddCreditCard(context.Background(), "CUS-1", map[string]any{"method": "CREDIT_CARD"})
	if err != nil {
		t.Fatalf("AddCreditCard: %v", err)
	}
	if id != "CARD-123" {
		t.Fatalf("card id = %s", id)
	}
	if req := stub.only(t); req.path != "/v2/customers/CUS-1/fundinginstruments" {
		t.Fatalf("path = %s", req.path)
	}
}

func TestAddCreditCardMissingIDIsDecodeError(t *testing.T) {
	for _, body := range []string{`{"method":"CREDIT_CARD"}`, `{"creditCard":{}}`, `not json`} {
		stub := &apiStub{status: http.StatusCreated, body: body}
		client, logs := newStubClient(t, stub)

		id, err := client.AddCreditCard(context.Background(), "CUS-1", map[string]any{})
		if id != "" || !IsKind(err, KindDecode) {
			t.Fatalf("body %q: got %q, %v", body, id, err)
		}
		if logs.FilterMessage("wirecard call failed").Len() != 1 {
			t.Fatalf("body %q: decode failure not reported", body)
		}
	}
}

func TestRemoveCreditCardPassesStatusThrough(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusCreated, http.StatusNotFound, http.StatusInternalServerError} {
		stub := &apiStub{status: status}
		client, logs := newStubClient(t, stub)

		got, err := client.RemoveCreditCard(context.Background(), "CRC-1")
		if err != nil {
			t.Fatalf("status %d: unexpected error %v", status, err)
		}
		if got != status {
			t.Fatalf("status = %d, want %d", got, status)
		}
		req := stub.only(t)
		if req.method != http.MethodDelete || req.path != "/v2/fundinginstruments/CRC-1" {
			t.Fatalf("unexpected request %s %s", req.method, req.path)
		}
		if req.user != "the-token" || req.pass != "the-key" {
			t.Fatalf("basic auth = %q/%q", req.user, req.pass)
		}
		if logs.FilterMessage("wirecard call failed").Len() != 0 {
			t.Fatalf("status %d should not be reported as failure", status)
		}
	}
}

// The account lookup takes its status from the resolved response; a failed
// lookup must be observable as an error and not just as false.
func TestAccountExistsDistinguishesFailureFromFalse(t *testing.T) {
	stub := &apiStub{status: http.StatusOK, body: `{"id":"MPA-1"}`}
	client, _ := newStubClient(t, stub)
	exists, err := client.AccountExists(context.Background(), "MPA-1")
	if err != nil || !exists {
		t.Fatalf("got %v, %v", exists, err)
	}
	if req := stub.only(t); req.path != "/v2/accounts/MPA-1" {
		t.Fatalf("path = %s", req.path)
	}

	missing := &apiStub{status: http.StatusNotFound}
	client, logs := newStubClient(t, missing)
	exists, err = client.AccountExists(context.Background(), "MPA-404")
	if exists {
		t.Fatalf("404 must not report existence")
	}
	if status, ok := StatusCode(err); !ok || status != http.StatusNotFound {
		t.Fatalf("expected 404 error, got %v", err)
	}
	if logs.FilterMessage("wirecard call failed").Len() != 1 {
		t.Fatalf("404 lookup should be reported")
	}
}

type failingTransport struct {
	calls int
	err   error
}

func (f *failingTransport) Do(context.Context, httpclient.Request) (httpclient.Response, error) {
	f.calls++
	return nil, f.err
}

func TestTransportFailureIsReportedOnce(t *testing.T) {
	transport := &failingTransport{err: errors.New("connection refused")}
	log, logs := newObservedLogger()
	client, err := New(Production, "k", "t", WithHTTPClient(transport), WithLogger(log))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	exists, err := client.AccountExists(context.Background(), "MPA-1")
	if exists || !IsKind(err, KindTransport) {
		t.Fatalf("got %v, %v", exists, err)
	}
	if !errors.Is(err, transport.err) {
		t.Fatalf("transport cause should be wrapped: %v", err)
	}
	if _, ok := StatusCode(err); ok {
		t.Fatalf("transport error carries no status")
	}
	if transport.calls != 1 {
		t.Fatalf("expected exactly one attempt, got %d", transport.calls)
	}
	if logs.FilterMessage("wirecard call failed").Len() != 1 {
		t.Fatalf("transport failure should be reported")
	}

	if _, err := client.RemoveCreditCard(context.Background(), "CRC-1"); !IsKind(err, KindTransport) {
		t.Fatalf("delete transport failure: %v", err)
	}
}

func TestEmptyIDIsRejectedWithoutCalling(t *testing.T) {
	transport := &failingTransport{err: errors.New("unreachable")}
	client, err := New(Sandbox, "k", "t", WithHTTPClient(transport))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.GetOrder(context.Background(), " "); !IsKind(err, KindInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
	if transport.calls != 0 {
		t.Fatalf("no request should be sent for an empty id")
	}
}

func TestUnencodablePayloadIsInvalidRequest(t *testing.T) {
	transport := &failingTransport{err: errors.New("unreachable")}
	client, err := New(Sandbox, "k", "t", WithHTTPClient(transport))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.CreateOrder(context.Background(), map[string]any{"bad": make(chan int)}); !IsKind(err, KindInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
	if _, err := client.CreateOrder(context.Background(), []byte("{")); !IsKind(err, KindInvalidRequest) {
		t.Fatalf("expected invalid request for malformed raw JSON, got %v", err)
	}
	if transport.calls != 0 {
		t.Fatalf("no request should be sent for an unencodable payload")
	}
}

func TestUnexpectedStatusHTMLBodyUsesTitle(t *testing.T) {
	stub := &apiStub{
		status: http.StatusBadGateway,
		header: map[string]string{"Content-Type": "text/html; charset=utf-8"},
		body:   `<html><head><title>502 Bad Gateway</title></head><body><h1>nginx</h1></body></html>`,
	}
	client, _ := newStubClient(t, stub)

	_, err := client.GetPayment(context.Background(), "PAY-1")
	if err == nil || !strings.HasSuffix(err.Error(), "expected status 200: 502 Bad Gateway") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestConcurrentCallsShareClient(t *testing.T) {
	stub := &apiStub{status: http.StatusOK, body: `{}`}
	client, _ := newStubClient(t, stub)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.GetOrder(context.Background(), "ORD-1"); err != nil {
				t.Errorf("GetOrder: %v", err)
			}
		}()
	}
	wg.Wait()

	stub.mu.Lock()
	defer stub.mu.Unlock()
	if len(stub.requests) != 8 {
		t.Fatalf("expected 8 requests, got %d", len(stub.requests))
	}
}

package wirecard

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrorKind classifies why a call failed.
type ErrorKind string

const (
	// KindTransport covers DNS, connection, TLS and context failures; no response arrived.
	KindTransport ErrorKind = "transport"
	// KindUnexpectedStatus means a response arrived with a status other than the one the endpoint promises.
	KindUnexpectedStatus ErrorKind = "unexpected_status"
	// KindDecode means the response body could not be read into the expected shape.
	KindDecode ErrorKind = "decode"
	// KindInvalidRequest means the request could not be built (empty id, unencodable payload).
	KindInvalidRequest ErrorKind = "invalid_request"
)

const maxSnippetBytes = 512

// Error is returned by every Client method on failure.
type Error struct {
	Kind       ErrorKind
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("wirecard ")
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(string(e.Kind))
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// StatusCode extracts the HTTP status carried by err, if any.
func StatusCode(err error) (int, bool) {
	var e *Error
	if errors.As(err, &e) && e.StatusCode != 0 {
		return e.StatusCode, true
	}
	return 0, false
}

func unexpectedStatus(op string, want, got int, header http.Header, body []byte) *Error {
	msg := fmt.Sprintf("expected status %d", want)
	if snippet := bodySnippet(header, body); snippet != "" {
		msg += ": " + snippet
	}
	return &Error{Kind: KindUnexpectedStatus, Op: op, StatusCode: got, Message: msg}
}

// bodySnippet returns a short, printable description of a response body.
// HTML pages are reduced to their title.
func bodySnippet(header http.Header, body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if looksLikeHTML(header, body) {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err == nil {
			if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
				return title
			}
		}
	}
	if len(body) > maxSnippetBytes {
		body = body[:maxSnippetBytes]
	}
	return strings.TrimSpace(string(body))
}

func looksLikeHTML(header http.Header, body []byte) bool {
	if strings.Contains(strings.ToLower(header.Get("Content-Type")), "text/html") {
		return true
	}
	head := bytes.ToLower(bytes.TrimSpace(body))
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}

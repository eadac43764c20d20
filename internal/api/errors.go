package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrUnauthenticated means no token is held or the server rejected it.
	ErrUnauthenticated = errors.New("not logged in")
	// ErrNetwork means the request failed before any response arrived.
	ErrNetwork = errors.New("service unavailable")
)

// Kind classifies failures for the screens and forms that surface them.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthenticated
	KindValidation
	KindNetwork
	KindNotFound
	KindConflict
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// generalKeys are object keys the backend uses for a single banner message.
var generalKeys = []string{"error", "Error", "message", "general"}

// Error is a non-2xx response from the API.
type Error struct {
	Status  int
	General string            // banner message, if the payload was a string or had a general key
	Fields  map[string]string // per-field messages, if the payload was keyed by field
	Body    []byte
}

func (e *Error) Error() string {
	if e.General != "" {
		return fmt.Sprintf("%d: %s", e.Status, e.General)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + e.Fields[k]
		}
		return fmt.Sprintf("%d: %s", e.Status, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("%d: %s", e.Status, http.StatusText(e.Status))
}

// Unwrap lets errors.Is(err, ErrUnauthenticated) match 401/403 responses.
func (e *Error) Unwrap() error {
	if e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden {
		return ErrUnauthenticated
	}
	return nil
}

// Kind maps the status to the error taxonomy.
func (e *Error) Kind() Kind {
	switch {
	case e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden:
		return KindUnauthenticated
	case e.Status == http.StatusNotFound:
		return KindNotFound
	case e.Status == http.StatusConflict:
		return KindConflict
	case e.Status == http.StatusServiceUnavailable || e.Status == http.StatusBadGateway || e.Status == http.StatusGatewayTimeout:
		return KindNetwork
	case e.Status >= 400 && e.Status < 500:
		return KindValidation
	case e.Status >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

// KindOf classifies any error returned by the client.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind()
	}
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	default:
		return KindUnknown
	}
}

// Message returns the best single line to show for err.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.General != "" {
		return apiErr.General
	}
	return err.Error()
}

// newError builds an Error from a response status and body. A JSON string or
// plain text becomes the general message. An object with exactly one general
// key also does. Any other object is read as field -> message.
func newError(status int, body []byte) *Error {
	e := &Error{Status: status, Body: body}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return e
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			e.General = s
			return e
		}
	case '{':
		var obj map[string]any
		if err := json.Unmarshal(trimmed, &obj); err == nil {
			for _, k := range generalKeys {
				if v, ok := obj[k]; ok && len(obj) == 1 {
					e.General = stringify(v)
					return e
				}
			}
			fields := make(map[string]string, len(obj))
			for k, v := range obj {
				fields[k] = stringify(v)
			}
			// A general key alongside others (e.g. Spring's error envelope)
			// still yields a banner.
			for _, k := range generalKeys {
				if v, ok := fields[k]; ok && e.General == "" {
					e.General = v
					delete(fields, k)
				}
			}
			if len(fields) > 0 && !isSpringEnvelope(obj) {
				e.Fields = fields
			}
			return e
		}
	}

	e.General = string(trimmed)
	return e
}

// isSpringEnvelope reports whether obj is the framework's default error body
// (timestamp/status/path), whose keys are not form fields.
func isSpringEnvelope(obj map[string]any) bool {
	_, ts := obj["timestamp"]
	_, path := obj["path"]
	return ts && path
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, stringify(p))
		}
		return strings.Join(parts, ", ")
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

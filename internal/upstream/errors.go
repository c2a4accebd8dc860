package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	dErrors "targetkit/pkg/domain-errors"
)

// Category is the normalized failure taxonomy for upstream calls. Callers
// branch on the category, never on raw status codes or message text.
type Category string

const (
	// CategoryNotFound is a 404: the resource is absent in the addressed workspace.
	CategoryNotFound Category = "not_found"

	// CategoryForbidden is a 403: the credentials may not see the resource there.
	CategoryForbidden Category = "forbidden"

	CategoryUnauthorized Category = "unauthorized"
	CategoryRateLimited  Category = "rate_limited"
	CategoryTimeout      Category = "timeout"

	// CategoryUnavailable covers 5xx answers and transport failures.
	CategoryUnavailable Category = "unavailable"

	// CategoryRejected covers the remaining 4xx answers (validation, conflict).
	CategoryRejected Category = "rejected"

	// CategoryBadData means a 2xx answer whose body could not be decoded.
	CategoryBadData Category = "bad_data"

	CategoryInternal Category = "internal"
)

// Error wraps an upstream failure with its category and the context needed to
// report it: the operation, the workspace it addressed and the raw body.
type Error struct {
	Category   Category
	Operation  string
	Workspace  string
	Status     int
	Message    string
	Body       []byte
	Underlying error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("upstream %s [%s]", e.Operation, e.Category)
	if e.Workspace != "" {
		msg += " workspace " + e.Workspace
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(" status %d", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Underlying != nil {
		msg += ": " + e.Underlying.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// CategoryForStatus classifies a non-2xx HTTP status.
func CategoryForStatus(status int) Category {
	switch {
	case status == http.StatusNotFound:
		return CategoryNotFound
	case status == http.StatusForbidden:
		return CategoryForbidden
	case status == http.StatusUnauthorized:
		return CategoryUnauthorized
	case status == http.StatusTooManyRequests:
		return CategoryRateLimited
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return CategoryTimeout
	case status >= 500:
		return CategoryUnavailable
	case status >= 400:
		return CategoryRejected
	default:
		return CategoryInternal
	}
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var ue *Error
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// CategoryOf returns the category of err, or CategoryInternal for foreign errors.
func CategoryOf(err error) Category {
	if ue, ok := AsError(err); ok {
		return ue.Category
	}
	return CategoryInternal
}

// IsLookupMiss reports whether err means "not visible in this workspace":
// a 404 or a 403 from the API itself. A rejected token exchange never is.
func IsLookupMiss(err error) bool {
	ue, ok := AsError(err)
	if !ok || ue.Operation == OpToken {
		return false
	}
	return ue.Category == CategoryNotFound || ue.Category == CategoryForbidden
}

const rawExcerptLen = 200

// BestMessage picks the most informative error text from an upstream body:
// "message", then "error", then "errors[0].message" for JSON objects; the
// first 200 characters for non-JSON bodies; otherwise fallback.
func BestMessage(body []byte, fallback string) string {
	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		if excerpt := excerpt(body, rawExcerptLen); excerpt != "" {
			return excerpt
		}
		return fallback
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return fallback
	}
	if s := stringField(obj, "message"); s != "" {
		return s
	}
	if s := stringField(obj, "error"); s != "" {
		return s
	}
	if list, ok := obj["errors"].([]any); ok && len(list) > 0 {
		if first, ok := list[0].(map[string]any); ok {
			if s := stringField(first, "message"); s != "" {
				return s
			}
		}
	}
	return fallback
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

// excerpt returns at most n characters of body, never splitting a rune.
func excerpt(body []byte, n int) string {
	if len(body) == 0 {
		return ""
	}
	if utf8.RuneCount(body) <= n {
		return string(body)
	}
	runes := []rune(string(body))
	return string(runes[:n])
}

var categoryCodes = map[Category]dErrors.Code{
	CategoryNotFound:     dErrors.CodeNotFound,
	CategoryForbidden:    dErrors.CodeForbidden,
	CategoryUnauthorized: dErrors.CodeUnauthorized,
	CategoryRateLimited:  dErrors.CodeRateLimited,
	CategoryTimeout:      dErrors.CodeTimeout,
	CategoryUnavailable:  dErrors.CodeUnavailable,
	CategoryRejected:     dErrors.CodeBadRequest,
	CategoryBadData:      dErrors.CodeBadGateway,
	CategoryInternal:     dErrors.CodeInternal,
}

// ToDomain translates an upstream failure into a domain error that mirrors
// the upstream HTTP status and carries the parsed upstream body as details.
// Errors that are not upstream errors are returned unchanged.
func ToDomain(err error) error {
	ue, ok := AsError(err)
	if !ok {
		return err
	}
	code, ok := categoryCodes[ue.Category]
	if !ok {
		code = dErrors.CodeInternal
	}
	status := ue.Status
	if status < http.StatusBadRequest {
		status = 0
	}
	return &dErrors.Error{
		Code:    code,
		Message: ue.Message,
		Err:     err,
		Status:  status,
		Details: detailsOf(ue.Body),
	}
}

func detailsOf(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		return nil
	}
	return obj
}

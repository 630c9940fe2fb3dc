// Package apierror turns failures from the search provider into stable,
// user-facing error responses.
package apierror

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// CodeCreditsExhausted is the provider code for a spent hourly quota.
const CodeCreditsExhausted = "CREDITS_EXHAUSTED"

// User-facing sentences, one per failure class.
const (
	MessageQuotaGeneric   = "You've used your search quota for this hour. Please try again in a little while."
	MessageBadRequest     = "The search request was invalid. Please check your filters and try again."
	MessageUnauthorized   = "The search service rejected our credentials. Please check that the API key is set and valid."
	MessageForbidden      = "Your plan does not include access to this feature."
	MessageNotFound       = "We couldn't find what you were looking for."
	MessageConflict       = "That change conflicts with the current state. Please refresh and try again."
	MessageUnprocessable  = "The search service couldn't process that request. Please adjust it and try again."
	MessageRateLimited    = "Too many requests right now. Please wait a moment and try again."
	MessageServerError    = "Something went wrong on our side. Please try again in a few minutes."
	MessageNetworkFailure = "We couldn't reach the search service. Please check your connection and try again."
)

// resetLayout renders a quota reset time, e.g. "Mon, Jan 1, 12:00 AM UTC".
const resetLayout = "Mon, Jan 2, 3:04 PM MST"

// Details carries extra provider context attached to an error body.
type Details struct {
	ResetsAt       string `json:"resetsAt,omitempty"`
	OrganizationID string `json:"organizationId,omitempty"`
}

// Body is the error payload returned by the search provider.
type Body struct {
	Error   string   `json:"error,omitempty"`
	Code    string   `json:"code,omitempty"`
	Details *Details `json:"details,omitempty"`
}

func (b *Body) resetsAt() string {
	if b == nil || b.Details == nil {
		return ""
	}
	return b.Details.ResetsAt
}

// RemoteError is a non-2xx answer from the search provider.
type RemoteError struct {
	Status  int
	Body    *Body
	Message string
}

func (e *RemoteError) Error() string {
	if e.Body != nil && e.Body.Error != "" {
		return fmt.Sprintf("remote error (%d): %s", e.Status, e.Body.Error)
	}
	if e.Message != "" {
		return fmt.Sprintf("remote error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("remote error (%d)", e.Status)
}

// StatusOf returns the provider status carried by err, or 0 when err has none.
func StatusOf(err error) int {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}

// Response is the JSON error shape returned to clients.
type Response struct {
	Error       string `json:"error"`
	Code        string `json:"code,omitempty"`
	ResetsAt    string `json:"resetsAt,omitempty"`
	UserMessage string `json:"userMessage"`
}

// Normalized pairs a response body with the HTTP status to send it with.
type Normalized struct {
	Status int
	Body   Response
}

// Normalize maps err to a client response, rendering reset times in local time.
func Normalize(err error) Normalized {
	return NormalizeIn(err, time.Local)
}

// NormalizeIn is Normalize with an explicit location for reset times.
func NormalizeIn(err error, loc *time.Location) Normalized {
	var (
		status int
		body   *Body
		raw    = "Something went wrong"
	)

	var re *RemoteError
	if errors.As(err, &re) {
		status = re.Status
		body = re.Body
		switch {
		case body != nil && body.Error != "":
			raw = body.Error
		case re.Message != "":
			raw = re.Message
		}
	} else if err != nil {
		raw = err.Error()
	}

	if status == http.StatusTooManyRequests && quotaExhausted(body) {
		resetsAt := body.resetsAt()
		msg := MessageQuotaGeneric
		if resetsAt != "" {
			msg = fmt.Sprintf("You've used your search quota for this hour. It resets at %s. Please try again after that.",
				renderReset(resetsAt, loc))
		}
		return Normalized{
			Status: http.StatusTooManyRequests,
			Body: Response{
				Error:       raw,
				Code:        CodeCreditsExhausted,
				ResetsAt:    resetsAt,
				UserMessage: msg,
			},
		}
	}

	out := Normalized{Status: status, Body: Response{Error: raw}}
	if body != nil {
		out.Body.Code = body.Code
	}

	switch {
	case status == http.StatusBadRequest:
		out.Body.UserMessage = MessageBadRequest
	case status == http.StatusUnauthorized:
		out.Body.UserMessage = MessageUnauthorized
	case status == http.StatusForbidden:
		out.Body.UserMessage = MessageForbidden
		if text := providerText(body, re); text != "" && !strings.EqualFold(text, "Forbidden") {
			out.Body.UserMessage = text
		}
	case status == http.StatusNotFound:
		out.Body.UserMessage = MessageNotFound
	case status == http.StatusConflict:
		out.Body.UserMessage = MessageConflict
	case status == http.StatusUnprocessableEntity:
		out.Body.UserMessage = MessageUnprocessable
	case status == http.StatusTooManyRequests:
		out.Body.UserMessage = MessageRateLimited
	default:
		out.Body.UserMessage = MessageServerError
		if status < http.StatusBadRequest {
			out.Status = http.StatusInternalServerError
		}
	}

	if status == 0 && isNetworkFailure(err) {
		out.Body.UserMessage = MessageNetworkFailure
	}

	return out
}

func quotaExhausted(b *Body) bool {
	if b == nil {
		return false
	}
	return b.Code == CodeCreditsExhausted || b.resetsAt() != ""
}

func providerText(b *Body, re *RemoteError) string {
	if b != nil && strings.TrimSpace(b.Error) != "" {
		return strings.TrimSpace(b.Error)
	}
	if re != nil {
		return strings.TrimSpace(re.Message)
	}
	return ""
}

func renderReset(resetsAt string, loc *time.Location) string {
	t, err := time.Parse(time.RFC3339, resetsAt)
	if err != nil {
		return resetsAt
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(resetLayout)
}

func isNetworkFailure(err error) bool {
	if err == nil {
		return false
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "fetch") ||
		strings.Contains(msg, "network") ||
		strings.Contains(msg, "connection")
}

package models

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// Error codes used in API responses and internal error handling.
const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeUpstream     = "UPSTREAM_FETCH_FAILED"
	ErrCodeTimeout      = "SCRAPE_TIMEOUT"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"

	// LLM-related error codes. These never surface through the scrape API
	// (the AI fallback degrades silently) but are logged.
	ErrCodeLLMFailure     = "LLM_FAILURE"
	ErrCodeLLMAuthFailure = "LLM_AUTH_FAILURE"
	ErrCodeLLMRateLimited = "LLM_RATE_LIMITED"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *ScrapeError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}

// UpstreamStatusError is returned by a primary extractor when the product
// page answers with a non-2xx status. The message format is stable: other
// extractor implementations only promise the "HTTP error! status: NNN" text,
// so StatusFromError can also recover the status from the message alone.
type UpstreamStatusError struct {
	Status int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

var reUpstreamStatus = regexp.MustCompile(`HTTP error! status: (\d{3})`)

// StatusFromError recovers the upstream HTTP status from a primary extractor
// error. It prefers the typed UpstreamStatusError and falls back to the
// message pattern. Returns ok=false when no status can be determined.
func StatusFromError(err error) (int, bool) {
	var ue *UpstreamStatusError
	if errors.As(err, &ue) {
		return ue.Status, true
	}
	if m := reUpstreamStatus.FindStringSubmatch(err.Error()); len(m) == 2 {
		status, convErr := strconv.Atoi(m[1])
		if convErr == nil {
			return status, true
		}
	}
	return 0, false
}

// cmd/verifact/error.go
package main

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// ErrorKind represents different categories of errors
type ErrorKind string

const (
	// Initialization failed: no credential, no SDK, or no resolvable model.
	// Fatal, surfaced once, never retried automatically.
	ErrKindInit ErrorKind = "init"

	// The requested model identifier is unavailable (404-class).
	// Recoverable exactly once per call via rediscovery.
	ErrKindModelNotFound ErrorKind = "model_not_found"

	// The model endpoint is rate limiting us (429-class).
	// Recoverable via bounded exponential backoff.
	ErrKindRateLimit ErrorKind = "rate_limit"

	// Any other model/generation failure. Fatal for the call, no retry.
	ErrKindGeneration ErrorKind = "generation"

	// Evidence source failure. Absorbed locally, degrades to empty evidence.
	ErrKindFetch ErrorKind = "fetch"

	// Cache I/O failure. Never fatal, degrades to cache miss / skipped write.
	ErrKindCache ErrorKind = "cache"
)

// VerifactError is the application error type
type VerifactError struct {
	Kind    ErrorKind
	Message string
	Inner   error
}

func (e *VerifactError) Error() string {
	if e.Inner != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Inner)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *VerifactError) Unwrap() error {
	return e.Inner
}

// NewError creates a new VerifactError
func NewError(kind ErrorKind, message string, inner error) *VerifactError {
	return &VerifactError{Kind: kind, Message: message, Inner: inner}
}

// NewInitError creates an initialization error
func NewInitError(message string, inner error) *VerifactError {
	return NewError(ErrKindInit, message, inner)
}

// ClassifyModelError inspects a model-SDK error once and maps it onto the
// error taxonomy, so callers switch on kind instead of re-parsing text.
func ClassifyModelError(err error) ErrorKind {
	if err == nil {
		return ErrKindGeneration
	}

	var ve *VerifactError
	if errors.As(err, &ve) {
		return ve.Kind
	}

	// Prefer the SDK's structured error when present
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 404:
			return ErrKindModelNotFound
		case 429:
			return ErrKindRateLimit
		}
		if code, ok := apiErr.Code.(string); ok && code == "model_not_found" {
			return ErrKindModelNotFound
		}
	}

	// Fall back to text sniffing for clients that surface plain errors
	text := strings.ToLower(err.Error())
	switch {
	case strings.Contains(text, "404") && (strings.Contains(text, "not found") || strings.Contains(text, "model")):
		return ErrKindModelNotFound
	case strings.Contains(text, "model_not_found"):
		return ErrKindModelNotFound
	case strings.Contains(text, "429"), strings.Contains(text, "quota"), strings.Contains(text, "rate limit"):
		return ErrKindRateLimit
	}
	return ErrKindGeneration
}

var retryDelayRe = regexp.MustCompile(`(?i)retry.*?(\d+)`)

// ParseRetryDelay extracts a server-suggested retry delay, in seconds, from
// a rate-limit error's text. The caller adds its own safety buffer.
func ParseRetryDelay(err error) (time.Duration, bool) {
	if err == nil {
		return 0, false
	}
	m := retryDelayRe.FindStringSubmatch(err.Error())
	if m == nil {
		return 0, false
	}
	seconds, convErr := strconv.Atoi(m[1])
	if convErr != nil || seconds <= 0 {
		return 0, false
	}
	return time.Duration(seconds) * time.Second, true
}

// cmd/newsloom/errors.go
package main

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeFeed     ErrorType = "feed"
	ErrorTypeFetch    ErrorType = "fetch"
	ErrorTypeExtract  ErrorType = "extract"
	ErrorTypeAI       ErrorType = "ai"
	ErrorTypeParse    ErrorType = "parse"
	ErrorTypeDatabase ErrorType = "database"
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeInternal ErrorType = "internal"
)

// LoomError is the custom error type for the application
type LoomError struct {
	Type      ErrorType `json:"type"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Component string    `json:"component,omitempty"`
	Inner     error     `json:"-"`
}

func (e *LoomError) Error() string {
	if e.Inner != nil {
		return fmt.Sprintf("[%s-%s] %s: %v", e.Type, e.Code, e.Message, e.Inner)
	}
	return fmt.Sprintf("[%s-%s] %s", e.Type, e.Code, e.Message)
}

func (e *LoomError) Unwrap() error {
	return e.Inner
}

// NewError creates a new LoomError
func NewError(errType ErrorType, code string, message string, inner error) *LoomError {
	return &LoomError{
		Type:    errType,
		Code:    code,
		Message: message,
		Inner:   inner,
	}
}

// Common error constructors
func NewFeedError(code string, message string, inner error) *LoomError {
	return NewError(ErrorTypeFeed, code, message, inner)
}

func NewFetchError(code string, message string, inner error) *LoomError {
	return NewError(ErrorTypeFetch, code, message, inner)
}

func NewAIError(code string, message string, inner error) *LoomError {
	return NewError(ErrorTypeAI, code, message, inner)
}

func NewParseError(code string, message string, inner error) *LoomError {
	return NewError(ErrorTypeParse, code, message, inner)
}

func NewDatabaseError(code string, message string, inner error) *LoomError {
	return NewError(ErrorTypeDatabase, code, message, inner)
}

func NewConfigError(code string, message string, inner error) *LoomError {
	return NewError(ErrorTypeConfig, code, message, inner)
}

// Error codes
const (
	// Feed error codes
	ErrFeedFetch = "FEED_001"
	ErrFeedParse = "FEED_002"

	// Page fetch error codes
	ErrFetchRequest = "FETCH_001"
	ErrFetchStatus  = "FETCH_002"
	ErrFetchBody    = "FETCH_003"

	// AI service error codes
	ErrAIRequest  = "AI_001"
	ErrAIQuota    = "AI_002"
	ErrAIResponse = "AI_003"

	// Parse error codes
	ErrParseJSON = "PARSE_001"

	// Database error codes
	ErrDatabaseConnection = "DB_001"
	ErrDatabaseQuery      = "DB_002"
	ErrNotFound           = "DB_003"

	// Config error codes
	ErrConfigLoad       = "CONFIG_001"
	ErrConfigValidation = "CONFIG_002"
)

// ErrArticleNotFound is returned when an article id has no row
var ErrArticleNotFound = NewError(ErrorTypeDatabase, ErrNotFound, "article not found", nil)

// IsTransient determines if an error is likely temporary
func IsTransient(err error) bool {
	var le *LoomError
	if errors.As(err, &le) {
		switch le.Code {
		case ErrFeedFetch, ErrFetchRequest, ErrFetchStatus, ErrAIQuota, ErrDatabaseConnection:
			return true
		}
	}
	return false
}

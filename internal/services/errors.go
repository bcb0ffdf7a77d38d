package services

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("not logged in")
)

type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }

// UpstreamError wraps a failed, empty or timed out completion call.
type UpstreamError struct{ Err error }

func (e *UpstreamError) Error() string { return fmt.Sprintf("completion failed: %v", e.Err) }

func (e *UpstreamError) Unwrap() error { return e.Err }

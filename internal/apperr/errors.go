// Package apperr holds the sentinel errors shared across scanboard.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrBusy          = errors.New("analysis already in progress")

	// ErrAnalysis covers every failure of the image-analysis call: network,
	// malformed response, quota or credentials. Callers treat them alike.
	ErrAnalysis = errors.New("analysis failed")

	// ErrDeviceAccess means the capture source is unavailable or not permitted.
	ErrDeviceAccess = errors.New("capture device unavailable")
)

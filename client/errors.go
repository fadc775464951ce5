package client

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationRequired is returned before any network I/O when an
	// operation needs a caller identity and the token source has none.
	ErrAuthenticationRequired = errors.New("authentication required: please log in")

	// ErrNotFound covers unknown verification codes and item ids.
	ErrNotFound = errors.New("no matching item or verification code")

	// ErrAlreadyClaimed means another party won the claim race.
	ErrAlreadyClaimed = errors.New("item has already been claimed")

	// ErrItemAlreadyHandedOver means the item reached its terminal state.
	ErrItemAlreadyHandedOver = errors.New("item has already been handed over")

	// ErrInvalidState means the item is not in the state the operation needs.
	ErrInvalidState = errors.New("item is not in a state that allows this operation")
)

// ValidationError reports missing or malformed input, caught before any
// network call is issued.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// AuthorizationError means the caller is authenticated but not entitled:
// distinct from ErrAuthenticationRequired so surfaces can show "not
// permitted" instead of prompting for login.
type AuthorizationError struct {
	Msg string
}

func (e *AuthorizationError) Error() string { return e.Msg }

// APIError is a backend rejection that maps to no more specific type.
type APIError struct {
	StatusCode int
	Msg        string
}

func (e *APIError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("request failed (%d): %s", e.StatusCode, e.Msg)
	}
	return fmt.Sprintf("request failed (%d)", e.StatusCode)
}

// SlotRequestError means step one of the upload pipeline failed: no upload
// slot was granted, nothing was transmitted, no record exists.
type SlotRequestError struct {
	Err error
}

func (e *SlotRequestError) Error() string { return "requesting upload slot: " + e.Err.Error() }
func (e *SlotRequestError) Unwrap() error { return e.Err }

// StorageWriteError means the direct write to the storage target was
// rejected. No metadata was committed, so no partial item exists.
type StorageWriteError struct {
	StatusCode int
	Msg        string
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("writing image to storage: %d %s", e.StatusCode, e.Msg)
}

// MetadataCommitError is the warning-class pipeline failure: the image bytes
// reached storage but the item record was rejected, so the upload is orphaned.
// Its message says so explicitly because the user should know the difference.
type MetadataCommitError struct {
	Err error
}

func (e *MetadataCommitError) Error() string {
	return "your image was transmitted but the report could not be saved: " + e.Err.Error()
}

func (e *MetadataCommitError) Unwrap() error { return e.Err }

package items

import "errors"

var (
	// ErrItemNotFound and ErrCodeNotFound cover unknown identifiers.
	ErrItemNotFound = errors.New("item not found")
	ErrCodeNotFound = errors.New("verification code not found")

	// ErrDuplicateItem rejects a metadata commit reusing an existing itemId.
	ErrDuplicateItem = errors.New("item already exists")

	// ErrInvalidItemType rejects a commit whose type is neither lost nor found.
	ErrInvalidItemType = errors.New("itemType must be 'lost' or 'found'")

	// ErrNotUploader is returned when a caller who is not the item's uploader
	// attempts an uploader-only operation (minting a code, confirming handover).
	ErrNotUploader = errors.New("only the uploader may perform this action")

	// ErrOwnItem rejects a claim by the item's own uploader.
	ErrOwnItem = errors.New("cannot claim an item you reported")

	// Lifecycle conflicts.
	ErrAlreadyClaimed    = errors.New("item has already been claimed")
	ErrAlreadyHandedOver = errors.New("item has already been handed over")
	ErrInvalidState      = errors.New("item is not awaiting handover")

	// ErrConditionFailed is the repository's signal that a conditional write
	// lost: the stored state no longer matched the expected one. The service
	// re-reads and maps it to the precise lifecycle conflict.
	ErrConditionFailed = errors.New("conditional update failed")
)

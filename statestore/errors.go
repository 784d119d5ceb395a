package statestore

import "errors"

var (
	// ErrNotFound is returned by Load when no snapshot exists for a key.
	ErrNotFound = errors.New("statestore: snapshot not found")

	// ErrChecksumMismatch is returned by Load when the stored checksum
	// does not match the decompressed snapshot content, indicating
	// corruption.
	ErrChecksumMismatch = errors.New("statestore: checksum mismatch")

	// ErrCorruptBlock is returned when a stored block is truncated or
	// its header is inconsistent with its length.
	ErrCorruptBlock = errors.New("statestore: corrupt compressed block")
)

package record

import "errors"

var (
	// ErrRecordNotFound indicates the record doesn't exist.
	ErrRecordNotFound = errors.New("record not found")
	// ErrInvalidQuality indicates the quality input is malformed or out of range.
	ErrInvalidQuality = errors.New("invalid quality: use XX,X between 0 and 100")
	// ErrEmptyOccurrence indicates the occurrence text is blank.
	ErrEmptyOccurrence = errors.New("occurrence must not be empty")
	// ErrInvalidInput indicates an edit request that names no record.
	ErrInvalidInput = errors.New("invalid record input")
	// ErrPersist indicates the mutation was applied in memory but not saved.
	ErrPersist = errors.New("records not saved")
)

package db

import "errors"

var (
	// ErrDocumentNotFound indicates no document is stored under a key
	ErrDocumentNotFound = errors.New("document not found")

	// ErrScalarNotFound indicates no scalar is stored under a key
	ErrScalarNotFound = errors.New("scalar not found")

	// ErrInvalidDocument indicates a document body is not valid JSON
	ErrInvalidDocument = errors.New("invalid document")
)

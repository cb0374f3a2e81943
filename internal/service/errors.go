package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrDocumentNotFound is returned when a document does not exist
	ErrDocumentNotFound = errors.New("document not found")

	// ErrContactNotFound is returned when a contact does not exist
	ErrContactNotFound = errors.New("contact not found")

	// ErrContactInUse is returned when deleting a contact that documents reference
	ErrContactInUse = errors.New("contact is referenced by documents")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")
)

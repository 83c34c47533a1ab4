package storage

import "errors"

var (
	// ErrProviderNotFound is returned when no embedding provider record exists
	ErrProviderNotFound = errors.New("embedding provider not found")

	// ErrModelNotFound is returned when a cloud embedding model is not found
	ErrModelNotFound = errors.New("embedding model not found")

	// ErrModelExists is returned when a model name is already registered for a provider
	ErrModelExists = errors.New("embedding model already exists")

	// ErrCurrentModelNotSet is returned before any model was selected
	ErrCurrentModelNotSet = errors.New("current embedding model not set")

	// ErrAdminUserNotFound is returned when an admin user is not found
	ErrAdminUserNotFound = errors.New("admin user not found")
)

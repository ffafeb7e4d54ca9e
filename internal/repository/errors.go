package repository

import "errors"

// Common repository errors
var (
	// ErrTaskNotFound is returned when a task document is not found
	ErrTaskNotFound = errors.New("task not found")

	// ErrUserNotFound is returned when a user document is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists is returned when creating a user whose email is taken
	ErrUserExists = errors.New("user already exists")
)

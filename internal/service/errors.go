package service

import "errors"

// Workflow failures. Handlers map these onto HTTP statuses; anything
// else that escapes a workflow method is an internal error and its
// detail stays in the server log.
var (
	ErrPasswordMismatch = errors.New("Passwords do not match")
	ErrEmailInUse       = errors.New("Email is already in use")
	ErrUserNotFound     = errors.New("User not found")
	ErrInvalidPassword  = errors.New("Invalid password")
	ErrInviteExists     = errors.New("Invite already exists")
	ErrNotInvited       = errors.New("User not invited")
	ErrTaskNotFound     = errors.New("Task not found")
)

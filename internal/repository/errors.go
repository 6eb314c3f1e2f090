package repository

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrPredictionNotFound = errors.New("prediction not found")
	ErrRecordNotFound     = errors.New("medical record not found")
	// ErrSessionCollision surfaces a duplicate session identifier. The
	// caller may retry with a fresh id.
	ErrSessionCollision = errors.New("prediction session id already exists")
)

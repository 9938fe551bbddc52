package domain

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrCredentialsRequired = errors.New("username and password are required")
	ErrPersistenceCorrupt  = errors.New("persisted session is corrupt")
	ErrKeyNotFound         = errors.New("key not found")
	ErrNotAuthenticated    = errors.New("not authenticated")
)

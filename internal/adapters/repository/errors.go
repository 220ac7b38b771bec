package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("bout not found")
	ErrNoResult      = errors.New("no cached result")
	ErrAlreadyExists = errors.New("bout already exists")
	ErrEventLimit    = errors.New("bout event limit reached")
)

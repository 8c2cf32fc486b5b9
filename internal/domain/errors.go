// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates the entity already exists or was concurrently modified.
var ErrConflict = errors.New("conflict")

// ErrValidation indicates the request failed domain validation.
var ErrValidation = errors.New("validation failed")

// ErrDenied indicates the identity is not authorized for the console.
var ErrDenied = errors.New("access denied")

// Package repository defines the GORM-backed persistence layer and the error
// values shared by its repositories.  Handlers translate these sentinels
// into HTTP statuses: ErrNotFound to 404, ErrForbidden to 403, and
// ErrGenreNotFound or ErrAuthorNotFound to a 400 validation answer.
package repository

import "errors"

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrGenreNotFound is returned when a movie references a genre id that is
// not in the genres table.
var ErrGenreNotFound = errors.New("genre not found")

// ErrAuthorNotFound is returned when a movie names an author id that is not
// in the users table.
var ErrAuthorNotFound = errors.New("author not found")

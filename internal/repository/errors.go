// Package repository defines the persistence contracts and their MySQL
// implementations.  Sentinel errors let handlers translate storage
// outcomes into HTTP responses without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when a row does not exist or is soft-deleted.
// Handlers translate it into an HTTP 404.  Soft-deleted rows are
// indistinguishable from absent ones through this API on purpose.
var ErrNotFound = errors.New("not found")

package errors

import "errors"

// ErrNotFound marks a lookup that found no row. Callers wrap it with the
// resource name and test with errors.Is.
var ErrNotFound = errors.New("not found")

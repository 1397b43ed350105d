package core

import "errors"

// ErrNotFound marks every not-found sentinel in the domain packages.
var ErrNotFound = errors.New("not found")

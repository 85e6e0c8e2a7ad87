package models

import "errors"

// ErrNotFound is returned by the backend when a user, source or offer
// does not exist.
var ErrNotFound = errors.New("not found")

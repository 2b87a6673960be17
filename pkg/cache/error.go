package cache

import "errors"

// ErrNotFound is returned when an id has no live cache entry.
var ErrNotFound = errors.New("cache entry not found")

package domain

import "errors"

// ErrDuplicateKey is returned by repositories when an insert violates a
// uniqueness constraint. The wallet service relies on it to turn a lost
// create race into a lookup.
var ErrDuplicateKey = errors.New("duplicate key")

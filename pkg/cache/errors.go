package cache

import "errors"

// ErrUnsupported is returned by Clear for backends that cannot enumerate
// their entries.
var ErrUnsupported = errors.New("cache: operation not supported by backend")

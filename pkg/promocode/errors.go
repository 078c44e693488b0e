package promocode

import "errors"

var (
	ErrCodeNotFound = errors.New("promocode: code not found")
	ErrStoreFailure = errors.New("promocode: failed to load code")
)

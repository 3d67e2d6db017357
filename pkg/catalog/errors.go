package catalog

import "errors"

var (
	ErrLoad    = errors.New("catalog: failed to load")
	ErrInvalid = errors.New("catalog: invalid definition")
)

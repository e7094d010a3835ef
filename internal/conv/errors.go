package conv

import "errors"

// ErrMissingParameter indicates a required argument was absent.
var ErrMissingParameter = errors.New("required parameter is missing")

// ErrInvalidParameter indicates an argument was present but structurally wrong.
var ErrInvalidParameter = errors.New("invalid parameter")

package apperrors

import "errors"

// ErrSchema indicates that the trial balance or parameter input cannot be used:
// required columns are missing or no usable account rows remain.
var ErrSchema = errors.New("schema error")

// ErrMapping indicates that a mapping table row is incomplete or malformed.
var ErrMapping = errors.New("mapping error")

// ErrChecksFailed indicates that at least one ERROR check was recorded. Outputs
// have still been written when this is returned.
var ErrChecksFailed = errors.New("consistency checks failed")

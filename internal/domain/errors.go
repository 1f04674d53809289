package domain

import "errors"

// ErrInvalidRequest indicates that an evaluation or analysis request contains invalid data.
var ErrInvalidRequest = errors.New("invalid request")

// ErrInvalidAddress indicates that a caller address could not be parsed.
var ErrInvalidAddress = errors.New("invalid caller address")

// ErrUnknownCategory indicates that a category key is not part of the closed set.
// Lenient lookups never return it; they fall back to the catch-all category.
var ErrUnknownCategory = errors.New("unknown category")

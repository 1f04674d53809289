package rubric

import "errors"

// Validation failures of the judge's rubric response. All of them are fatal
// for the evaluation; nothing is clamped or truncated.
var (
	// ErrInvalidResponse indicates the canonical output is not a JSON object
	// of the expected shape.
	ErrInvalidResponse = errors.New("invalid rubric response")

	// ErrMissingField indicates the response lacks score or message.
	ErrMissingField = errors.New("rubric response missing required field")

	// ErrScoreOutOfRange indicates a score outside [0, 100].
	ErrScoreOutOfRange = errors.New("rubric score out of range")

	// ErrMessageTooLong indicates a message longer than 200 characters.
	ErrMessageTooLong = errors.New("rubric message too long")
)

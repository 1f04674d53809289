package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// EventType identifies a domain event emitted by the pipelines.
type EventType string

const (
	// EventTypeRecordAppended is emitted once a canonical analysis record has
	// been appended to its category log.
	EventTypeRecordAppended EventType = "analysis.record_appended"

	// EventTypeConsensusFailed is emitted when an analysis could not reach
	// consensus and nothing was stored.
	EventTypeConsensusFailed EventType = "consensus.failed"

	// EventTypeRubricEvaluated is emitted after a rubric evaluation validated.
	EventTypeRubricEvaluated EventType = "rubric.evaluated"
)

// RecordAppendedPayload describes a freshly appended analysis record.
type RecordAppendedPayload struct {
	Category      Category `json:"category"`
	Index         int      `json:"index"`
	CallerAddress string   `json:"caller_address"`
	URL           string   `json:"url"`
	Parsed        bool     `json:"parsed"`
	Score         int      `json:"score,omitempty"`
}

// ConsensusFailedPayload describes an analysis or evaluation that was rejected.
type ConsensusFailedPayload struct {
	Policy string `json:"policy"`
	Rounds int    `json:"rounds"`
	Reason string `json:"reason"`
	URL    string `json:"url,omitempty"`
}

// RubricEvaluatedPayload describes a validated rubric evaluation.
type RubricEvaluatedPayload struct {
	Score         int `json:"score"`
	MessageLength int `json:"message_length"`
	TagCount      int `json:"tag_count"`
}

// GenerateIdempotencyKey derives a stable event key from a base key and a
// suffix so that retried emissions of the same event deduplicate downstream.
func GenerateIdempotencyKey(base, eventSuffix string) string {
	hasher := sha256.New()
	hasher.Write([]byte(base + eventSuffix))
	return hex.EncodeToString(hasher.Sum(nil))
}

// RecordAppendedIdempotencyKey keys a RecordAppended event by its storage location,
// which is unique for the lifetime of the log.
func RecordAppendedIdempotencyKey(ref RecordRef) string {
	return GenerateIdempotencyKey(string(ref.Category), ":"+strconv.Itoa(ref.Index))
}

package entity

import "time"

// SurveyResponse is one stored submission. Records are append-only: once
// written they are never mutated, which is what lets reads run without
// cross-request locking.
type SurveyResponse struct {
	Id        int64
	Timestamp time.Time

	// Fields is the flattened answer set as submitted. Values are strings or
	// ordered string lists (checkbox groups). Keys of skipped question blocks
	// are absent, never null.
	Fields map[string]any
}

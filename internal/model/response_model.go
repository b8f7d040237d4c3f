package model

// SurveyResponse is the stored document shape: id and timestamp alongside the
// flattened answer fields at the top level, matching the collection layout the
// stats aggregation queries against ({id, timestamp, zootopia_watched, ...}).
// The timestamp is kept as an ISO-8601 string so range filters compare
// lexicographically.
type SurveyResponse map[string]any

const (
	FieldId        = "id"
	FieldTimestamp = "timestamp"
)

// CollectionName is the Mongo collection holding submissions.
const CollectionName = "responses"

package contract

import (
	"context"
	"time"

	"github.com/Song-beanpp/film-survey-app-final/internal/entity"
)

// ResponseRepository is the storage surface the survey service works against.
// Both the Mongo implementation and the JSON-file fallback satisfy it, so the
// service never learns which store handled a call.
type ResponseRepository interface {
	// Save persists a new immutable record. Fails without partial effects.
	Save(ctx context.Context, r *entity.SurveyResponse) error

	// FindAll returns every record, newest first by timestamp.
	FindAll(ctx context.Context) ([]*entity.SurveyResponse, error)

	// Count returns the total number of records.
	Count(ctx context.Context) (int64, error)

	// CountSince returns the number of records created at or after the
	// given instant.
	CountSince(ctx context.Context, since time.Time) (int64, error)

	// WatchedCounts returns, per film id, how many records answered that
	// film's watched field affirmatively.
	WatchedCounts(ctx context.Context) (map[string]int64, error)
}

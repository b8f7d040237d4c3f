package mapper

import (
	"time"

	"github.com/Song-beanpp/film-survey-app-final/internal/entity"
	"github.com/Song-beanpp/film-survey-app-final/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ResponseMapper struct{}

func NewResponseMapper() *ResponseMapper {
	return &ResponseMapper{}
}

func (m *ResponseMapper) ToModel(r *entity.SurveyResponse) model.SurveyResponse {
	if r == nil {
		return nil
	}
	doc := make(model.SurveyResponse, len(r.Fields)+2)
	doc[model.FieldId] = r.Id
	doc[model.FieldTimestamp] = r.Timestamp.Format(time.RFC3339)
	for k, v := range r.Fields {
		doc[k] = v
	}
	return doc
}

func (m *ResponseMapper) ToEntity(doc model.SurveyResponse) *entity.SurveyResponse {
	if doc == nil {
		return nil
	}

	r := &entity.SurveyResponse{
		Fields: make(map[string]any, len(doc)),
	}
	for k, v := range doc {
		switch k {
		case "_id":
			// Mongo's own object id never leaves the storage layer.
		case model.FieldId:
			r.Id = toInt64(v)
		case model.FieldTimestamp:
			if s, ok := v.(string); ok {
				if ts, err := time.Parse(time.RFC3339, s); err == nil {
					r.Timestamp = ts
				}
			}
		default:
			r.Fields[k] = normalizeValue(v)
		}
	}
	return r
}

func (m *ResponseMapper) ToEntities(docs []model.SurveyResponse) []*entity.SurveyResponse {
	entities := make([]*entity.SurveyResponse, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}

// toInt64 absorbs the numeric types the BSON and JSON decoders hand back for
// the same stored value.
func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// normalizeValue flattens decoder-specific list types back to []string so the
// rest of the system sees one shape regardless of the backing store.
func normalizeValue(v any) any {
	switch list := v.(type) {
	case primitive.A:
		return toStringList(list)
	case []any:
		return toStringList(list)
	default:
		return v
	}
}

func toStringList(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

package implementation

import (
	"context"
	"errors"
	"time"

	"github.com/Song-beanpp/film-survey-app-final/internal/entity"
	"github.com/Song-beanpp/film-survey-app-final/internal/mapper"
	"github.com/Song-beanpp/film-survey-app-final/internal/model"
	"github.com/Song-beanpp/film-survey-app-final/internal/repository/contract"
	"github.com/Song-beanpp/film-survey-app-final/internal/survey"
	"github.com/Song-beanpp/film-survey-app-final/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotConnected is returned when an operation reaches the Mongo repository
// while the gateway link is down. The service layer selects the fallback
// before that happens; this guards against races around disconnects.
var ErrNotConnected = errors.New("document store not connected")

type MongoResponseRepositoryImpl struct {
	gateway *database.MongoGateway
	mapper  *mapper.ResponseMapper
}

func NewMongoResponseRepository(gateway *database.MongoGateway) contract.ResponseRepository {
	return &MongoResponseRepositoryImpl{
		gateway: gateway,
		mapper:  mapper.NewResponseMapper(),
	}
}

func (r *MongoResponseRepositoryImpl) collection() (*mongo.Collection, error) {
	coll := r.gateway.Collection()
	if coll == nil {
		return nil, ErrNotConnected
	}
	return coll, nil
}

func (r *MongoResponseRepositoryImpl) Save(ctx context.Context, resp *entity.SurveyResponse) error {
	coll, err := r.collection()
	if err != nil {
		return err
	}
	doc := r.mapper.ToModel(resp)
	_, err = coll.InsertOne(ctx, bson.M(doc))
	return err
}

func (r *MongoResponseRepositoryImpl) FindAll(ctx context.Context) ([]*entity.SurveyResponse, error) {
	coll, err := r.collection()
	if err != nil {
		return nil, err
	}

	cursor, err := coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: model.FieldTimestamp, Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	responses := make([]*entity.SurveyResponse, len(docs))
	for i, d := range docs {
		responses[i] = r.mapper.ToEntity(model.SurveyResponse(d))
	}
	return responses, nil
}

func (r *MongoResponseRepositoryImpl) Count(ctx context.Context) (int64, error) {
	coll, err := r.collection()
	if err != nil {
		return 0, err
	}
	return coll.CountDocuments(ctx, bson.M{})
}

func (r *MongoResponseRepositoryImpl) CountSince(ctx context.Context, since time.Time) (int64, error) {
	coll, err := r.collection()
	if err != nil {
		return 0, err
	}
	// Timestamps are stored as RFC 3339 strings, so $gte compares
	// lexicographically and the index still applies.
	return coll.CountDocuments(ctx, bson.M{
		model.FieldTimestamp: bson.M{"$gte": since.Format(time.RFC3339)},
	})
}

func (r *MongoResponseRepositoryImpl) WatchedCounts(ctx context.Context) (map[string]int64, error) {
	coll, err := r.collection()
	if err != nil {
		return nil, err
	}

	// One $group pass summing a $cond per film, same shape as the admin
	// dashboard query the collection was designed for.
	group := bson.D{{Key: "_id", Value: nil}}
	for _, f := range survey.Films {
		watchedKey := survey.FieldKey(f.Id, survey.FieldWatched)
		group = append(group, bson.E{Key: f.Id, Value: bson.D{
			{Key: "$sum", Value: bson.D{
				{Key: "$cond", Value: bson.A{
					bson.D{{Key: "$eq", Value: bson.A{"$" + watchedKey, survey.WatchedYes}}},
					1,
					0,
				}},
			}},
		}})
	}

	cursor, err := coll.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$group", Value: group}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []bson.M
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(survey.Films))
	for _, f := range survey.Films {
		counts[f.Id] = 0
	}
	if len(results) > 0 {
		for _, f := range survey.Films {
			counts[f.Id] = toCount(results[0][f.Id])
		}
	}
	return counts, nil
}

func toCount(v any) int64 {
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

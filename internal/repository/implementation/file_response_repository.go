package implementation

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/Song-beanpp/film-survey-app-final/internal/entity"
	"github.com/Song-beanpp/film-survey-app-final/internal/mapper"
	"github.com/Song-beanpp/film-survey-app-final/internal/model"
	"github.com/Song-beanpp/film-survey-app-final/internal/repository/contract"
	"github.com/Song-beanpp/film-survey-app-final/internal/survey"
)

// FileResponseRepositoryImpl is the degraded-mode store: a single JSON file
// holding {"responses": [...]}, rewritten whole on every save. Acceptable only
// because exactly one process owns the file and submission volume is low.
type FileResponseRepositoryImpl struct {
	path   string
	mu     sync.Mutex
	mapper *mapper.ResponseMapper
}

type fileLayout struct {
	Responses []model.SurveyResponse `json:"responses"`
}

func NewFileResponseRepository(path string) contract.ResponseRepository {
	return &FileResponseRepositoryImpl{
		path:   path,
		mapper: mapper.NewResponseMapper(),
	}
}

func (r *FileResponseRepositoryImpl) load() (*fileLayout, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &fileLayout{}, nil
		}
		return nil, err
	}
	var layout fileLayout
	if err := json.Unmarshal(data, &layout); err != nil {
		return nil, err
	}
	return &layout, nil
}

func (r *FileResponseRepositoryImpl) Save(ctx context.Context, resp *entity.SurveyResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	layout, err := r.load()
	if err != nil {
		return err
	}
	layout.Responses = append(layout.Responses, r.mapper.ToModel(resp))

	data, err := json.MarshalIndent(layout, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0o644)
}

func (r *FileResponseRepositoryImpl) FindAll(ctx context.Context) ([]*entity.SurveyResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	layout, err := r.load()
	if err != nil {
		return nil, err
	}

	responses := r.mapper.ToEntities(layout.Responses)
	sort.Slice(responses, func(i, j int) bool {
		return responses[i].Timestamp.After(responses[j].Timestamp)
	})
	return responses, nil
}

func (r *FileResponseRepositoryImpl) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	layout, err := r.load()
	if err != nil {
		return 0, err
	}
	return int64(len(layout.Responses)), nil
}

func (r *FileResponseRepositoryImpl) CountSince(ctx context.Context, since time.Time) (int64, error) {
	responses, err := r.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	for _, resp := range responses {
		if !resp.Timestamp.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *FileResponseRepositoryImpl) WatchedCounts(ctx context.Context) (map[string]int64, error) {
	responses, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(survey.Films))
	for _, f := range survey.Films {
		counts[f.Id] = 0
	}
	for _, resp := range responses {
		for _, f := range survey.Films {
			if resp.Fields[survey.FieldKey(f.Id, survey.FieldWatched)] == survey.WatchedYes {
				counts[f.Id]++
			}
		}
	}
	return counts, nil
}

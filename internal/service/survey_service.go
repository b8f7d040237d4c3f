package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Song-beanpp/film-survey-app-final/internal/config"
	"github.com/Song-beanpp/film-survey-app-final/internal/dto"
	"github.com/Song-beanpp/film-survey-app-final/internal/entity"
	"github.com/Song-beanpp/film-survey-app-final/internal/mapper"
	"github.com/Song-beanpp/film-survey-app-final/internal/model"
	"github.com/Song-beanpp/film-survey-app-final/internal/pkg/logger"
	"github.com/Song-beanpp/film-survey-app-final/internal/repository/contract"
)

// MsgSubmitSuccess is the bilingual confirmation returned with every stored
// submission.
const MsgSubmitSuccess = "问卷提交成功！感谢您的参与！\nThank you for your participation!"

var (
	// ErrStorageUnavailable means the document store is down and the
	// deployment forbids the file fallback. The payload was not persisted.
	ErrStorageUnavailable = errors.New("no storage backend available")

	// ErrNoResponses is the export-empty condition: nothing stored yet.
	// A not-found, not a fault.
	ErrNoResponses = errors.New("no responses to export")
)

// StoreGateway is the slice of the Mongo gateway the service needs: the
// connection-state flags and the lazy (re)connect entry points.
type StoreGateway interface {
	Connected() bool
	Connect(ctx context.Context) bool
	EnsureConnected(ctx context.Context, attempts int, delay time.Duration) bool
	Snapshot() (connected, connecting bool)
}

type ISurveyService interface {
	Submit(ctx context.Context, fields map[string]any) (*dto.SubmitResponse, error)
	ListAll(ctx context.Context) (*dto.ListResponsesResponse, error)
	Stats(ctx context.Context) (*dto.StatsResponse, error)
	ExportCsv(ctx context.Context) (*dto.CsvExport, error)
	Health(ctx context.Context) *dto.HealthResponse
}

type surveyService struct {
	gateway   StoreGateway
	mongoRepo contract.ResponseRepository
	fileRepo  contract.ResponseRepository // nil when the fallback is disabled
	cfg       config.StorageConfig
	logger    logger.ILogger
	mapper    *mapper.ResponseMapper

	idMu   sync.Mutex
	lastId int64

	now func() time.Time
}

func NewSurveyService(
	gateway StoreGateway,
	mongoRepo contract.ResponseRepository,
	fileRepo contract.ResponseRepository,
	cfg config.StorageConfig,
	log logger.ILogger,
) ISurveyService {
	return &surveyService{
		gateway:   gateway,
		mongoRepo: mongoRepo,
		fileRepo:  fileRepo,
		cfg:       cfg,
		logger:    log,
		mapper:    mapper.NewResponseMapper(),
		now:       time.Now,
	}
}

// repo picks the active store without leaking the choice to callers. Reads
// take whatever is available right now; writes first give the primary store a
// bounded chance to come up.
func (s *surveyService) repo(ctx context.Context, forWrite bool) (contract.ResponseRepository, error) {
	if !s.gateway.Connected() && forWrite {
		s.gateway.EnsureConnected(ctx, s.cfg.ConnectAttempts, s.cfg.RetryDelay)
	}
	if s.gateway.Connected() {
		return s.mongoRepo, nil
	}
	if s.fileRepo != nil {
		return s.fileRepo, nil
	}
	return nil, ErrStorageUnavailable
}

// nextId issues a time-based identifier, bumped past the previous one when the
// millisecond clock has not moved, so ids stay unique within the process.
func (s *surveyService) nextId() int64 {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	id := s.now().UnixMilli()
	if id <= s.lastId {
		id = s.lastId + 1
	}
	s.lastId = id
	return id
}

func (s *surveyService) Submit(ctx context.Context, fields map[string]any) (*dto.SubmitResponse, error) {
	repo, err := s.repo(ctx, true)
	if err != nil {
		return nil, err
	}

	record := &entity.SurveyResponse{
		Id:        s.nextId(),
		Timestamp: s.now(),
		Fields:    fields,
	}

	if err := repo.Save(ctx, record); err != nil {
		s.logger.Error("survey", "failed to save response", map[string]interface{}{
			"id":    record.Id,
			"error": err.Error(),
		})
		return nil, err
	}

	s.logger.Info("survey", "response saved", map[string]interface{}{"id": record.Id})
	return &dto.SubmitResponse{Success: true, Message: MsgSubmitSuccess}, nil
}

func (s *surveyService) ListAll(ctx context.Context) (*dto.ListResponsesResponse, error) {
	repo, err := s.repo(ctx, false)
	if err != nil {
		return nil, err
	}

	records, err := repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, len(records))
	for i, r := range records {
		out[i] = map[string]any(s.mapper.ToModel(r))
	}
	return &dto.ListResponsesResponse{Responses: out}, nil
}

func (s *surveyService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	repo, err := s.repo(ctx, false)
	if err != nil {
		return nil, err
	}

	total, err := repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	nowLocal := s.now()
	midnight := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), 0, 0, 0, 0, nowLocal.Location())
	today, err := repo.CountSince(ctx, midnight)
	if err != nil {
		return nil, err
	}

	filmStats, err := repo.WatchedCounts(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.StatsResponse{Total: total, Today: today, FilmStats: filmStats}, nil
}

func (s *surveyService) ExportCsv(ctx context.Context) (*dto.CsvExport, error) {
	repo, err := s.repo(ctx, false)
	if err != nil {
		return nil, err
	}

	records, err := repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoResponses
	}

	return &dto.CsvExport{
		Filename: "survey-responses-" + s.now().Format("2006-01-02") + ".csv",
		Content:  "\uFEFF" + renderCsv(records),
	}, nil
}

// renderCsv emits one header row from the first record's field names plus one
// row per record. Every value is quoted with embedded quotes doubled, matching
// the format the downstream spreadsheets were built around; encoding/csv only
// quotes on demand, which would change the bytes.
func renderCsv(records []*entity.SurveyResponse) string {
	header := csvHeader(records[0])

	var b strings.Builder
	b.WriteString(strings.Join(header, ","))
	for _, r := range records {
		b.WriteByte('\n')
		for i, key := range header {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(csvQuote(fieldString(r, key)))
		}
	}
	return b.String()
}

// csvHeader lists id and timestamp first, then the remaining field names
// sorted. Go maps have no insertion order, so the tail is sorted to keep the
// export deterministic.
func csvHeader(first *entity.SurveyResponse) []string {
	keys := make([]string, 0, len(first.Fields))
	for k := range first.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return append([]string{model.FieldId, model.FieldTimestamp}, keys...)
}

func fieldString(r *entity.SurveyResponse, key string) string {
	switch key {
	case model.FieldId:
		return strconv.FormatInt(r.Id, 10)
	case model.FieldTimestamp:
		return r.Timestamp.Format(time.RFC3339)
	}
	switch v := r.Fields[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ",")
	default:
		return ""
	}
}

func csvQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func (s *surveyService) Health(ctx context.Context) *dto.HealthResponse {
	connected, connecting := s.gateway.Snapshot()
	if !connected && !connecting {
		// One lazy retry, nothing more.
		connected = s.gateway.Connect(ctx)
	}

	status := "disconnected"
	if connected {
		status = "connected"
	}
	return &dto.HealthResponse{
		Status:    "ok",
		Mongodb:   status,
		Timestamp: s.now().Format(time.RFC3339),
	}
}

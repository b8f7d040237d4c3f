package service

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Song-beanpp/film-survey-app-final/internal/config"
	"github.com/Song-beanpp/film-survey-app-final/internal/repository/contract"
	"github.com/Song-beanpp/film-survey-app-final/internal/repository/implementation"
	"github.com/Song-beanpp/film-survey-app-final/internal/survey"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGateway pins the connection state, so tests exercise the store
// selection without a running database.
type stubGateway struct {
	connected bool
}

func (g *stubGateway) Connected() bool { return g.connected }

func (g *stubGateway) Connect(ctx context.Context) bool { return g.connected }

func (g *stubGateway) EnsureConnected(context.Context, int, time.Duration) bool {
	return g.connected
}

func (g *stubGateway) Snapshot() (bool, bool) { return g.connected, false }

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}

func (nopLogger) Sync() error { return nil }

func newTestFileRepo(t *testing.T) contract.ResponseRepository {
	t.Helper()
	return implementation.NewFileResponseRepository(filepath.Join(t.TempDir(), "responses.json"))
}

func newTestService(t *testing.T, fileRepo contract.ResponseRepository) *surveyService {
	t.Helper()
	svc := NewSurveyService(&stubGateway{}, nil, fileRepo, config.StorageConfig{
		ConnectAttempts: 1,
		RetryDelay:      time.Millisecond,
	}, nopLogger{})
	return svc.(*surveyService)
}

func TestSubmitThenListAll(t *testing.T) {
	svc := newTestService(t, newTestFileRepo(t))
	ctx := context.Background()

	ack, err := svc.Submit(ctx, map[string]any{
		"consent":          "yes",
		"nativeLanguage":   "chinese",
		"zootopia_watched": survey.WatchedYes,
	})
	require.NoError(t, err)
	assert.True(t, ack.Success)
	assert.Equal(t, MsgSubmitSuccess, ack.Message)

	list, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list.Responses, 1)
	assert.Equal(t, "yes", list.Responses[0]["consent"])
	assert.NotEmpty(t, list.Responses[0]["id"])
	assert.NotEmpty(t, list.Responses[0]["timestamp"])
}

func TestSubmitIdsUniqueWithinSameMillisecond(t *testing.T) {
	svc := newTestService(t, newTestFileRepo(t))
	ctx := context.Background()

	frozen := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return frozen }

	for i := 0; i < 3; i++ {
		_, err := svc.Submit(ctx, map[string]any{"consent": "yes"})
		require.NoError(t, err)
	}

	list, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list.Responses, 3)

	seen := map[int64]bool{}
	for _, r := range list.Responses {
		id := toCsvInt(t, r["id"])
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
}

func toCsvInt(t *testing.T, v any) int64 {
	t.Helper()
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	case string:
		id, err := strconv.ParseInt(n, 10, 64)
		require.NoError(t, err)
		return id
	default:
		t.Fatalf("unexpected id type %T", v)
		return 0
	}
}

func TestSubmitWithoutAnyStore(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.Submit(context.Background(), map[string]any{"consent": "yes"})
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestStatsZootopiaScenario(t *testing.T) {
	svc := newTestService(t, newTestFileRepo(t))
	ctx := context.Background()

	_, err := svc.Submit(ctx, map[string]any{
		"consent":             "yes",
		"nativeLanguage":      "chinese",
		"education":           "chinese",
		"filmsWatchedCount":   "5",
		"zootopia_watched":    survey.WatchedYes,
		"zootopia_easy":       "4",
		"zootopia_attractive": "5",
		"zootopia_accurate":   "4",
		"zootopia_like":       "5",
		"frozen2_watched":     "no",
		"ageGroup":            "18-25",
		"gender":              "female",
	})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Total)
	assert.Equal(t, int64(1), stats.Today)

	require.Len(t, stats.FilmStats, len(survey.Films))
	assert.Equal(t, int64(1), stats.FilmStats["zootopia"])
	assert.Equal(t, int64(0), stats.FilmStats["frozen2"])
	for _, f := range survey.Films {
		_, ok := stats.FilmStats[f.Id]
		assert.True(t, ok, "missing film %s", f.Id)
	}
}

func TestStatsIdempotentWithoutWrites(t *testing.T) {
	svc := newTestService(t, newTestFileRepo(t))
	ctx := context.Background()

	first, err := svc.Stats(ctx)
	require.NoError(t, err)
	second, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(0), first.Total)
}

func TestExportCsvEmpty(t *testing.T) {
	svc := newTestService(t, newTestFileRepo(t))

	_, err := svc.ExportCsv(context.Background())
	assert.ErrorIs(t, err, ErrNoResponses)
}

func TestExportCsvShape(t *testing.T) {
	svc := newTestService(t, newTestFileRepo(t))
	ctx := context.Background()

	_, err := svc.Submit(ctx, map[string]any{
		"consent":              "yes",
		"zootopia_explanation": `the title "sounds" right`,
	})
	require.NoError(t, err)

	out, err := svc.ExportCsv(ctx)
	require.NoError(t, err)
	assert.Equal(t, "survey-responses-"+time.Now().Format("2006-01-02")+".csv", out.Filename)

	require.True(t, strings.HasPrefix(out.Content, "\uFEFF"))
	lines := strings.Split(strings.TrimPrefix(out.Content, "\uFEFF"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,timestamp,consent,zootopia_explanation", lines[0])
	assert.Contains(t, lines[1], `"yes"`)
	assert.Contains(t, lines[1], `"the title ""sounds"" right"`)
}

func TestHealthDisconnected(t *testing.T) {
	svc := newTestService(t, newTestFileRepo(t))

	res := svc.Health(context.Background())
	assert.Equal(t, "ok", res.Status)
	assert.Equal(t, "disconnected", res.Mongodb)
	assert.NotEmpty(t, res.Timestamp)
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alimgiray/glscope/internal/models"
	"github.com/alimgiray/glscope/internal/repositories"
	"github.com/alimgiray/glscope/pkg/database"
)

type stubAnalyzer struct {
	report *models.Report
	err    error
	seen   []models.Config
}

func (s *stubAnalyzer) Analyze(ctx context.Context, cfg models.Config) (*models.Report, error) {
	s.seen = append(s.seen, cfg)
	return s.report, s.err
}

func newTestRunService(t *testing.T, analyzer Analyzer) *RunService {
	t.Helper()
	db, err := database.Open("file:" + uuid.New().String() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRunService(repositories.NewRunRepository(db), analyzer)
}

func validConfig() models.Config {
	return models.Config{
		APIURL:  "https://gitlab.example.com/api/v4",
		Token:   "secret",
		GroupID: "42",
	}
}

func TestRunServiceCreateRun(t *testing.T) {
	service := newTestRunService(t, &stubAnalyzer{})

	run, err := service.CreateRun(validConfig())
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusPending, run.Status)
	assert.Empty(t, run.Config.Token)

	stored, err := service.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, stored.ID)
	assert.Empty(t, stored.Config.Token)
	assert.Equal(t, models.DefaultMaxConcurrentRequests, stored.Config.MaxConcurrentRequests)
}

func TestRunServiceCreateRunValidation(t *testing.T) {
	service := newTestRunService(t, &stubAnalyzer{})

	cfg := validConfig()
	cfg.GroupID = ""

	_, err := service.CreateRun(cfg)
	assert.Equal(t, models.ErrGroupIDRequired, err)

	runs, err := service.ListRuns()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRunServiceExecuteCompletes(t *testing.T) {
	analyzer := &stubAnalyzer{report: &models.Report{CodeStats: []models.CodeStat{{Key: "Alice-total"}}, CommitStats: []models.CommitStat{}}}
	service := newTestRunService(t, analyzer)

	created, err := service.CreateRun(validConfig())
	require.NoError(t, err)

	run, err := service.ClaimNext("worker-1")
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, created.ID, run.ID)
	assert.Equal(t, models.RunStatusInProgress, run.Status)

	require.NoError(t, service.Execute(context.Background(), run))

	require.Len(t, analyzer.seen, 1)
	assert.Equal(t, "secret", analyzer.seen[0].Token)

	stored, err := service.GetRun(run.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsCompleted())
	require.NotNil(t, stored.Report)
	assert.Equal(t, "Alice-total", stored.Report.CodeStats[0].Key)

	next, err := service.ClaimNext("worker-1")
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestRunServiceExecuteFails(t *testing.T) {
	boom := errors.New("list projects: boom")
	service := newTestRunService(t, &stubAnalyzer{err: boom})

	_, err := service.CreateRun(validConfig())
	require.NoError(t, err)

	run, err := service.ClaimNext("worker-1")
	require.NoError(t, err)

	err = service.Execute(context.Background(), run)
	assert.Equal(t, boom, err)

	stored, err := service.GetRun(run.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsFailed())
	require.NotNil(t, stored.ErrorMessage)
	assert.Equal(t, "list projects: boom", *stored.ErrorMessage)
	assert.Nil(t, stored.Report)
}

func TestRunServiceRecoverInterrupted(t *testing.T) {
	db, err := database.Open("file:" + uuid.New().String() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	analyzer := &stubAnalyzer{report: &models.Report{}}
	before := NewRunService(repositories.NewRunRepository(db), analyzer)

	queued, err := before.CreateRun(validConfig())
	require.NoError(t, err)
	_, err = before.CreateRun(validConfig())
	require.NoError(t, err)
	_, err = before.ClaimNext("worker-1")
	require.NoError(t, err)

	// A new service shares the database but none of the tokens
	after := NewRunService(repositories.NewRunRepository(db), analyzer)

	n, err := after.RecoverInterrupted()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	stored, err := after.GetRun(queued.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsFailed())
	require.NotNil(t, stored.ErrorMessage)
	assert.Equal(t, InterruptedRunMessage, *stored.ErrorMessage)

	next, err := after.ClaimNext("worker-1")
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Empty(t, analyzer.seen)

	n, err = after.RecoverInterrupted()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunServiceGetRunNotFound(t *testing.T) {
	service := newTestRunService(t, &stubAnalyzer{})

	_, err := service.GetRun("missing")
	assert.ErrorIs(t, err, repositories.ErrRunNotFound)
}

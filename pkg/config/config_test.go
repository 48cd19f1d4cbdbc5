package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alimgiray/glscope/internal/models"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "FETCH_TIMEOUT_MS", "FETCH_RETRIES", "FETCH_RETRY_DELAY_MS", "ANALYSIS_WORKERS", "SERVER_API_KEY"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 20, cfg.Fetch.Retries)
	assert.Equal(t, 300*time.Millisecond, cfg.Fetch.RetryDelay)
	assert.Equal(t, 1, cfg.Workers.Count)
	assert.Equal(t, time.Second, cfg.Workers.PollInterval)
	assert.Empty(t, cfg.Server.APIKey)
	assert.Empty(t, cfg.Database.Path)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FETCH_TIMEOUT_MS", "750")
	t.Setenv("FETCH_RETRIES", "3")
	t.Setenv("ANALYSIS_WORKERS", "not-a-number")
	t.Setenv("SERVER_API_KEY", "s3cret")

	cfg := FromEnv()
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 750*time.Millisecond, cfg.Fetch.Timeout)
	assert.Equal(t, 3, cfg.Fetch.Retries)
	assert.Equal(t, 1, cfg.Workers.Count)
	assert.Equal(t, "s3cret", cfg.Server.APIKey)
}

func TestLoadAnalysisFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glscope.yaml")
	content := `
api_url: https://gitlab.example.com/api/v4
group_id: "42"
start_date: "2024-01-01T00:00:00Z"
end_date: "2024-01-31T23:59:59Z"
excluded_projects:
  - legacy
valid_extensions:
  - .go
  - .rs
max_concurrent_requests: 8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("GLSCOPE_TOKEN", "from-env")

	cfg, err := LoadAnalysis(path)
	require.NoError(t, err)

	assert.Equal(t, models.ProviderGitLab, cfg.Provider)
	assert.Equal(t, "https://gitlab.example.com/api/v4", cfg.APIURL)
	assert.Equal(t, "from-env", cfg.Token)
	assert.Equal(t, "42", cfg.GroupID)
	assert.Equal(t, []string{"legacy"}, cfg.ExcludedProjects)
	assert.Equal(t, []string{".go", ".rs"}, cfg.ValidExtensions)
	assert.Equal(t, 8, cfg.MaxConcurrentRequests)
	assert.Equal(t, models.DefaultProjectsNum, cfg.ProjectsNum)
	assert.Equal(t, models.DefaultIgnoredPaths, cfg.IgnoredPaths)
}

func TestLoadAnalysisEnvOnly(t *testing.T) {
	t.Setenv("GLSCOPE_API_URL", "https://gitlab.example.com/api/v4")
	t.Setenv("GLSCOPE_GROUP_ID", "7")
	t.Setenv("GLSCOPE_MAX_CONCURRENT_REQUESTS", "2")

	cfg, err := LoadAnalysis("")
	require.NoError(t, err)

	assert.Equal(t, "https://gitlab.example.com/api/v4", cfg.APIURL)
	assert.Equal(t, "7", cfg.GroupID)
	assert.Equal(t, 2, cfg.MaxConcurrentRequests)
	assert.Equal(t, models.DefaultValidExtensions, cfg.ValidExtensions)
}

func TestLoadAnalysisMissingFile(t *testing.T) {
	_, err := LoadAnalysis(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

package provider

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alimgiray/glscope/internal/models"
)

func gitlabConfig() models.Config {
	return models.Config{
		Provider:    models.ProviderGitLab,
		APIURL:      "https://gitlab.example.com/api/v4",
		Token:       "secret",
		GroupID:     "42",
		StartDate:   "2024-01-01T00:00:00+01:00",
		EndDate:     "2024-01-31T23:59:59+01:00",
		ProjectsNum: 50,
	}
}

func TestGitLabURLs(t *testing.T) {
	g := NewGitLab(gitlabConfig(), nil)
	project := models.Project{ID: 7, Name: "alpha"}

	projectsURL, err := url.Parse(g.ProjectsURL(2))
	require.NoError(t, err)
	assert.Equal(t, "/api/v4/groups/42/projects", projectsURL.Path)
	assert.Equal(t, "50", projectsURL.Query().Get("per_page"))
	assert.Equal(t, "2", projectsURL.Query().Get("page"))
	assert.Equal(t, "true", projectsURL.Query().Get("include_subgroups"))
	assert.Equal(t, "last_activity_at", projectsURL.Query().Get("order_by"))
	assert.Equal(t, "desc", projectsURL.Query().Get("sort"))

	commitsURL, err := url.Parse(g.CommitsURL(project, 3))
	require.NoError(t, err)
	assert.Equal(t, "/api/v4/projects/7/repository/commits", commitsURL.Path)
	assert.Equal(t, "2024-01-01T00:00:00+01:00", commitsURL.Query().Get("since"))
	assert.Equal(t, "2024-01-31T23:59:59+01:00", commitsURL.Query().Get("until"))
	assert.Equal(t, "100", commitsURL.Query().Get("per_page"))
	assert.Equal(t, "3", commitsURL.Query().Get("page"))
	assert.Equal(t, "true", commitsURL.Query().Get("all"))
	assert.Contains(t, commitsURL.RawQuery, "since=2024-01-01T00%3A00%3A00%2B01%3A00")

	assert.Equal(t, "https://gitlab.example.com/api/v4/projects/7/repository/commits/abc123/diff", g.DiffURL(project, "abc123"))
	assert.Equal(t, "https://gitlab.example.com/api/v4/projects/7/repository/commits/abc123/refs", g.RefsURL(project, "abc123"))
}

func TestGitLabAuthorize(t *testing.T) {
	g := NewGitLab(gitlabConfig(), nil)
	req, err := http.NewRequest(http.MethodGet, g.ProjectsURL(1), nil)
	require.NoError(t, err)

	g.Authorize(req)
	assert.Equal(t, "secret", req.Header.Get("PRIVATE-TOKEN"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.NotNil(t, g.Client())
	assert.Equal(t, models.ProviderGitLab, g.Name())
}

func TestGitLabDecode(t *testing.T) {
	g := NewGitLab(gitlabConfig(), nil)

	projects, err := g.DecodeProjects([]byte(`[{"id":7,"name":"alpha","path_with_namespace":"group/alpha"}]`))
	require.NoError(t, err)
	assert.Equal(t, []models.Project{{ID: 7, Name: "alpha", Path: "group/alpha"}}, projects)

	commits, err := g.DecodeCommits([]byte(`[{"id":"abc","author_name":"Alice","author_email":"a@example.com","message":"m","committed_date":"2024-01-02T10:00:00.000+01:00"}]`))
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "Alice", commits[0].AuthorName)
	assert.Equal(t, "2024-01-02T10:00:00.000+01:00", commits[0].CommittedDate)

	diffs, err := g.DecodeDiffs([]byte(`[{"old_path":"a.go","new_path":"b.go","diff":"+x"},{"old_path":"bin","new_path":"bin","diff":null}]`))
	require.NoError(t, err)
	require.Len(t, diffs, 2)
	assert.Equal(t, "b.go", diffs[0].Path())
	assert.Nil(t, diffs[1].Diff)

	refs, err := g.DecodeRefs([]byte(`[{"type":"branch","name":"main"},{"type":"tag","name":"v1"}]`))
	require.NoError(t, err)
	assert.Equal(t, []models.RefEntry{{Kind: models.RefKindBranch, Name: "main"}, {Kind: models.RefKindTag, Name: "v1"}}, refs)

	_, err = g.DecodeRefs([]byte(`{"message":"404"}`))
	assert.Error(t, err)
}

func TestGitLabRedact(t *testing.T) {
	g := NewGitLab(gitlabConfig(), nil)

	testCases := []struct {
		url      string
		expected string
	}{
		{"https://gitlab.example.com/api/v4/projects/7/repository/commits/abc/diff", "v4/projects/7/repository/commits/abc/diff"},
		{"https://gitlab.example.com/api/v4/groups/42/projects?page=1", "v4/groups/42/projects?page=1"},
		{"http://127.0.0.1:8080/custom/projects?page=1", "/custom/projects?page=1"},
	}

	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			redacted := g.Redact(tc.url)
			assert.Equal(t, tc.expected, redacted)
			assert.NotContains(t, redacted, "gitlab.example.com")
		})
	}
}

func TestNew(t *testing.T) {
	cfg := gitlabConfig()

	p, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, models.ProviderGitLab, p.Name())

	cfg.Provider = models.ProviderGitHub
	p, err = New(cfg)
	require.NoError(t, err)
	assert.Equal(t, models.ProviderGitHub, p.Name())

	cfg.Provider = "bitbucket"
	_, err = New(cfg)
	assert.Error(t, err)
}

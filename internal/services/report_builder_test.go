package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alimgiray/glscope/internal/models"
)

func TestKiB(t *testing.T) {
	testCases := []struct {
		bytes    int64
		expected int64
	}{
		{0, 0},
		{511, 0},
		{512, 1},
		{1024, 1},
		{1536, 2},
		{2047, 2},
		{10 * 1024, 10},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, KiB(tc.bytes), "bytes=%d", tc.bytes)
	}
}

func sampleAuthors() map[string]*models.AuthorStats {
	alice := models.NewAuthorStats("Alice", "alice@example.com")
	alice.Record("alpha", models.Stats{Additions: 10, Lines: 10, Files: 1, Size: 1024}, models.CommitDetail{Project: "alpha", Branch: "main", Tag: "v1"})
	alice.Record("beta", models.Stats{Additions: 5, Deletions: 5, Lines: 10, Files: 2, Size: 4096}, models.CommitDetail{Project: "beta", Branch: "main", Tag: UnknownRef})

	bob := models.NewAuthorStats("Bob", "bob@example.com")
	bob.Record("alpha", models.Stats{Additions: 100, Lines: 100, Files: 5, Size: 20480}, models.CommitDetail{Project: "alpha", Branch: "develop", Tag: UnknownRef})

	carol := models.NewAuthorStats("Carol", "carol@example.com")
	carol.Record("gamma", models.Stats{Additions: 1, Lines: 1, Files: 1, Size: 5120}, models.CommitDetail{Project: "gamma", Branch: "main", Tag: UnknownRef})

	return map[string]*models.AuthorStats{"Alice": alice, "Bob": bob, "Carol": carol}
}

func TestBuildReport(t *testing.T) {
	report := BuildReport(sampleAuthors(), nil)

	require.Len(t, report.CodeStats, 3)
	assert.Equal(t, "Bob-total", report.CodeStats[0].Key)
	assert.Equal(t, int64(20), report.CodeStats[0].Size)
	assert.Equal(t, "Alice-total", report.CodeStats[1].Key)
	assert.Equal(t, int64(5), report.CodeStats[1].Size)
	assert.Equal(t, "Carol-total", report.CodeStats[2].Key)
	assert.Equal(t, int64(5), report.CodeStats[2].Size)

	alice := report.CodeStats[1]
	require.NotNil(t, alice.IsTotal)
	assert.True(t, *alice.IsTotal)
	assert.Equal(t, TotalProjectLabel, alice.Project)
	assert.Equal(t, 2, alice.Commits)
	assert.Equal(t, 15, alice.Additions)
	assert.Equal(t, 20, alice.Lines)

	require.Len(t, alice.Children, 2)
	assert.Equal(t, "Alice-beta", alice.Children[0].Key)
	assert.Equal(t, int64(4), alice.Children[0].Size)
	assert.Equal(t, "Alice-alpha", alice.Children[1].Key)
	assert.Nil(t, alice.Children[0].IsTotal)

	var childSum int
	for _, child := range alice.Children {
		childSum += child.Commits
	}
	assert.Equal(t, alice.Commits, childSum)

	assert.Len(t, report.CommitStats, 4)
	assert.Nil(t, report.FailureStats)
}

func TestBuildReportSizeOrdering(t *testing.T) {
	report := BuildReport(sampleAuthors(), nil)

	for i := 1; i < len(report.CodeStats); i++ {
		assert.GreaterOrEqual(t, report.CodeStats[i-1].Size, report.CodeStats[i].Size)
	}
}

func TestBuildReportIsIdempotent(t *testing.T) {
	authors := sampleAuthors()

	first, err := json.Marshal(BuildReport(authors, nil))
	require.NoError(t, err)
	second, err := json.Marshal(BuildReport(authors, nil))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestBuildReportFailures(t *testing.T) {
	project := "alpha"
	failures := []models.FailureRecord{{URL: "v4/projects/1", ProjectName: &project, Operation: OpListCommits, Error: "boom"}}

	report := BuildReport(map[string]*models.AuthorStats{}, failures)
	assert.Empty(t, report.CodeStats)
	assert.NotNil(t, report.CommitStats)
	require.Len(t, report.FailureStats, 1)
	assert.Equal(t, "boom", report.FailureStats[0].Error)

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"codeStats": [],
		"commitStats": [],
		"failureStats": [{"url":"v4/projects/1","project_name":"alpha","operation":"fetch commits","error":"boom"}]
	}`, string(data))
}

func TestBuildReportOmitsEmptyFailures(t *testing.T) {
	data, err := json.Marshal(BuildReport(map[string]*models.AuthorStats{}, nil))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "failureStats")
}

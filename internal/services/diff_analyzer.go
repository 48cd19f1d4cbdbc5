package services

import (
	"context"
	"strings"

	"github.com/alimgiray/glscope/internal/models"
	"github.com/alimgiray/glscope/internal/provider"
)

// FileFilter decides which changed files count towards the statistics
type FileFilter struct {
	extensions map[string]struct{}
	ignored    []string
}

// NewFileFilter builds a filter from an extension allow-list (".go" form)
// and a list of ignored path substrings
func NewFileFilter(extensions, ignored []string) FileFilter {
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		allowed[ext] = struct{}{}
	}
	var substrings []string
	for _, s := range ignored {
		if s != "" {
			substrings = append(substrings, s)
		}
	}
	return FileFilter{extensions: allowed, ignored: substrings}
}

// Allows reports whether path passes both the ignored-path and the
// extension filters
func (f FileFilter) Allows(path string) bool {
	for _, s := range f.ignored {
		if strings.Contains(path, s) {
			return false
		}
	}
	_, ok := f.extensions[extension(path)]
	return ok
}

// extension returns the text from the last '.' on, or "" when the path has
// no dot. Matching is case-sensitive: "App.TS" does not match ".ts".
func extension(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return ""
	}
	return path[idx:]
}

// CountDiff reduces diff entries to line, file and size statistics
func CountDiff(diffs []models.DiffEntry, filter FileFilter) models.Stats {
	var stats models.Stats
	for _, d := range diffs {
		if !filter.Allows(d.Path()) {
			continue
		}

		stats.Files++
		if d.Diff == nil {
			continue
		}

		additions, deletions := countLines(*d.Diff)
		stats.Additions += additions
		stats.Deletions += deletions
		stats.Size += int64(len(*d.Diff))
	}
	stats.Lines = stats.Additions + stats.Deletions
	return stats
}

func countLines(body string) (additions, deletions int) {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSuffix(line, "\r")
		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			additions++
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			deletions++
		}
	}
	return additions, deletions
}

// DiffAnalyzer fetches a commit's diff and counts it
type DiffAnalyzer struct {
	fetcher  *Fetcher
	provider provider.Provider
	filter   FileFilter
}

// NewDiffAnalyzer creates a diff analyzer
func NewDiffAnalyzer(fetcher *Fetcher, p provider.Provider, filter FileFilter) *DiffAnalyzer {
	return &DiffAnalyzer{fetcher: fetcher, provider: p, filter: filter}
}

// Analyze returns the statistics of one commit. Undecodable payloads are
// recorded as failures like exhausted fetches.
func (a *DiffAnalyzer) Analyze(ctx context.Context, project models.Project, commit models.Commit) (models.Stats, error) {
	op := Operation{Name: OpCommitDiff, ProjectName: project.Name, AuthorEmail: commit.AuthorEmail}
	url := a.provider.DiffURL(project, commit.ID)

	body, err := a.fetcher.Fetch(ctx, url, op)
	if err != nil {
		return models.Stats{}, err
	}

	diffs, err := a.provider.DecodeDiffs(body)
	if err != nil {
		a.fetcher.RecordFailure(op, url, err)
		return models.Stats{}, err
	}

	return CountDiff(diffs, a.filter), nil
}

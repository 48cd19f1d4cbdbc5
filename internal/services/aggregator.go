package services

import (
	"sync"

	"github.com/alimgiray/glscope/internal/models"
)

// Aggregator rolls commit statistics up per author and per project. It is
// safe for concurrent use.
type Aggregator struct {
	mu      sync.Mutex
	authors map[string]*models.AuthorStats
}

// NewAggregator creates an empty aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{authors: make(map[string]*models.AuthorStats)}
}

// Record adds one commit. Authors are keyed by display name; the first
// email seen for a name is kept.
func (a *Aggregator) Record(commit models.Commit, project models.Project, stats models.Stats, branch, tag string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	author, ok := a.authors[commit.AuthorName]
	if !ok {
		author = models.NewAuthorStats(commit.AuthorName, commit.AuthorEmail)
		a.authors[commit.AuthorName] = author
	}

	author.Record(project.Name, stats, models.CommitDetail{
		Project:       project.Name,
		Branch:        branch,
		Tag:           tag,
		Message:       commit.Message,
		CommittedDate: commit.CommittedDate,
	})
}

// Snapshot returns a deep copy of the current author records
func (a *Aggregator) Snapshot() map[string]*models.AuthorStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[string]*models.AuthorStats, len(a.authors))
	for name, author := range a.authors {
		cp := *author
		cp.Projects = make(map[string]*models.ProjectStats, len(author.Projects))
		for project, ps := range author.Projects {
			psCopy := *ps
			cp.Projects[project] = &psCopy
		}
		cp.CommitDetails = append([]models.CommitDetail(nil), author.CommitDetails...)
		out[name] = &cp
	}
	return out
}

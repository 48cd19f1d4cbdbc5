package models

// Stats is the line/file/size accounting for one or more commits
type Stats struct {
	Additions int   `json:"additions"`
	Deletions int   `json:"deletions"`
	Lines     int   `json:"lines"`
	Files     int   `json:"files"`
	Size      int64 `json:"size"`
}

// Add accumulates other into s
func (s *Stats) Add(other Stats) {
	s.Additions += other.Additions
	s.Deletions += other.Deletions
	s.Lines += other.Lines
	s.Files += other.Files
	s.Size += other.Size
}

// ProjectStats holds an author's rollup for one project
type ProjectStats struct {
	Stats
	Commits int `json:"commits"`
}

// CommitDetail is one processed commit as seen by an author record
type CommitDetail struct {
	Project       string `json:"project"`
	Branch        string `json:"branch"`
	Tag           string `json:"tag"`
	Message       string `json:"message"`
	CommittedDate string `json:"committed_date"`
}

// AuthorStats is the aggregate for a single author across all projects.
// Total mirrors the sum of all entries in Projects.
type AuthorStats struct {
	AuthorName    string                   `json:"author_name"`
	AuthorEmail   string                   `json:"author_email"`
	Projects      map[string]*ProjectStats `json:"projects"`
	TotalCommits  int                      `json:"total_commits"`
	Total         Stats                    `json:"total"`
	CommitDetails []CommitDetail           `json:"commit_details"`
}

// NewAuthorStats creates an empty record for an author
func NewAuthorStats(name, email string) *AuthorStats {
	return &AuthorStats{
		AuthorName:  name,
		AuthorEmail: email,
		Projects:    make(map[string]*ProjectStats),
	}
}

// Record adds one commit's stats to the project rollup and the totals
func (a *AuthorStats) Record(project string, stats Stats, detail CommitDetail) {
	ps, ok := a.Projects[project]
	if !ok {
		ps = &ProjectStats{}
		a.Projects[project] = ps
	}

	ps.Commits++
	ps.Add(stats)

	a.TotalCommits++
	a.Total.Add(stats)

	a.CommitDetails = append(a.CommitDetails, detail)
}

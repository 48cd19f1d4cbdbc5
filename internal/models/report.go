package models

// Report is the result of an analysis run
type Report struct {
	CodeStats    []CodeStat      `json:"codeStats"`
	CommitStats  []CommitStat    `json:"commitStats"`
	FailureStats []FailureRecord `json:"failureStats,omitempty"`
}

// CodeStat is one row of the code statistics table. Total rows carry the
// per-project rows of the same author as children. Size is in KiB.
type CodeStat struct {
	Key       string     `json:"key"`
	Author    string     `json:"author"`
	Email     string     `json:"email"`
	Project   string     `json:"project"`
	Commits   int        `json:"commits"`
	Additions int        `json:"additions"`
	Deletions int        `json:"deletions"`
	Lines     int        `json:"lines"`
	Files     int        `json:"files"`
	Size      int64      `json:"size"`
	IsTotal   *bool      `json:"isTotal,omitempty"`
	Children  []CodeStat `json:"children,omitempty"`
}

// CommitStat is one processed commit
type CommitStat struct {
	Author        string `json:"author"`
	Email         string `json:"email"`
	Project       string `json:"project"`
	Branch        string `json:"branch"`
	Tag           string `json:"tag"`
	CommittedDate string `json:"committedDate"`
	Message       string `json:"message"`
}

// Totals sums the total rows of the report
func (r *Report) Totals() (commits int, size int64) {
	for _, cs := range r.CodeStats {
		commits += cs.Commits
		size += cs.Size
	}
	return commits, size
}

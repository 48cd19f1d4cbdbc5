package models

// Project is a repository discovered in the analyzed group
type Project struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	// Path is the namespaced path (owner/repo) used by providers that address
	// repositories by name instead of numeric id.
	Path string `json:"path,omitempty"`
}

// Commit is a single commit returned by the commit listing endpoint
type Commit struct {
	ID            string `json:"id"`
	AuthorName    string `json:"author_name"`
	AuthorEmail   string `json:"author_email"`
	Message       string `json:"message"`
	CommittedDate string `json:"committed_date"`
}

// DiffEntry is one file change of a commit. Diff is nil for binary or
// oversized files.
type DiffEntry struct {
	OldPath *string `json:"old_path"`
	NewPath *string `json:"new_path"`
	Diff    *string `json:"diff"`
}

// Path returns the effective path of the entry, preferring the new path.
func (d DiffEntry) Path() string {
	if d.NewPath != nil {
		return *d.NewPath
	}
	if d.OldPath != nil {
		return *d.OldPath
	}
	return ""
}

// RefKind is the kind of a named ref a commit belongs to
type RefKind string

const (
	RefKindBranch RefKind = "branch"
	RefKindTag    RefKind = "tag"
)

// RefEntry is a branch or tag that contains a commit
type RefEntry struct {
	Kind RefKind `json:"type"`
	Name string  `json:"name"`
}

// ValidationError describes an invalid field value
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

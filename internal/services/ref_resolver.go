package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/alimgiray/glscope/internal/models"
	"github.com/alimgiray/glscope/internal/provider"
)

// UnknownRef is reported when a commit has no branch or no tag
const UnknownRef = "unknown"

const mergeBranchPrefix = "Merge branch"

var mergeBranchPattern = regexp.MustCompile(`Merge branch '([^']+)'`)

// SelectRefs picks the first branch and the first tag in API order
func SelectRefs(refs []models.RefEntry) (branch, tag string) {
	branch, tag = UnknownRef, UnknownRef
	foundBranch, foundTag := false, false
	for _, r := range refs {
		switch {
		case r.Kind == models.RefKindBranch && !foundBranch:
			branch, foundBranch = r.Name, true
		case r.Kind == models.RefKindTag && !foundTag:
			tag, foundTag = r.Name, true
		}
	}
	return branch, tag
}

// MergedBranch extracts the source branch of a "Merge branch '...'" message
func MergedBranch(message string) (string, bool) {
	if !strings.HasPrefix(message, mergeBranchPrefix) {
		return "", false
	}
	m := mergeBranchPattern.FindStringSubmatch(message)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// RefResolver finds the branch and tag a commit belongs to
type RefResolver struct {
	fetcher  *Fetcher
	provider provider.Provider
}

// NewRefResolver creates a ref resolver
func NewRefResolver(fetcher *Fetcher, p provider.Provider) *RefResolver {
	return &RefResolver{fetcher: fetcher, provider: p}
}

// Resolve returns the branch and tag of a commit. For merge commits the
// branch named in the message wins over the API answer.
func (r *RefResolver) Resolve(ctx context.Context, project models.Project, commit models.Commit) (branch, tag string, err error) {
	op := Operation{Name: OpCommitRefs, ProjectName: project.Name, AuthorEmail: commit.AuthorEmail}
	url := r.provider.RefsURL(project, commit.ID)

	body, err := r.fetcher.Fetch(ctx, url, op)
	if err != nil {
		return "", "", err
	}

	refs, err := r.provider.DecodeRefs(body)
	if err != nil {
		r.fetcher.RecordFailure(op, url, err)
		return "", "", err
	}

	branch, tag = SelectRefs(refs)
	if merged, ok := MergedBranch(commit.Message); ok {
		branch = merged
	}
	return branch, tag, nil
}

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alimgiray/glscope/internal/models"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)


// GitHub implements Provider for the GitHub REST API. Commits are listed per
// repository of an organization; ref membership is approximated by the
// branches whose head is the commit, and tags are not resolved.
type GitHub struct {
	cfg    models.Config
	client *http.Client
}

// NewGitHub creates a GitHub provider whose client authenticates with the
// configured token
func NewGitHub(cfg models.Config) *GitHub {
	if cfg.APIURL == "" {
		cfg.APIURL = models.DefaultGitHubAPIURL
	}
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: cfg.Token},
	)
	return &GitHub{
		cfg:    cfg,
		client: oauth2.NewClient(context.Background(), ts),
	}
}

func (g *GitHub) Name() string { return models.ProviderGitHub }

func (g *GitHub) Client() *http.Client { return g.client }

func (g *GitHub) Authorize(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")
}

func (g *GitHub) ProjectsURL(page int) string {
	params := url.Values{}
	params.Set("per_page", strconv.Itoa(g.cfg.ProjectsNum))
	params.Set("page", strconv.Itoa(page))
	params.Set("sort", "pushed")
	return joinURL(g.cfg.APIURL, "orgs", url.PathEscape(g.cfg.GroupID), "repos") + "?" + params.Encode()
}

func (g *GitHub) CommitsURL(project models.Project, page int) string {
	params := url.Values{}
	if g.cfg.StartDate != "" {
		params.Set("since", g.cfg.StartDate)
	}
	if g.cfg.EndDate != "" {
		params.Set("until", g.cfg.EndDate)
	}
	params.Set("per_page", strconv.Itoa(CommitsPerPage))
	params.Set("page", strconv.Itoa(page))
	return g.commitsBase(project) + "?" + params.Encode()
}

func (g *GitHub) DiffURL(project models.Project, sha string) string {
	return joinURL(g.commitsBase(project), url.PathEscape(sha))
}

func (g *GitHub) RefsURL(project models.Project, sha string) string {
	return joinURL(g.commitsBase(project), url.PathEscape(sha), "branches-where-head")
}

func (g *GitHub) commitsBase(project models.Project) string {
	segments := strings.Split(project.Path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return joinURL(g.cfg.APIURL, "repos", strings.Join(segments, "/"), "commits")
}

func (g *GitHub) DecodeProjects(body []byte) ([]models.Project, error) {
	var repos []*github.Repository
	if err := json.Unmarshal(body, &repos); err != nil {
		return nil, fmt.Errorf("decode github repositories: %w", err)
	}
	projects := make([]models.Project, 0, len(repos))
	for _, r := range repos {
		projects = append(projects, models.Project{
			ID:   r.GetID(),
			Name: r.GetName(),
			Path: r.GetFullName(),
		})
	}
	return projects, nil
}

func (g *GitHub) DecodeCommits(body []byte) ([]models.Commit, error) {
	var raw []*github.RepositoryCommit
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode github commits: %w", err)
	}
	commits := make([]models.Commit, 0, len(raw))
	for _, rc := range raw {
		c := rc.GetCommit()
		committed := ""
		if date := c.GetCommitter().GetDate(); !date.IsZero() {
			committed = date.Format(time.RFC3339)
		}
		commits = append(commits, models.Commit{
			ID:            rc.GetSHA(),
			AuthorName:    c.GetAuthor().GetName(),
			AuthorEmail:   c.GetAuthor().GetEmail(),
			Message:       c.GetMessage(),
			CommittedDate: committed,
		})
	}
	return commits, nil
}

func (g *GitHub) DecodeDiffs(body []byte) ([]models.DiffEntry, error) {
	var rc github.RepositoryCommit
	if err := json.Unmarshal(body, &rc); err != nil {
		return nil, fmt.Errorf("decode github commit: %w", err)
	}
	diffs := make([]models.DiffEntry, 0, len(rc.Files))
	for _, f := range rc.Files {
		entry := models.DiffEntry{
			NewPath: f.Filename,
			Diff:    f.Patch,
		}
		if f.PreviousFilename != nil {
			entry.OldPath = f.PreviousFilename
		} else {
			entry.OldPath = f.Filename
		}
		diffs = append(diffs, entry)
	}
	return diffs, nil
}

func (g *GitHub) DecodeRefs(body []byte) ([]models.RefEntry, error) {
	var branches []*github.BranchCommit
	if err := json.Unmarshal(body, &branches); err != nil {
		return nil, fmt.Errorf("decode github branches: %w", err)
	}
	refs := make([]models.RefEntry, 0, len(branches))
	for _, b := range branches {
		refs = append(refs, models.RefEntry{Kind: models.RefKindBranch, Name: b.GetName()})
	}
	return refs, nil
}

// Redact keeps only the path and query of the request URL
func (g *GitHub) Redact(rawURL string) string {
	return pathAndQuery(rawURL)
}

package provider

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/alimgiray/glscope/internal/models"
)

const gitlabVersionMarker = "v4/"

// GitLab implements Provider for the GitLab v4 REST API.
type GitLab struct {
	cfg    models.Config
	client *http.Client
}

// NewGitLab creates a GitLab provider. A nil client means a plain
// http.Client; per-attempt timeouts are enforced by the caller.
func NewGitLab(cfg models.Config, client *http.Client) *GitLab {
	if client == nil {
		client = &http.Client{}
	}
	return &GitLab{cfg: cfg, client: client}
}

func (g *GitLab) Name() string { return models.ProviderGitLab }

func (g *GitLab) Client() *http.Client { return g.client }

func (g *GitLab) Authorize(req *http.Request) {
	req.Header.Set("PRIVATE-TOKEN", g.cfg.Token)
	req.Header.Set("Content-Type", "application/json")
}

func (g *GitLab) ProjectsURL(page int) string {
	params := url.Values{}
	params.Set("per_page", strconv.Itoa(g.cfg.ProjectsNum))
	params.Set("page", strconv.Itoa(page))
	params.Set("include_subgroups", "true")
	params.Set("order_by", "last_activity_at")
	params.Set("sort", "desc")
	return joinURL(g.cfg.APIURL, "groups", url.PathEscape(g.cfg.GroupID), "projects") + "?" + params.Encode()
}

func (g *GitLab) CommitsURL(project models.Project, page int) string {
	params := url.Values{}
	params.Set("since", g.cfg.StartDate)
	params.Set("until", g.cfg.EndDate)
	params.Set("per_page", strconv.Itoa(CommitsPerPage))
	params.Set("page", strconv.Itoa(page))
	params.Set("all", "true")
	return g.commitsBase(project) + "?" + params.Encode()
}

func (g *GitLab) DiffURL(project models.Project, sha string) string {
	return joinURL(g.commitsBase(project), url.PathEscape(sha), "diff")
}

func (g *GitLab) RefsURL(project models.Project, sha string) string {
	return joinURL(g.commitsBase(project), url.PathEscape(sha), "refs")
}

func (g *GitLab) commitsBase(project models.Project) string {
	return joinURL(g.cfg.APIURL, "projects", strconv.FormatInt(project.ID, 10), "repository", "commits")
}

type gitlabProject struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	PathWithNamespace string `json:"path_with_namespace"`
}

func (g *GitLab) DecodeProjects(body []byte) ([]models.Project, error) {
	var raw []gitlabProject
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode gitlab projects: %w", err)
	}
	projects := make([]models.Project, 0, len(raw))
	for _, p := range raw {
		projects = append(projects, models.Project{ID: p.ID, Name: p.Name, Path: p.PathWithNamespace})
	}
	return projects, nil
}

func (g *GitLab) DecodeCommits(body []byte) ([]models.Commit, error) {
	var commits []models.Commit
	if err := json.Unmarshal(body, &commits); err != nil {
		return nil, fmt.Errorf("decode gitlab commits: %w", err)
	}
	return commits, nil
}

func (g *GitLab) DecodeDiffs(body []byte) ([]models.DiffEntry, error) {
	var diffs []models.DiffEntry
	if err := json.Unmarshal(body, &diffs); err != nil {
		return nil, fmt.Errorf("decode gitlab diff: %w", err)
	}
	return diffs, nil
}

func (g *GitLab) DecodeRefs(body []byte) ([]models.RefEntry, error) {
	var refs []models.RefEntry
	if err := json.Unmarshal(body, &refs); err != nil {
		return nil, fmt.Errorf("decode gitlab refs: %w", err)
	}
	return refs, nil
}

// Redact drops everything before the API version segment, so
// "https://host/api/v4/projects/1" becomes "v4/projects/1"
func (g *GitLab) Redact(rawURL string) string {
	if idx := strings.Index(rawURL, gitlabVersionMarker); idx >= 0 {
		return rawURL[idx:]
	}
	return pathAndQuery(rawURL)
}

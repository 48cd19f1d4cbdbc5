package provider

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/alimgiray/glscope/internal/models"
)

// Provider builds requests for and decodes responses from the four remote
// API endpoints an analysis consumes.
type Provider interface {
	Name() string

	// Client returns the HTTP client requests are issued with
	Client() *http.Client

	// Authorize sets auth and content-type headers on an outgoing request
	Authorize(req *http.Request)

	ProjectsURL(page int) string
	CommitsURL(project models.Project, page int) string
	DiffURL(project models.Project, sha string) string
	RefsURL(project models.Project, sha string) string

	DecodeProjects(body []byte) ([]models.Project, error)
	DecodeCommits(body []byte) ([]models.Commit, error)
	DecodeDiffs(body []byte) ([]models.DiffEntry, error)
	DecodeRefs(body []byte) ([]models.RefEntry, error)

	// Redact strips host and API version details from a request URL before
	// it is stored in a failure record
	Redact(rawURL string) string
}

// CommitsPerPage is the page size used for commit listings
const CommitsPerPage = 100

// New returns the provider named in cfg
func New(cfg models.Config) (Provider, error) {
	switch cfg.Provider {
	case models.ProviderGitLab, "":
		return NewGitLab(cfg, nil), nil
	case models.ProviderGitHub:
		return NewGitHub(cfg), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// pathAndQuery returns the path and query of rawURL, or rawURL unchanged if
// it cannot be parsed
func pathAndQuery(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.RawQuery == "" {
		return u.Path
	}
	return u.Path + "?" + u.RawQuery
}

func joinURL(base string, parts ...string) string {
	return strings.TrimRight(base, "/") + "/" + strings.Join(parts, "/")
}

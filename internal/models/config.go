package models

import (
	"strings"
)

// Supported remote API providers
const (
	ProviderGitLab = "gitlab"
	ProviderGitHub = "github"
)

// Config is the input of one analysis run
type Config struct {
	Provider              string   `json:"provider" mapstructure:"provider"`
	APIURL                string   `json:"api_url" mapstructure:"api_url"`
	Token                 string   `json:"token,omitempty" mapstructure:"token"`
	GroupID               string   `json:"group_id" mapstructure:"group_id"`
	StartDate             string   `json:"start_date" mapstructure:"start_date"`
	EndDate               string   `json:"end_date" mapstructure:"end_date"`
	ProjectsNum           int      `json:"projects_num" mapstructure:"projects_num"`
	ExcludedProjects      []string `json:"excluded_projects" mapstructure:"excluded_projects"`
	ValidExtensions       []string `json:"valid_extensions" mapstructure:"valid_extensions"`
	MaxConcurrentRequests int      `json:"max_concurrent_requests" mapstructure:"max_concurrent_requests"`
	IgnoredPaths          []string `json:"ignored_paths" mapstructure:"ignored_paths"`
}

// Defaults used when a config leaves a field empty
var (
	DefaultValidExtensions = []string{
		".js", ".cjs", ".mjs", ".ts", ".jsx", ".tsx", ".css",
		".scss", ".sass", ".html", ".sh", ".vue",
		".svelte", ".rs",
	}
	DefaultIgnoredPaths = []string{
		"dist", "node_modules/", "build/",
		".husky", "lintrc", "public/",
	}
)

const (
	DefaultGitHubAPIURL          = "https://api.github.com"
	DefaultProjectsNum           = 100
	DefaultMaxConcurrentRequests = 5
)

var (
	ErrAPIURLRequired     = &ValidationError{Field: "api_url", Message: "API URL is required"}
	ErrTokenRequired      = &ValidationError{Field: "token", Message: "token is required"}
	ErrGroupIDRequired    = &ValidationError{Field: "group_id", Message: "group ID is required"}
	ErrUnknownProvider    = &ValidationError{Field: "provider", Message: "provider must be gitlab or github"}
	ErrInvalidConcurrency = &ValidationError{Field: "max_concurrent_requests", Message: "max concurrent requests must be positive"}
	ErrInvalidProjectsNum = &ValidationError{Field: "projects_num", Message: "projects page size must be positive"}
	ErrExtensionsRequired = &ValidationError{Field: "valid_extensions", Message: "at least one file extension is required"}
)

// ApplyDefaults fills unset optional fields
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderGitLab
	}
	if c.Provider == ProviderGitHub && strings.TrimSpace(c.APIURL) == "" {
		c.APIURL = DefaultGitHubAPIURL
	}
	if c.ProjectsNum == 0 {
		c.ProjectsNum = DefaultProjectsNum
	}
	if c.MaxConcurrentRequests == 0 {
		c.MaxConcurrentRequests = DefaultMaxConcurrentRequests
	}
	if c.ValidExtensions == nil {
		c.ValidExtensions = append([]string(nil), DefaultValidExtensions...)
	}
	if c.IgnoredPaths == nil {
		c.IgnoredPaths = append([]string(nil), DefaultIgnoredPaths...)
	}
}

// Validate checks the config and normalizes extensions to the ".ext" form
func (c *Config) Validate() error {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.APIURL == "" {
		return ErrAPIURLRequired
	}
	if c.Token == "" {
		return ErrTokenRequired
	}
	if strings.TrimSpace(c.GroupID) == "" {
		return ErrGroupIDRequired
	}
	switch c.Provider {
	case ProviderGitLab, ProviderGitHub:
	default:
		return ErrUnknownProvider
	}
	if c.MaxConcurrentRequests < 1 {
		return ErrInvalidConcurrency
	}
	if c.ProjectsNum < 1 {
		return ErrInvalidProjectsNum
	}

	extensions := make([]string, 0, len(c.ValidExtensions))
	for _, ext := range c.ValidExtensions {
		ext = strings.TrimSpace(ext)
		if ext == "" || ext == "." {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions = append(extensions, ext)
	}
	if len(extensions) == 0 {
		return ErrExtensionsRequired
	}
	c.ValidExtensions = extensions

	return nil
}

// IsExcluded reports whether a project name is in the excluded set
func (c *Config) IsExcluded(projectName string) bool {
	for _, name := range c.ExcludedProjects {
		if name == projectName {
			return true
		}
	}
	return false
}

// Redacted returns a copy of the config without the token
func (c Config) Redacted() Config {
	c.Token = ""
	return c
}

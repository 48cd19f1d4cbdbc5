package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alimgiray/glscope/internal/batch"
	"github.com/alimgiray/glscope/internal/models"
	"github.com/alimgiray/glscope/internal/provider"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// AnalysisService runs the fetch-and-aggregate pipeline for a config
type AnalysisService struct {
	opts        FetcherOptions
	log         logrus.FieldLogger
	newProvider func(cfg models.Config) (provider.Provider, error)
}

// NewAnalysisService creates an analysis service
func NewAnalysisService(opts FetcherOptions, log logrus.FieldLogger) *AnalysisService {
	return &AnalysisService{
		opts:        opts,
		log:         log,
		newProvider: provider.New,
	}
}

// analysis is the state of one run
type analysis struct {
	cfg        models.Config
	provider   provider.Provider
	fetcher    *Fetcher
	diffs      *DiffAnalyzer
	refs       *RefResolver
	aggregator *Aggregator
	failures   *models.FailureLog
	log        logrus.FieldLogger
}

// Analyze discovers the group's projects, walks their commits over the date
// window and returns the aggregated report. It fails only when a project or
// commit listing cannot be fetched; per-commit failures end up in the
// report's failure list.
func (s *AnalysisService) Analyze(ctx context.Context, cfg models.Config) (*models.Report, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p, err := s.newProvider(cfg)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	failures := models.NewFailureLog()
	fetcher := NewFetcher(p, failures, s.opts, s.log)
	a := &analysis{
		cfg:        cfg,
		provider:   p,
		fetcher:    fetcher,
		diffs:      NewDiffAnalyzer(fetcher, p, NewFileFilter(cfg.ValidExtensions, cfg.IgnoredPaths)),
		refs:       NewRefResolver(fetcher, p),
		aggregator: NewAggregator(),
		failures:   failures,
		log:        s.log.WithField("group", cfg.GroupID),
	}

	a.log.Info("Fetching projects")
	projects, err := ListAll(ctx, fetcher, p.ProjectsURL, Operation{Name: OpListProjects}, p.DecodeProjects)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	selected := make([]models.Project, 0, len(projects))
	for _, project := range projects {
		if cfg.IsExcluded(project.Name) {
			continue
		}
		selected = append(selected, project)
	}
	a.log.WithField("excluded", len(projects)-len(selected)).Infof("Analyzing %d projects", len(selected))

	results := batch.RunBounded(ctx, selected, cfg.MaxConcurrentRequests, a.processProject)
	if err := batch.FirstFatal(results); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := BuildReport(a.aggregator.Snapshot(), failures.Snapshot())
	commits, size := report.Totals()
	a.log.WithFields(logrus.Fields{
		"authors":  len(report.CodeStats),
		"commits":  commits,
		"size":     humanize.IBytes(uint64(size) * bytesPerKiB),
		"failures": len(report.FailureStats),
		"elapsed":  time.Since(started).String(),
	}).Info("Report built")

	return report, nil
}

func (a *analysis) processProject(ctx context.Context, project models.Project) error {
	log := a.log.WithField("project", project.Name)
	log.Info("Analyzing project")

	commits, err := ListAll(ctx, a.fetcher,
		func(page int) string { return a.provider.CommitsURL(project, page) },
		Operation{Name: OpListCommits, ProjectName: project.Name},
		a.provider.DecodeCommits,
	)
	if err != nil {
		return batch.Fatal(fmt.Errorf("list commits of %s: %w", project.Name, err))
	}

	results := batch.RunBounded(ctx, commits, a.cfg.MaxConcurrentRequests, func(ctx context.Context, commit models.Commit) error {
		return a.processCommit(ctx, project, commit)
	})

	log.WithFields(logrus.Fields{
		"commits": len(commits),
		"skipped": batch.Failed(results),
	}).Info("Project analyzed")
	return nil
}

// processCommit adds one commit to the aggregate. A failed diff or ref
// lookup skips the commit; the failure is already in the failure log.
func (a *analysis) processCommit(ctx context.Context, project models.Project, commit models.Commit) error {
	stats, err := a.diffs.Analyze(ctx, project, commit)
	if err != nil {
		a.logSkipped(project, commit, err)
		return err
	}

	branch, tag, err := a.refs.Resolve(ctx, project, commit)
	if err != nil {
		a.logSkipped(project, commit, err)
		return err
	}

	a.aggregator.Record(commit, project, stats, branch, tag)
	return nil
}

func (a *analysis) logSkipped(project models.Project, commit models.Commit, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	a.log.WithFields(logrus.Fields{
		"project": project.Name,
		"commit":  commit.ID,
	}).WithError(err).Warn("Commit skipped")
}

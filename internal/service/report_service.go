package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vilaca/zenhub-estimates/internal/api"
	"github.com/vilaca/zenhub-estimates/internal/domain"
	"github.com/vilaca/zenhub-estimates/internal/issues"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultConcurrency = api.MaxConcurrentRequests
)

// Logger interface for logging operations.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// ReportServiceConfig holds the dependencies and limits of a ReportService.
type ReportServiceConfig struct {
	Client      api.Client
	WorkspaceID string
	Logger      Logger

	// Timeout bounds each individual fetch. Zero means the default.
	Timeout time.Duration

	// Concurrency bounds how many pipelines are processed at once. Zero means the default.
	Concurrency int
}

// ReportService builds per-pipeline estimate reports for a workspace.
type ReportService struct {
	client      api.Client
	workspaceID string
	logger      Logger
	timeout     time.Duration
	concurrency int
}

// NewReportService creates a new report service.
func NewReportService(cfg ReportServiceConfig) *ReportService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	return &ReportService{
		client:      cfg.Client,
		workspaceID: cfg.WorkspaceID,
		logger:      cfg.Logger,
		timeout:     timeout,
		concurrency: concurrency,
	}
}

// Request describes which reports to build.
type Request struct {
	// Pipelines lists pipeline names in output order. Empty means a single
	// report that is not scoped to any pipeline.
	Pipelines []string

	// Assignee filters by this login instead of the token owner's.
	Assignee string

	// Everyone disables the assignee constraint.
	Everyone bool

	// Where is an extra predicate every reported issue must satisfy.
	Where issues.Predicate
}

// PipelineResult is the outcome for one requested pipeline.
// Exactly one of Report and Err is set.
type PipelineResult struct {
	Name   string
	Report *domain.PipelineReport
	Err    error
}

// RunResult holds everything a run produced, with Results in request order.
type RunResult struct {
	User         *domain.User
	Assignee     *string
	Repositories []domain.Repository
	Scope        issues.Scope
	Results      []PipelineResult
}

// Err joins the per-pipeline errors, or returns nil if every pipeline succeeded.
func (r *RunResult) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errors.Join(errs...)
}

// Run resolves the assignee and repository scope, then builds one report per
// requested pipeline. Failing to resolve the user or the repositories aborts
// the run; a failing pipeline is recorded in its result and the rest proceed.
func (s *ReportService) Run(ctx context.Context, req Request) (*RunResult, error) {
	run := &RunResult{}

	assignee, user, err := s.resolveAssignee(ctx, req)
	if err != nil {
		return nil, err
	}
	run.User = user
	run.Assignee = assignee

	repos, err := s.fetchRepositories(ctx)
	if err != nil {
		return nil, err
	}
	run.Repositories = repos
	run.Scope = issues.NewScope(repos)
	s.logger.Infof("Workspace %s: %d repositories, %d distinct", s.workspaceID, len(repos), run.Scope.Len())
	if run.Scope.IsEmpty() {
		s.logger.Warnf("Workspace %s has no repositories; issue query scope is empty", s.workspaceID)
	}

	filters := buildFilters(req, assignee)
	run.Results = make([]PipelineResult, len(filters))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, f := range filters {
		g.Go(func() error {
			run.Results[i] = s.buildReport(gctx, run.Scope, f)
			return nil
		})
	}
	_ = g.Wait()

	return run, nil
}

func (s *ReportService) resolveAssignee(ctx context.Context, req Request) (*string, *domain.User, error) {
	if req.Everyone {
		return nil, nil, nil
	}
	if req.Assignee != "" {
		login := req.Assignee
		return &login, nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.client.GetCurrentUser(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("user lookup: %w", err)
	}
	s.logger.Debugf("Authenticated as %s", user.Login)

	login := user.Login
	return &login, user, nil
}

func (s *ReportService) fetchRepositories(ctx context.Context) ([]domain.Repository, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	repos, err := s.client.GetRepositories(ctx, s.workspaceID)
	if err != nil {
		return nil, fmt.Errorf("repository lookup: %w", err)
	}
	return repos, nil
}

// buildReport runs fetch, filter and assembly for one pipeline.
func (s *ReportService) buildReport(ctx context.Context, scope issues.Scope, f issues.Filter) PipelineResult {
	name := pipelineName(f)
	result := PipelineResult{Name: name}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	list, err := s.client.GetIssues(ctx, s.workspaceID, scope)
	if err != nil {
		if f.ByPipelineName != nil {
			result.Err = fmt.Errorf("issue lookup for pipeline %q: %w", name, err)
		} else {
			result.Err = fmt.Errorf("issue lookup: %w", err)
		}
		s.logger.Warnf("%v", result.Err)
		return result
	}

	agg := issues.Apply(list, f)
	report := issues.BuildReport(f, agg)
	s.logger.Debugf("Pipeline %q: %d of %d issues matched", report.Title, len(agg.Matched), len(list))

	result.Report = &report
	return result
}

// buildFilters returns one filter per requested pipeline, or a single
// pipeline-less filter when none were requested.
func buildFilters(req Request, assignee *string) []issues.Filter {
	if len(req.Pipelines) == 0 {
		return []issues.Filter{{ByAssignee: assignee, Where: req.Where}}
	}

	filters := make([]issues.Filter, len(req.Pipelines))
	for i, name := range req.Pipelines {
		filters[i] = issues.Filter{
			ByAssignee:     assignee,
			ByPipelineName: &name,
			Where:          req.Where,
		}
	}
	return filters
}

func pipelineName(f issues.Filter) string {
	if f.ByPipelineName == nil {
		return ""
	}
	return *f.ByPipelineName
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
	"github.com/sirupsen/logrus"

	"github.com/vilaca/zenhub-estimates/internal/api"
	"github.com/vilaca/zenhub-estimates/internal/api/zenhub"
	"github.com/vilaca/zenhub-estimates/internal/config"
	"github.com/vilaca/zenhub-estimates/internal/domain"
	"github.com/vilaca/zenhub-estimates/internal/query"
	"github.com/vilaca/zenhub-estimates/internal/report"
	"github.com/vilaca/zenhub-estimates/internal/service"
)

const description = `Sums ZenHub estimates of the issues assigned to you, per pipeline.

Pipelines are given as arguments, with -pipelines, or with ZENHUB_PIPELINES.
Without any pipeline a single report covers every issue in the workspace.

Configuration is read from a YAML file (-config or ZENHUB_CONFIG), then
from the environment (a .env file is loaded first), then from flags.

Examples:
  zenhub-estimates Backlog "In Progress"
  zenhub-estimates -assignee bob -format json Review
  zenhub-estimates -everyone -where 'estimate >= 5 && "bug" in labels'`

// errPipelinesFailed reports that at least one pipeline could not be built.
// The failures themselves are already part of the rendered output.
var errPipelinesFailed = errors.New("one or more pipelines failed")

type rootConfig struct {
	*cli.Command

	ConfigFile string `cli:"name=config desc='YAML configuration file'"`
	APIRoot    string `cli:"name=api-root desc='ZenHub API root URL'"`
	Workspace  string `cli:"name=workspace aliases=w desc='ZenHub workspace id'"`
	Token      string `cli:"name=token desc='ZenHub API token'"`
	Agent      string `cli:"name=agent desc='value sent in the X-Zenhub-Agent header'"`
	Pipelines  string `cli:"name=pipelines aliases=p desc='comma separated pipeline names'"`
	Assignee   string `cli:"name=assignee aliases=a desc='filter by this login instead of the token owner'"`
	Everyone   bool   `cli:"name=everyone desc='do not filter by assignee'"`
	Where      string `cli:"name=where desc='extra filter expression over issue fields'"`
	Format     string `cli:"name=format aliases=o desc='output format: text json or yaml' default=text"`
	Timeout    int    `cli:"name=timeout desc='per request timeout in seconds'"`
	Verbose    bool   `cli:"name=v desc='debug logging'"`
}

// RootCommand returns the zenhub-estimates command.
func RootCommand(ctx context.Context) *cli.Command {
	cfg := &rootConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Command, "zenhub-estimates").
		WithSynopsis("zenhub-estimates [opts] [pipeline...]").
		WithDescription(description).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return cfg.run(ctx, cc, args)
		})
}

func (cfg *rootConfig) run(ctx context.Context, cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		cfg.Usage(cc, err)
		return cli.ExitCodeErr(2)
	}

	logger := newLogger(os.Stderr, cfg.Verbose)
	err = execute(ctx, cfg.options(args), cc.Out, logger)
	if err != nil && !errors.Is(err, errPipelinesFailed) {
		logger.Errorf("%v", err)
	}
	if code := exitCode(err); code != 0 {
		return cli.ExitCodeErr(code)
	}
	return nil
}

func (cfg *rootConfig) options(args []string) options {
	o := options{
		configFile: cfg.ConfigFile,
		apiRoot:    cfg.APIRoot,
		workspace:  cfg.Workspace,
		token:      cfg.Token,
		agent:      cfg.Agent,
		pipelines:  config.ParseList(cfg.Pipelines),
		assignee:   cfg.Assignee,
		everyone:   cfg.Everyone,
		where:      cfg.Where,
		format:     cfg.Format,
		timeout:    cfg.Timeout,
	}
	if len(args) > 0 {
		o.pipelines = args
	}
	return o
}

// options are the command line values that take precedence over config.
type options struct {
	configFile string
	apiRoot    string
	workspace  string
	token      string
	agent      string
	pipelines  []string
	assignee   string
	everyone   bool
	where      string
	format     string
	timeout    int
}

func (o options) apply(cfg *config.Config) {
	if o.apiRoot != "" {
		cfg.APIRoot = o.apiRoot
	}
	if o.workspace != "" {
		cfg.WorkspaceID = o.workspace
	}
	if o.token != "" {
		cfg.APIToken = o.token
	}
	if o.agent != "" {
		cfg.Agent = o.agent
	}
	if len(o.pipelines) > 0 {
		cfg.Pipelines = o.pipelines
	}
	if o.assignee != "" {
		cfg.Assignee = o.assignee
	}
	if o.timeout > 0 {
		cfg.TimeoutSeconds = o.timeout
	}
}

// execute loads configuration, runs the reports and renders them to out.
func execute(ctx context.Context, o options, out io.Writer, logger *logrus.Logger) error {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return err
	}
	o.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.Debugf("Configuration: %s", cfg)

	where, err := query.Compile(o.where)
	if err != nil {
		return err
	}
	renderer, err := report.NewRenderer(o.format, isTerminal(out))
	if err != nil {
		return err
	}

	svc := service.NewReportService(service.ReportServiceConfig{
		Client:      buildClient(cfg, logger),
		WorkspaceID: cfg.WorkspaceID,
		Logger:      logger,
		Timeout:     cfg.Timeout(),
	})

	run, err := svc.Run(ctx, service.Request{
		Pipelines: cfg.Pipelines,
		Assignee:  cfg.Assignee,
		Everyone:  o.everyone,
		Where:     where,
	})
	if err != nil {
		return err
	}

	if err := renderer.Render(out, run); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	if run.Err() != nil {
		return errPipelinesFailed
	}
	return nil
}

// buildClient is the composition root for the API layer.
func buildClient(cfg *config.Config, logger *logrus.Logger) api.Client {
	httpClient := &http.Client{Timeout: cfg.Timeout()}

	var client api.Client = zenhub.NewClient(api.ClientConfig{
		BaseURL: cfg.APIRoot,
		Token:   cfg.APIToken,
		Agent:   cfg.Agent,
	}, httpClient)

	if cfg.HasCache() {
		client = api.NewCachingClient(client, cfg.CacheDuration(), logger)
	}
	return client
}

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(logrus.WarnLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

// exitCode maps the outcome of execute to a process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, domain.ErrConfig):
		return 2
	default:
		return 1
	}
}

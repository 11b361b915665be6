package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/urfave/cli"

	"github.com/idilettant/seoaudit/audit"
	"github.com/idilettant/seoaudit/internal/config"
	"github.com/idilettant/seoaudit/internal/limiter"
	seolog "github.com/idilettant/seoaudit/internal/log"
	"github.com/idilettant/seoaudit/internal/pagespeed"
	"github.com/idilettant/seoaudit/internal/report"
	"github.com/idilettant/seoaudit/internal/server"
	"github.com/idilettant/seoaudit/internal/urlutil"
)

// Run executes the CLI. Reports go to stdout and logs to stderr.
// If a URL argument is missing, it prints the command help and returns nil.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer, client *http.Client, clock limiter.Timer) error {
	app := cli.NewApp()
	app.Name = "seoaudit"
	app.Usage = "audit web pages and sites for SEO issues"
	app.UsageText = "seoaudit [global options] command [command options] <url>"
	app.Writer = stdout
	app.ErrWriter = stderr
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "path to a seoaudit.yaml config file",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn or error",
		},
		cli.StringFlag{
			Name:  "log-format",
			Usage: "text or json",
		},
	}

	r := &runner{ctx: ctx, stdout: stdout, stderr: stderr, client: client, clock: clock}

	app.Commands = []cli.Command{
		{
			Name:      "audit",
			Usage:     "audit a single page",
			ArgsUsage: "<url>",
			Flags:     append(fetchFlags(), outputFlags()...),
			Action:    r.audit,
		},
		{
			Name:      "crawl",
			Usage:     "crawl a site and audit every same-host page",
			ArgsUsage: "<url>",
			Flags: append(append(fetchFlags(), crawlFlags()...), append(outputFlags(), cli.BoolFlag{
				Name:  "lighthouse",
				Usage: "fetch PageSpeed scores for the start URL (needs pagespeed_api_key)",
			})...),
			Action: r.crawl,
		},
		{
			Name:      "prelaunch",
			Usage:     "crawl a site and check robots.txt, sitemap.xml and HTTPS",
			ArgsUsage: "<url>",
			Flags:     append(append(fetchFlags(), crawlFlags()...), outputFlags()...),
			Action:    r.prelaunch,
		},
		{
			Name:  "serve",
			Usage: "serve the HTTP and event-stream API",
			Flags: append(fetchFlags(), append(crawlFlags(), cli.StringFlag{
				Name:  "listen",
				Usage: "listen address",
			})...),
			Action: r.serve,
		},
		{
			Name:  "sample-config",
			Usage: "print a commented config file",
			Action: func(*cli.Context) error {
				_, err := io.WriteString(stdout, config.SampleConfig())
				return err
			},
		},
	}

	return app.Run(args)
}

type runner struct {
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer
	client *http.Client
	clock  limiter.Timer
}

func (r *runner) audit(c *cli.Context) error {
	target := urlutil.EnsureScheme(c.Args().First())
	if target == "" {
		return cli.ShowCommandHelp(c, c.Command.Name)
	}

	env, err := r.setup(c)
	if err != nil {
		return err
	}

	session, err := env.svc.Begin()
	if err != nil {
		return err
	}
	defer session.Close()

	page, err := session.AuditPage(r.ctx, target)
	if err != nil {
		return err
	}

	return env.write(r.stdout, page)
}

func (r *runner) crawl(c *cli.Context) error {
	target := urlutil.EnsureScheme(c.Args().First())
	if target == "" {
		return cli.ShowCommandHelp(c, c.Command.Name)
	}

	env, err := r.setup(c)
	if err != nil {
		return err
	}

	session, err := env.svc.Begin()
	if err != nil {
		return err
	}
	defer session.Close()

	site, err := session.Crawl(r.ctx, audit.CrawlRequest{
		URL:         target,
		MaxPages:    env.cfg.MaxPages,
		Performance: c.Bool("lighthouse"),
	}, progressLogger{log: env.log})

	return env.writePartial(r.stdout, site, err)
}

func (r *runner) prelaunch(c *cli.Context) error {
	target := urlutil.EnsureScheme(c.Args().First())
	if target == "" {
		return cli.ShowCommandHelp(c, c.Command.Name)
	}

	env, err := r.setup(c)
	if err != nil {
		return err
	}

	session, err := env.svc.Begin()
	if err != nil {
		return err
	}
	defer session.Close()

	pre, err := session.PreLaunch(r.ctx, audit.CrawlRequest{
		URL:      target,
		MaxPages: env.cfg.MaxPages,
	}, progressLogger{log: env.log})

	return env.writePartial(r.stdout, pre, err)
}

func (r *runner) serve(c *cli.Context) error {
	env, err := r.setup(c)
	if err != nil {
		return err
	}

	addr := env.cfg.ListenAddr
	if c.IsSet("listen") {
		addr = c.String("listen")
	}

	return server.New(env.svc, env.log).ListenAndServe(r.ctx, addr)
}

// environment is the per-command state built from config and flags.
type environment struct {
	cfg    *config.Config
	svc    *audit.Service
	log    *slog.Logger
	format report.Format
	indent bool
}

func (r *runner) setup(c *cli.Context) (*environment, error) {
	cfg, err := config.LoadFromFile(c.GlobalString("config"))
	if err != nil {
		return nil, err
	}

	applyFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	logger, err := seolog.New(r.stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	format, err := report.ParseFormat(c.String("format"))
	if err != nil {
		return nil, err
	}

	return &environment{
		cfg:    cfg,
		svc:    audit.New(serviceOptions(cfg, r.client, r.clock, logger)),
		log:    logger,
		format: format,
		indent: !c.Bool("compact"),
	}, nil
}

func (e *environment) write(w io.Writer, r audit.Report) error {
	return report.Write(w, r, e.format, e.indent)
}

// writePartial prints whatever report exists, then returns the run error.
func (e *environment) writePartial(w io.Writer, r audit.Report, runErr error) error {
	if isNilReport(r) {
		return runErr
	}

	if err := e.write(w, r); err != nil {
		return errors.Join(runErr, err)
	}

	return runErr
}

func isNilReport(r audit.Report) bool {
	switch v := r.(type) {
	case *audit.SiteCrawlReport:
		return v == nil
	case *audit.PreLaunchReport:
		return v == nil
	case *audit.PageReport:
		return v == nil
	default:
		return r == nil
	}
}

func serviceOptions(cfg *config.Config, client *http.Client, clock limiter.Timer, logger *slog.Logger) audit.Options {
	opts := audit.Options{
		UserAgent:    cfg.UserAgent,
		Timeout:      cfg.Timeout,
		MaxBodyBytes: cfg.MaxBodyBytes,
		Retries:      cfg.Retries,
		Delay:        cfg.Delay,
		RPS:          cfg.RPS,
		MaxPages:     cfg.MaxPages,
		CrawlTimeout: cfg.CrawlTimeout,
		HTTPClient:   client,
		Clock:        clock,
		Logger:       logger,
	}

	if len(cfg.IgnorePatterns) > 0 {
		opts.IgnorePatterns = cfg.IgnorePatterns
	}

	if cfg.PageSpeedEnabled() {
		opts.Scorer = pagespeed.New(cfg.PageSpeedEndpoint, cfg.PageSpeedAPIKey, cfg.PageSpeedStrategy, cfg.PageSpeedTimeout, client)
	}

	return opts
}

// progressLogger reports crawl events on the logger.
type progressLogger struct {
	log *slog.Logger
}

func (p progressLogger) Progress(progress audit.Progress) {
	p.log.Debug("progress", "page", progress.PagesAudited, "discovered", progress.TotalDiscovered, "url", progress.CurrentURL)
}

func (p progressLogger) PageResult(result audit.CrawlResult) {
	p.log.Info("page audited", "url", result.URL, "status", result.Status, "score", result.Score)
}

func (p progressLogger) Checklist(infra audit.InfraReport) {
	p.log.Info("infrastructure checked",
		"robots_txt", infra.Checklist.RobotsTxt,
		"sitemap", infra.Checklist.Sitemap,
		"https", infra.Checklist.HTTPS,
		"sitemap_urls", infra.SitemapURLs,
	)
}

package app

import (
	"github.com/urfave/cli"

	"github.com/idilettant/seoaudit/internal/config"
)

func fetchFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "retries",
			Usage: "number of retries for failed requests",
		},
		cli.DurationFlag{
			Name:  "delay",
			Usage: "delay between requests (example: 200ms, 1s)",
		},
		cli.DurationFlag{
			Name:  "timeout",
			Usage: "per-request timeout",
		},
		cli.Float64Flag{
			Name:  "rps",
			Usage: "limit requests per second (overrides delay)",
		},
		cli.StringFlag{
			Name:  "user-agent",
			Usage: "custom user agent",
		},
	}
}

func crawlFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "max-pages",
			Usage: "maximum number of pages to audit",
		},
		cli.DurationFlag{
			Name:  "crawl-timeout",
			Usage: "overall crawl deadline",
		},
		cli.StringSliceFlag{
			Name:  "ignore",
			Usage: `path pattern the crawler never follows, repeatable (example: "/admin/*", "*.pdf")`,
		},
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "format",
			Usage: "json, markdown or yaml",
			Value: "json",
		},
		cli.BoolFlag{
			Name:  "compact",
			Usage: "print JSON on one line",
		},
	}
}

// applyFlags overrides config values with the flags set on the command line.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.GlobalIsSet("log-level") {
		cfg.LogLevel = c.GlobalString("log-level")
	}
	if c.GlobalIsSet("log-format") {
		cfg.LogFormat = c.GlobalString("log-format")
	}
	if c.IsSet("retries") {
		cfg.Retries = c.Int("retries")
	}
	if c.IsSet("delay") {
		cfg.Delay = c.Duration("delay")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}
	if c.IsSet("rps") {
		cfg.RPS = c.Float64("rps")
	}
	if c.IsSet("user-agent") {
		cfg.UserAgent = c.String("user-agent")
	}
	if c.IsSet("max-pages") {
		cfg.MaxPages = c.Int("max-pages")
	}
	if c.IsSet("crawl-timeout") {
		cfg.CrawlTimeout = c.Duration("crawl-timeout")
	}
	if ignore := c.StringSlice("ignore"); len(ignore) > 0 {
		cfg.IgnorePatterns = ignore
	}
}

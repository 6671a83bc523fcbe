package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"

	"github.com/mmynk/kanakk/internal/report"
	"github.com/mmynk/kanakk/internal/service"
)

type migrateCmd struct{}

func (*migrateCmd) Name() string             { return "migrate" }
func (*migrateCmd) Synopsis() string         { return "apply the database schema and exit" }
func (*migrateCmd) Usage() string            { return "migrate\n" }
func (*migrateCmd) SetFlags(f *flag.FlagSet) {}

func (*migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.close()

	if err := a.store.Migrate(ctx); err != nil {
		a.logger.Error("Migration failed", "error", err)
		return subcommands.ExitFailure
	}
	a.logger.Info("Schema is up to date")
	return subcommands.ExitSuccess
}

type seedCmd struct{}

func (*seedCmd) Name() string     { return "seed" }
func (*seedCmd) Synopsis() string { return "create the demo company and admin on an empty database" }
func (*seedCmd) Usage() string {
	return `seed

  Creates "` + service.SeedCompanyName + `" with the admin login ` + service.SeedEmail + ` if no
  company exists yet. Does nothing otherwise.
`
}
func (*seedCmd) SetFlags(f *flag.FlagSet) {}

func (*seedCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.close()

	if err := a.seed(ctx); err != nil {
		a.logger.Error("Seed failed", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type reportCmd struct {
	company string
	start   string
	end     string
	format  string
	output  string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "export a company report as PDF or XLSX" }
func (*reportCmd) Usage() string {
	return `report -company <id> [-start YYYY-MM-DD] [-end YYYY-MM-DD] [-format pdf|xlsx] [-o file]

  Writes the same report the web interface offers for download, without
  a login. Intended for operators with database access.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.company, "company", "", "company id (required)")
	f.StringVar(&c.start, "start", "", "first day to include")
	f.StringVar(&c.end, "end", "", "last day to include")
	f.StringVar(&c.format, "format", "pdf", "output format: pdf or xlsx")
	f.StringVar(&c.output, "o", "", "output file (default: report_<company name>.<format>)")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.company == "" {
		fmt.Fprintln(os.Stderr, "-company is required")
		f.Usage()
		return subcommands.ExitUsageError
	}
	format := strings.ToLower(c.format)
	if format != "pdf" && format != "xlsx" {
		fmt.Fprintf(os.Stderr, "unknown format %q\n", c.format)
		return subcommands.ExitUsageError
	}
	rng, err := service.ParseRange(c.start, c.end)
	if err != nil {
		fmt.Fprintln(os.Stderr, service.UserMessage(err))
		return subcommands.ExitUsageError
	}

	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.close()

	l, err := a.ledgers.Compute(ctx, c.company, rng)
	if err != nil {
		a.logger.Error("Failed to compute ledger", "company_id", c.company, "error", err)
		return subcommands.ExitFailure
	}

	path := c.output
	if path == "" {
		path = report.Filename(l.Company.Name, format)
	}
	out, err := os.Create(path)
	if err != nil {
		a.logger.Error("Failed to create output file", "path", path, "error", err)
		return subcommands.ExitFailure
	}

	switch format {
	case "pdf":
		err = report.WritePDF(out, l, time.Now())
	case "xlsx":
		err = report.WriteXLSX(out, l)
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		a.logger.Error("Failed to write report", "path", path, "error", err)
		os.Remove(path)
		return subcommands.ExitFailure
	}
	a.metrics.ReportGenerated(format)
	a.logger.Info("Report written", "path", path, "company", l.Company.Name, "period", report.NewView(l).Period())
	return subcommands.ExitSuccess
}

// Command hoteletl runs the hotel-bookings batch pipeline: it reads the raw
// bookings table, writes the cleaned table and the monthly summary, and
// optionally exports the summary as a report file.
//
// Usage:
//
//	hoteletl [-config path] [-validate] [-schedule spec] [-report file] ...
//	hoteletl ingest -input path-or-url [-config path] ...
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sebamyu/Mini-Project-AIE321/internal/config"
	"github.com/sebamyu/Mini-Project-AIE321/internal/pipeline"

	// register all backends with the storage factory.
	// config picks one, but the binary supports all of them.
	_ "github.com/sebamyu/Mini-Project-AIE321/internal/storage/all"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

const defaultPushgatewayURL = "http://localhost:9091"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// run parses args, loads and validates the config and executes the pipeline
// once, or on a schedule when -schedule is set. `hoteletl ingest ...` loads a
// raw export instead. It returns the process exit code.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	if len(args) > 0 && args[0] == "ingest" {
		return runIngest(ctx, args[1:], stderr)
	}

	fs := flag.NewFlagSet("hoteletl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		cfgPath  string
		validate bool
		verbose  bool
		schedule string
		o        runOptions
	)
	fs.StringVar(&cfgPath, "config", "", "pipeline config path (.json, .yaml or .yml); defaults plus HOTELETL_* env when empty")
	fs.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	fs.BoolVar(&verbose, "v", false, "enable verbose logs")
	fs.StringVar(&o.metricsBackend, "metrics-backend", "", "metrics backend: none, pushgateway or datadog (overrides env METRICS_BACKEND)")
	fs.StringVar(&o.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	fs.StringVar(&o.statsdAddr, "statsd-addr", "", "DogStatsD address (overrides env DD_AGENT_ADDR)")
	fs.StringVar(&schedule, "schedule", "", "cron spec (e.g. \"0 3 * * *\" or \"@every 1h\"); run once when empty")
	fs.StringVar(&o.reportPath, "report", "", "export the monthly summary to this .csv or .xlsx file after each run")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	o.verbose = verbose

	p, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return exitFailure
	}

	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("Configuration is invalid: %v", displayPath(cfgPath))
		return exitFailure
	}
	if validate {
		log.Printf("Configuration is valid: %v", displayPath(cfgPath))
		return exitOK
	}

	// flag → env → default.
	o.metricsBackend = firstNonEmpty(o.metricsBackend, os.Getenv("METRICS_BACKEND"), "none")
	o.pushgatewayURL = firstNonEmpty(o.pushgatewayURL, os.Getenv("PUSHGATEWAY_URL"), defaultPushgatewayURL)
	o.statsdAddr = firstNonEmpty(o.statsdAddr, os.Getenv("DD_AGENT_ADDR"))

	if verbose {
		log.Printf("pipeline: job=%s storage=%s source=%s.%s destination=%s",
			p.Job, p.Storage.Kind, p.Source.Namespace, p.Source.Table, p.Destination.Namespace)
	}

	if schedule != "" {
		if err := runScheduled(ctx, schedule, func(ctx context.Context) error {
			return runOnce(ctx, p, o)
		}); err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return exitUsage
		}
		return exitOK
	}

	start := time.Now()
	if err := runOnce(ctx, p, o); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		if k := pipeline.KindOf(err); k != "" {
			fmt.Fprintf(stderr, "failed stage=%s kind=%s\n", pipeline.StageOf(err), k)
		}
		return exitFailure
	}
	if verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
	return exitOK
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func displayPath(path string) string {
	if path == "" {
		return "(defaults + env)"
	}
	return path
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"unicode/utf8"

	"github.com/sebamyu/Mini-Project-AIE321/internal/config"
	"github.com/sebamyu/Mini-Project-AIE321/internal/datasource"
	"github.com/sebamyu/Mini-Project-AIE321/internal/datasource/httpds"
	"github.com/sebamyu/Mini-Project-AIE321/internal/ingest"
	"github.com/sebamyu/Mini-Project-AIE321/internal/parser/csv"
	"github.com/sebamyu/Mini-Project-AIE321/internal/storage"
)

var ingestFn = ingest.Load

// runIngest implements `hoteletl ingest`: load a raw CSV export into the
// configured source table.
func runIngest(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("hoteletl ingest", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		cfgPath  string
		input    string
		comma    string
		retries  int
		insecure bool
		o        runOptions
	)
	fs.StringVar(&cfgPath, "config", "", "pipeline config path; defaults plus HOTELETL_* env when empty")
	fs.StringVar(&input, "input", "", "CSV export to load: local path (optionally .gz) or http(s) URL")
	fs.StringVar(&comma, "comma", ",", "field delimiter")
	fs.IntVar(&retries, "retries", 3, "HTTP retries on transient failures")
	fs.BoolVar(&insecure, "insecure", false, "skip TLS certificate verification for http inputs")
	fs.BoolVar(&o.verbose, "v", false, "enable verbose logs")
	fs.StringVar(&o.metricsBackend, "metrics-backend", "", "metrics backend: none, pushgateway or datadog (overrides env METRICS_BACKEND)")
	fs.StringVar(&o.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	fs.StringVar(&o.statsdAddr, "statsd-addr", "", "DogStatsD address (overrides env DD_AGENT_ADDR)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if input == "" {
		fmt.Fprintln(stderr, "ingest: -input is required")
		return exitUsage
	}
	delim, size := utf8.DecodeRuneInString(comma)
	if size == 0 || size != len(comma) {
		fmt.Fprintf(stderr, "ingest: -comma must be a single character, got %q\n", comma)
		return exitUsage
	}

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
		return exitFailure
	}

	o.metricsBackend = firstNonEmpty(o.metricsBackend, os.Getenv("METRICS_BACKEND"), "none")
	o.pushgatewayURL = firstNonEmpty(o.pushgatewayURL, os.Getenv("PUSHGATEWAY_URL"), defaultPushgatewayURL)
	o.statsdAddr = firstNonEmpty(o.statsdAddr, os.Getenv("DD_AGENT_ADDR"))

	flush := installMetrics(p, newRunIDFn(), o)
	defer flush()

	st, err := openStore(ctx, p)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitFailure
	}
	defer st.Close()

	src := datasource.For(input, httpds.Config{MaxRetries: retries, InsecureSkipVerify: insecure})
	ref := storage.TableRef{Namespace: p.Source.Namespace, Name: p.Source.Table}
	if o.verbose {
		log.Printf("ingest: input=%s table=%s storage=%s", input, ref, p.Storage.Kind)
	}
	if _, err := ingestFn(ctx, st, src, ref, csv.Options{Comma: delim}, p.Job); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitFailure
	}
	return exitOK
}

// Command l2pre reverse-engineers the wire format of an unknown layer-2
// packet protocol from one or more captured traces: it imports the
// traces, optionally strips recognised upper-layer payloads, runs the
// field-inference pipeline, and writes any requested reports.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/techge/l2pre/internal/export"
	"github.com/techge/l2pre/internal/importer"
	"github.com/techge/l2pre/internal/logging"
	"github.com/techge/l2pre/internal/metrics"
	"github.com/techge/l2pre/internal/payload"
	"github.com/techge/l2pre/internal/pipeline"
	"github.com/techge/l2pre/internal/wire"
)

type options struct {
	noStrip       bool
	exportFormats []string
	outDir        string
	metricsFile   string
	logLevel      string
	protoName     string
}

func parseFlags(args []string) (options, []string, error) {
	fs := pflag.NewFlagSet("l2pre", pflag.ContinueOnError)

	var opts options
	fs.BoolVar(&opts.noStrip, "no-strip", false, "do not attempt to strip recognised upper-layer payloads")
	fs.StringArrayVar(&opts.exportFormats, "export-format", nil, "report format to write (repeatable): text, dissector, fuzz")
	fs.StringVar(&opts.outDir, "out", "./reports", "directory reports are written to")
	fs.StringVar(&opts.metricsFile, "metrics-file", "", "path the Prometheus text exposition is written to (default <out>/metrics.prom)")
	fs.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.StringVar(&opts.protoName, "proto-name", "inferred", "protocol name used in the Wireshark dissector skeleton")

	if err := fs.Parse(args); err != nil {
		return options{}, nil, err
	}
	if opts.metricsFile == "" {
		opts.metricsFile = filepath.Join(opts.outDir, "metrics.prom")
	}
	return opts, fs.Args(), nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "l2pre:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, tracePaths, err := parseFlags(args)
	if err != nil {
		return err
	}
	if len(tracePaths) == 0 {
		return fmt.Errorf("at least one trace file is required")
	}

	logger := logging.New(opts.logLevel)
	reg := metrics.New()

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory %q: %w", opts.outDir, err)
	}

	imported, err := importer.LoadTraces(tracePaths)
	if err != nil {
		return fmt.Errorf("import traces: %w", err)
	}

	traces := make([]pipeline.Trace, 0, len(imported))
	for _, t := range imported {
		reg.TracesImported.Inc()
		messages := t.Messages
		if !opts.noStrip {
			stripped := make([]*wire.Message, len(messages))
			for i, m := range messages {
				s := payload.Strip(*m)
				stripped[i] = &s
			}
			messages = stripped
		}
		traces = append(traces, pipeline.Trace{Name: t.Name, Messages: messages})
	}

	start := time.Now()
	cluster, stats, err := pipeline.Run(traces, logger)
	reg.ObserveStage("pipeline", time.Since(start))
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}

	reg.SymbolsProduced.Set(float64(stats.SymbolsProduced))
	reg.MessagesDeduped.Add(float64(stats.MessagesDeduped))

	logger.Info("summary", "symbols", stats.SymbolsProduced, "traces", stats.TracesProcessed, "deduped", stats.MessagesDeduped)
	for _, sym := range cluster {
		logger.Info("symbol", "name", sym.Name, "fields", len(sym.Layout.Fields), "messages", len(sym.Messages))
	}

	if err := writeReports(opts, cluster); err != nil {
		return err
	}

	metricsFile, err := os.Create(opts.metricsFile)
	if err != nil {
		return fmt.Errorf("create metrics file %q: %w", opts.metricsFile, err)
	}
	defer metricsFile.Close()
	if err := reg.WriteTo(metricsFile); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}

	return nil
}

func writeReports(opts options, cluster wire.Cluster) error {
	now := time.Now()
	for _, format := range opts.exportFormats {
		switch format {
		case "text":
			name, err := export.FormatFilename("protocol_format", "txt", now)
			if err != nil {
				return err
			}
			if err := writeReport(opts.outDir, name, func(f *os.File) error {
				return export.WriteProtocolFormat(f, cluster)
			}); err != nil {
				return err
			}
		case "dissector":
			name, err := export.FormatFilename("dissector", "lua", now)
			if err != nil {
				return err
			}
			if err := writeReport(opts.outDir, name, func(f *os.File) error {
				return export.WriteDissector(f, cluster, opts.protoName)
			}); err != nil {
				return err
			}
		case "fuzz":
			name, err := export.FormatFilename("fuzz_template", "py", now)
			if err != nil {
				return err
			}
			if err := writeReport(opts.outDir, name, func(f *os.File) error {
				return export.WriteFuzzTemplate(f, cluster)
			}); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown export format %q", format)
		}
	}
	return nil
}

func writeReport(outDir, name string, write func(*os.File) error) error {
	path := filepath.Join(outDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %q: %w", path, err)
	}
	defer f.Close()
	return write(f)
}

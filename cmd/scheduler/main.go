// Package main wires the scheduler simulator's CLI entrypoint.
package main

//nolint:depguard // main wires project-internal modules and zap logging
import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/mohamed-moneim/cpusched/internal/buildinfo"
	httpmetrics "github.com/mohamed-moneim/cpusched/pkg/http/metrics"
	httpstatus "github.com/mohamed-moneim/cpusched/pkg/http/status"
	"github.com/mohamed-moneim/cpusched/pkg/sched"
	"github.com/mohamed-moneim/cpusched/pkg/sink"
	"github.com/mohamed-moneim/cpusched/pkg/workload"
)

const (
	defaultConfigPath = "scheduler.yaml"

	exitCodeSuccess      = 0
	exitCodeRuntimeError = 1
	exitCodeParseError   = 2
)

func main() {
	code := run(context.Background(), os.Args[1:], defaultRunDeps(), os.Stderr)
	if code != 0 {
		os.Exit(code)
	}
}

type runDeps struct {
	newLogger    func(level string) (*zap.Logger, error)
	newSource    func(cfg runtimeConfig) (sched.Source, error)
	newSink      func(dir string) (*sink.LogSink, error)
	serveMetrics func(addr string, exp *httpmetrics.Exporter, status *httpstatus.Handler)
}

func defaultRunDeps() runDeps {
	return runDeps{
		newLogger:    newLogger,
		newSource:    defaultSourceFactory,
		newSink:      sink.New,
		serveMetrics: defaultServeMetrics,
	}
}

func run(_ context.Context, args []string, deps runDeps, stderr io.Writer) int {
	opts, cfg, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)

		return exitCodeParseError
	}

	if err := cfg.validate(); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)

		return exitCodeParseError
	}

	logger, err := deps.newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "failed to configure logger: %v\n", err)

		return exitCodeRuntimeError
	}

	defer func() {
		_ = logger.Sync()
	}()

	info := buildinfo.Current()
	logger.Info(
		"starting cpusched",
		zap.String("version", info.Version),
		zap.String("commit", info.GitCommit),
		zap.String("buildDate", info.BuildDate),
		zap.String("algorithm", cfg.Algorithm.String()),
		zap.Int("quantum", cfg.Quantum),
		zap.String("configPath", opts.configPath),
	)

	source, err := deps.newSource(cfg)
	if err != nil {
		logger.Error("failed to construct workload source", zap.Error(err))

		return exitCodeParseError
	}

	logSink, err := deps.newSink(cfg.OutputDir)
	if err != nil {
		logger.Error("failed to open output sink", zap.Error(err))

		return exitCodeRuntimeError
	}

	defer func() {
		if cerr := logSink.Close(); cerr != nil {
			logger.Error("failed to close output sink", zap.Error(cerr))
		}
	}()

	exporter := httpmetrics.NewExporter()

	engine, err := sched.New(cfg.Algorithm, cfg.Quantum, source, logSink, sched.WithLogger(logger), sched.WithRecorder(exporter))
	if err != nil {
		logger.Error("failed to construct engine", zap.Error(err))

		return exitCodeParseError
	}

	if cfg.MetricsBind != "" {
		deps.serveMetrics(cfg.MetricsBind, exporter, httpstatus.NewHandler(engine))
	}

	metrics, err := engine.Run()
	if err != nil {
		logger.Error("scheduler run failed", zap.Error(err))

		return exitCodeRuntimeError
	}

	logger.Info("scheduler run finished",
		zap.Float64("cpuUtilization", metrics.CPUUtilization),
		zap.Float64("avgWTA", metrics.AvgWTA),
		zap.Float64("avgWaiting", metrics.AvgWaiting),
		zap.Float64("stdWTA", metrics.StdWTA),
	)

	return exitCodeSuccess
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "" {
		level = defaultLogLevel
	}

	cfg := zap.NewProductionConfig()

	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidLogLevel, err)
	}

	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.CallerKey = "caller"

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}

	return logger, nil
}

type cliOptions struct {
	configPath string
}

func parseArgs(args []string) (cliOptions, runtimeConfig, error) {
	var (
		opts        cliOptions
		algorithm   int
		quantum     int
		workloadArg string
		remoteArg   string
		outputArg   string
		metricsArg  string
		logLevelArg string
	)

	flagSet := flag.NewFlagSet("cpusched", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	flagSet.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to the scheduler YAML config file")
	flagSet.IntVar(&algorithm, "algorithm", 0, "Scheduling algorithm: 1=HPF, 2=SRTN, 3=RR")
	flagSet.IntVar(&quantum, "quantum", 0, "Round Robin quantum (required iff algorithm=3)")
	flagSet.StringVar(&workloadArg, "workload", "", "Path to the workload input file")
	flagSet.StringVar(&remoteArg, "remote-workload", "", "URL of a remote workload generator")
	flagSet.StringVar(&outputArg, "output", "", "Directory to write scheduler.log and scheduler.perf into")
	flagSet.StringVar(&metricsArg, "metrics-addr", "", "Address to serve live introspection on (e.g. :9090)")
	flagSet.StringVar(&logLevelArg, "log-level", "", "Structured log level (debug, info, warn, error)")

	if err := flagSet.Parse(args); err != nil {
		return cliOptions{}, runtimeConfig{}, fmt.Errorf("parse CLI arguments: %w", err)
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return cliOptions{}, runtimeConfig{}, err
	}

	if algorithm != 0 {
		cfg.Algorithm = sched.Kind(algorithm)
	}

	if quantum != 0 {
		cfg.Quantum = quantum
	}

	if workloadArg != "" {
		cfg.WorkloadPath = workloadArg
	}

	if remoteArg != "" {
		cfg.RemoteURL = remoteArg
	}

	if outputArg != "" {
		cfg.OutputDir = outputArg
	}

	if metricsArg != "" {
		cfg.MetricsBind = metricsArg
	}

	if logLevelArg != "" {
		cfg.LogLevel = logLevelArg
	}

	return opts, cfg, nil
}

func defaultSourceFactory(cfg runtimeConfig) (sched.Source, error) {
	if cfg.WorkloadPath != "" {
		src, err := workload.NewFileSource(cfg.WorkloadPath)
		if err != nil {
			return nil, err
		}

		return src, nil
	}

	return workload.NewRemoteSource(nil, cfg.RemoteURL), nil
}

func defaultServeMetrics(addr string, exp *httpmetrics.Exporter, status *httpstatus.Handler) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", exp)
	mux.Handle("/healthz", status)

	go func() {
		_ = http.ListenAndServe(addr, mux) //nolint:gosec // simulator introspection surface, not internet-facing
	}()
}

var errInvalidLogLevel = fmt.Errorf("invalid log level")

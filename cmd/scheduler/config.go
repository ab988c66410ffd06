package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mohamed-moneim/cpusched/pkg/sched"
)

const (
	envWorkloadPath = "SCHED_WORKLOAD_PATH"
	envRemoteURL    = "SCHED_REMOTE_WORKLOAD_URL"
	envAlgorithm    = "SCHED_ALGORITHM"
	envQuantum      = "SCHED_QUANTUM"
	envOutputDir    = "SCHED_OUTPUT_DIR"
	envMetricsBind  = "SCHED_METRICS_ADDR"
	envLogLevel     = "SCHED_LOG_LEVEL"

	defaultOutputDir   = "."
	defaultLogLevel    = "info"
	defaultMetricsBind = ""
)

// ErrConfig wraps every configuration validation failure: a missing or
// invalid algorithm id, RR selected without a positive quantum, or
// neither a workload path nor a remote workload URL set. Config errors
// fail fast at startup.
var ErrConfig = errors.New("config: invalid configuration")

type runtimeConfig struct {
	WorkloadPath string
	RemoteURL    string
	Algorithm    sched.Kind
	Quantum      int
	OutputDir    string
	MetricsBind  string
	LogLevel     string
}

type fileConfig struct {
	WorkloadPath *string `yaml:"workloadPath"`
	RemoteURL    *string `yaml:"remoteWorkloadUrl"`
	Algorithm    *int    `yaml:"algorithm"`
	Quantum      *int    `yaml:"quantum"`
	OutputDir    *string `yaml:"outputDir"`
	MetricsBind  *string `yaml:"metricsAddr"`
	LogLevel     *string `yaml:"logLevel"`
}

func defaultRuntimeConfig() runtimeConfig {
	return runtimeConfig{
		OutputDir:   defaultOutputDir,
		MetricsBind: defaultMetricsBind,
		LogLevel:    defaultLogLevel,
	}
}

// loadConfig layers a YAML file (if path is non-empty and exists) over
// the built-in defaults, then applies environment variable overrides.
// It does not validate the result — validate separately once CLI flags
// have also been layered in, so the error messages name the flag the
// user actually has a chance to fix.
func loadConfig(path string) (runtimeConfig, error) {
	cfg := defaultRuntimeConfig()

	trimmed := strings.TrimSpace(path)
	if trimmed != "" {
		data, err := os.ReadFile(trimmed)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return runtimeConfig{}, fmt.Errorf("read config file %q: %w", trimmed, err)
			}
		} else {
			var fileCfg fileConfig

			if err := yaml.Unmarshal(data, &fileCfg); err != nil {
				return runtimeConfig{}, fmt.Errorf("decode config file %q: %w", trimmed, err)
			}

			mergeFileConfig(&cfg, fileCfg)
		}
	}

	applyEnvOverrides(&cfg)

	return cfg, nil
}

func mergeFileConfig(dst *runtimeConfig, src fileConfig) {
	assignString(&dst.WorkloadPath, src.WorkloadPath)
	assignString(&dst.RemoteURL, src.RemoteURL)
	assignInt(&dst.Quantum, src.Quantum)
	assignString(&dst.OutputDir, src.OutputDir)
	assignString(&dst.MetricsBind, src.MetricsBind)
	assignString(&dst.LogLevel, src.LogLevel)

	if src.Algorithm != nil {
		dst.Algorithm = sched.Kind(*src.Algorithm)
	}
}

func applyEnvOverrides(cfg *runtimeConfig) {
	cfg.WorkloadPath = envString(envWorkloadPath, cfg.WorkloadPath)
	cfg.RemoteURL = envString(envRemoteURL, cfg.RemoteURL)
	cfg.OutputDir = envString(envOutputDir, cfg.OutputDir)
	cfg.MetricsBind = envString(envMetricsBind, cfg.MetricsBind)
	cfg.LogLevel = envString(envLogLevel, cfg.LogLevel)
	cfg.Quantum = envInt(envQuantum, cfg.Quantum)

	if value, ok := lookupEnv(envAlgorithm); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			cfg.Algorithm = sched.Kind(n)
		}
	}
}

// validate checks the fully-layered configuration against the
// scheduler's startup requirements.
func (cfg runtimeConfig) validate() error {
	switch cfg.Algorithm {
	case sched.HPF, sched.SRTN, sched.RR:
	default:
		return fmt.Errorf("%w: unknown algorithm %d (want 1=HPF, 2=SRTN, 3=RR)", ErrConfig, int(cfg.Algorithm))
	}

	if cfg.Algorithm == sched.RR && cfg.Quantum <= 0 {
		return fmt.Errorf("%w: RR requires a positive quantum, got %d", ErrConfig, cfg.Quantum)
	}

	if cfg.WorkloadPath == "" && cfg.RemoteURL == "" {
		return fmt.Errorf("%w: one of workload path or remote workload URL is required", ErrConfig)
	}

	return nil
}

var lookupEnv = os.LookupEnv //nolint:gochecknoglobals // overridden in tests

func assignString(target *string, value *string) {
	if value != nil {
		*target = strings.TrimSpace(*value)
	}
}

func assignInt(target *int, value *int) {
	if value != nil {
		*target = *value
	}
}

func envString(key, fallback string) string {
	value, ok := lookupEnv(key)
	if !ok {
		return fallback
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}

	return trimmed
}

func envInt(key string, fallback int) int {
	value, ok := lookupEnv(key)
	if !ok {
		return fallback
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return fallback
	}

	return parsed
}

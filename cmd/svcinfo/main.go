// Package main is the entry point for the svcinfo service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/vyrodovalexey/svcinfo/internal/config"
	"github.com/vyrodovalexey/svcinfo/internal/observability"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// cliFlags holds command line flags.
type cliFlags struct {
	configPath  string
	logLevel    string
	logFormat   string
	address     string
	printConfig bool
	showVersion bool
}

func main() {
	flags, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	if flags.showVersion {
		printVersion(os.Stdout)
		return
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if flags.printConfig {
		if err := printConfig(os.Stdout, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "failed to print configuration: %v\n", err)
			os.Exit(1)
		}
		return
	}

	logger := initLogger(cfg)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, flags, logger, os.Stderr); err != nil {
		fatalWithSync(logger, "svcinfo failed", observability.Error(err))
	}
}

// parseFlags parses command line flags. Environment variables provide
// the defaults.
func parseFlags(args []string, output io.Writer) (cliFlags, error) {
	fs := flag.NewFlagSet("svcinfo", flag.ContinueOnError)
	fs.SetOutput(output)

	var flags cliFlags
	fs.StringVar(&flags.configPath, "config", getEnvOrDefault(envConfigPath, ""),
		"Path to configuration file (built-in defaults when empty)")
	fs.StringVar(&flags.logLevel, "log-level", getEnvOrDefault(envLogLevel, ""),
		"Log level (debug, info, warn, error)")
	fs.StringVar(&flags.logFormat, "log-format", getEnvOrDefault(envLogFormat, ""),
		"Log format (json, console)")
	fs.StringVar(&flags.address, "address", getEnvOrDefault(envAddress, ""),
		"Listen address (host:port)")
	fs.BoolVar(&flags.printConfig, "print-config", false, "Print the effective configuration and exit")
	fs.BoolVar(&flags.showVersion, "version", false, "Show version information")

	if err := fs.Parse(args); err != nil {
		return cliFlags{}, err
	}
	return flags, nil
}

// printVersion prints version information.
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "svcinfo version %s\n", version)
	fmt.Fprintf(w, "  Build time: %s\n", buildTime)
	fmt.Fprintf(w, "  Git commit: %s\n", gitCommit)
}

// loadConfig loads the configuration file and applies flag overrides.
func loadConfig(flags cliFlags) (*config.Config, error) {
	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}

	if !applyFlagOverrides(cfg, flags) {
		return cfg, nil
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlagOverrides copies non-empty flags into cfg and reports whether
// anything changed.
func applyFlagOverrides(cfg *config.Config, flags cliFlags) bool {
	changed := false
	set := func(dst *string, v string) {
		if v != "" && *dst != v {
			*dst = v
			changed = true
		}
	}

	set(&cfg.Spec.Server.Address, flags.address)
	set(&cfg.Spec.Observability.Logging.Level, flags.logLevel)
	set(&cfg.Spec.Observability.Logging.Format, flags.logFormat)

	return changed
}

// printConfig writes the effective configuration as YAML.
func printConfig(w io.Writer, cfg *config.Config) error {
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// initLogger initializes the logger from the logging configuration.
func initLogger(cfg *config.Config) observability.Logger {
	logging := cfg.Spec.Observability.Logging
	logger, err := observability.NewLogger(observability.LogConfig{
		Level:   logging.Level,
		Format:  logging.Format,
		Output:  logging.Output,
		Service: cfg.Metadata.Name,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	return logger
}

// fatalWithSync flushes the logger before exiting.
func fatalWithSync(logger observability.Logger, msg string, fields ...observability.Field) {
	_ = logger.Sync()
	logger.Fatal(msg, fields...)
}

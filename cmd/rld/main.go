package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"rld/internal/config"
	"rld/internal/logx"
	"rld/internal/registry"
	"rld/internal/service"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rld:", err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:           "rld",
		Short:         "Structured observation packing for policy attribution",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	defaultConfig := os.Getenv("RLD_CONFIG")
	if defaultConfig == "" {
		defaultConfig = "rld.yaml"
	}
	root.PersistentFlags().StringVarP(&f.configPath, "config", "c", defaultConfig, "config file (.yaml, .json or .toml)")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&f.logFormat, "log-format", "", "log format override (console, json)")

	root.AddCommand(
		newServeCmd(f),
		newSpaceCmd(f),
		newSizeCmd(f),
		newPackCmd(f),
		newUnpackCmd(f),
		newForwardCmd(f),
		newBaselineCmd(f),
	)
	return root
}

// loadConfig reads, defaults and validates the config, applying flag overrides.
func (f *rootFlags) loadConfig() (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.logFormat != "" {
		cfg.LogFormat = f.logFormat
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadService builds the model registry and service from the config.
func (f *rootFlags) loadService(cmd *cobra.Command) (*service.Service, config.Config, zerolog.Logger, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, cfg, zerolog.Nop(), err
	}
	logger, err := logx.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, cfg, zerolog.Nop(), err
	}
	entries, err := registry.Build(cfg.Models)
	if err != nil {
		return nil, cfg, logger, fmt.Errorf("build models: %w", err)
	}
	svc := service.New(entries, service.WithDefaultModel(cfg.DefaultModel), service.WithLogger(logger))
	return svc, cfg, logger, nil
}

// splitCSV splits a comma-separated list, trimming blanks.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

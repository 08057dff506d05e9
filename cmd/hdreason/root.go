package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hyprcog/hdreason/pkg/hdreason/config"
)

// Global flags available to all subcommands.
var (
	configFile string
	logLevel   string
)

// NewRootCmd creates the root command for the hdreason CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hdreason",
		Short: "Neuro-symbolic reasoning engine over hyperdimensional vectors",
		Long: `hdreason learns facts and rules into a session, proves goals against
them, answers hole queries, and runs CSP/planning solves, dispatching every
comparison through a pluggable hyperdimensional strategy.`,
	}

	cmd.SetGlobalNormalizationFunc(normalizeFlagName)
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "session config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the config's logLevel (debug|info|warn|error)")

	cmd.AddCommand(newLearnCmd())
	cmd.AddCommand(newQueryCmd())
	cmd.AddCommand(newProveCmd())
	cmd.AddCommand(newSolveCmd())
	cmd.AddCommand(newReplCmd())
	cmd.AddCommand(newCoreCmd())

	return cmd
}

// normalizeFlagName lets every flag also be spelled with underscores
// (--log_level alongside --log-level), a common convenience for users
// copying flag names out of YAML/env-var configs.
func normalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// loadSessionConfig loads the config file named by --config, or the default
// config if no file was given, then applies a --log-level override.
func loadSessionConfig() (config.Session, error) {
	if configFile == "" {
		cfg := config.DefaultSessionConfig()
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		return cfg, nil
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return cfg, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

// newZapLogger builds a *zap.SugaredLogger at the level named by cfg.LogLevel,
// production-encoded the way the rest of the ambient stack expects.
func newZapLogger(level string) *zap.SugaredLogger {
	zcfg := zap.NewProductionConfig()
	var lvl zapcore.Level
	switch level {
	case "debug":
		lvl = zapcore.DebugLevel
	case "info":
		lvl = zapcore.InfoLevel
	case "error":
		lvl = zapcore.ErrorLevel
	default:
		lvl = zapcore.WarnLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

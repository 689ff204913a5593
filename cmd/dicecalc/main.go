// Command dicecalc evaluates spoken dice formulas from the command line.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/cory-johannsen/dicecalc/internal/config"
	"github.com/cory-johannsen/dicecalc/internal/dice"
	"github.com/cory-johannsen/dicecalc/internal/observability"
	"github.com/cory-johannsen/dicecalc/internal/pipeline"
	"github.com/cory-johannsen/dicecalc/internal/scripting"
)

// errFailed signals that at least one request failed and its diagnostic has
// already been printed.
var errFailed = errors.New("one or more requests failed")

var rootCmd = &cobra.Command{
	Use:           "dicecalc",
	Short:         "Spoken dice formula calculator",
	Long:          `dicecalc turns phrases like "3d8+1" or "два д 6 плюс 2" into min/max/average and a random roll`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(calcCmd)
	rootCmd.AddCommand(recognizeCmd)
	rootCmd.AddCommand(tokensCmd)

	rootCmd.PersistentFlags().String("config", "", "path to configuration file")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "dicecalc:", err)
		}
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func useColor(cmd *cobra.Command, f *os.File) bool {
	mode, _ := cmd.Root().PersistentFlags().GetString("color")
	return mode == "on" || (mode == "auto" && isTerminal(f))
}

// session bundles what a subcommand needs to evaluate phrases.
type session struct {
	logger   *zap.Logger
	pipeline *pipeline.Pipeline
	close    func()
}

// newSession builds the logger, calculator and optional script rewriter from
// the global flags and the per-command --seed / --script-dir flags.
func newSession(cmd *cobra.Command) (*session, error) {
	flags := cmd.Root().PersistentFlags()
	configPath, _ := flags.GetString("config")
	level, _ := flags.GetString("log-level")

	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := observability.NewCLILogger(level)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	src := dice.NewCryptoSource()
	if f := cmd.Flags().Lookup("seed"); f != nil && f.Changed {
		seed, err := cmd.Flags().GetUint64("seed")
		if err != nil {
			return nil, fmt.Errorf("failed to get seed flag: %w", err)
		}
		src = dice.NewSeededSource(seed)
	}
	calc := dice.NewCalculator(src, logger)

	scriptDir := cfg.Scripting.ScriptDir
	if f := cmd.Flags().Lookup("script-dir"); f != nil && f.Changed {
		scriptDir = f.Value.String()
	}

	s := &session{logger: logger, close: func() { _ = logger.Sync() }}
	var opts []pipeline.Option
	if scriptDir != "" {
		mgr := scripting.NewManager(calc, logger)
		if err := mgr.Load(scriptDir, cfg.Scripting.InstructionLimit); err != nil {
			return nil, fmt.Errorf("loading scripts from %s: %w", scriptDir, err)
		}
		s.close = func() {
			mgr.Close()
			_ = logger.Sync()
		}
		opts = append(opts, pipeline.WithRewriter(mgr))
	}
	s.pipeline = pipeline.New(calc, logger, opts...)
	return s, nil
}

// addEvalFlags registers the flags shared by commands that roll dice.
func addEvalFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "pretty", "output format (pretty|json|yaml)")
	cmd.Flags().Uint64("seed", 0, "seed the roller for reproducible results")
	cmd.Flags().String("script-dir", "", "directory of Lua rewrite scripts")
}

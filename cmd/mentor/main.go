package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/math-mentor/internal/config"
	"github.com/danielpatrickdp/math-mentor/internal/logging"
	"github.com/danielpatrickdp/math-mentor/internal/memory"
	"github.com/danielpatrickdp/math-mentor/internal/pipeline"
	"github.com/danielpatrickdp/math-mentor/internal/retrieval"
	"github.com/danielpatrickdp/math-mentor/internal/solver"
	"github.com/danielpatrickdp/math-mentor/internal/verifier"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// Set up by PersistentPreRunE for every command.
	cfg    *config.Config
	logger *zap.Logger
	store  *memory.Store
	mentor *pipeline.Pipeline
)

// #region root
var rootCmd = &cobra.Command{
	Use:   "mentor",
	Short: "Math mentor - parse, solve, verify and explain math problems",
	Long: `mentor runs a problem through normalization, parsing, routing and
context retrieval, then solves it symbolically, verifies the answer and
explains the steps. Ambiguous or doubtful results stop for human review.

Run without arguments to start the interactive session.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Log.Level = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		logger, err = logging.NewLogger(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			_ = store.Close()
		}
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd.Context(), os.Stdin, cmd.OutOrStdout())
	},
}

// setup opens the memory store and builds the pipeline from cfg.
func setup() error {
	docs, err := retrieval.LoadDocuments(cfg.DocsDir)
	if err != nil {
		return err
	}
	r, err := retrieval.NewRetriever(docs, cfg.RetrievalConfig(), logger)
	if err != nil {
		return err
	}
	store, err = memory.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open memory store: %w", err)
	}
	mentor, err = pipeline.New(pipeline.Options{
		Retriever: r,
		Solver:    solver.New(nil, logger),
		Verifier:  verifier.New(cfg.VerifierConfig(), nil, logger),
		Memory:    store,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	logger.Debug("mentor ready",
		zap.String("db", cfg.DBPath),
		zap.String("docs", cfg.DocsDir),
		zap.Int("documents", r.Len()))
	return nil
}

// #endregion root

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "mentor.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(solveCmd, parseCmd, retrieveCmd, serveCmd, historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Package main provides the theory CLI: analyze, model, walk-forward, and
// run snapshot commands against the historical game store.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/theory-engine/internal/config"
	"github.com/yourusername/theory-engine/internal/database"
	"github.com/yourusername/theory-engine/internal/engine"
	"github.com/yourusername/theory-engine/internal/gamestore"
	"github.com/yourusername/theory-engine/internal/logger"
	"github.com/yourusername/theory-engine/internal/models"
	"github.com/yourusername/theory-engine/internal/repository"
	"github.com/yourusername/theory-engine/internal/snapshot"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile  string
	requestFile string
	appLogger   *logrus.Logger
	cfg         *config.Config
	db          *database.DB
	eng         *engine.Engine
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	analyzeCmd.Flags().StringVarP(&requestFile, "request", "f", "", "Path to JSON request file")
	modelCmd.Flags().StringVarP(&requestFile, "request", "f", "", "Path to JSON request file")
	walkforwardCmd.Flags().StringVarP(&requestFile, "request", "f", "", "Path to JSON request file")

	featuresCmd.Flags().String("league", "", "League to list stat keys and features for")
	featuresCmd.Flags().String("stats", "", "Comma-separated raw stat keys")
	featuresCmd.Flags().Bool("rolling", true, "Include rolling-average features")
	featuresCmd.Flags().Bool("rest", true, "Include rest-day features")
	featuresCmd.Flags().Int("window", 0, "Rolling window in games")

	runsListCmd.Flags().Int("limit", 20, "Maximum snapshots to list")

	runsCmd.AddCommand(runsListCmd, runsGetCmd)
	rootCmd.AddCommand(featuresCmd, analyzeCmd, modelCmd, walkforwardCmd, runsCmd)
}

var rootCmd = &cobra.Command{
	Use:   "theory",
	Short: "Backtest and validate wagering theories against historical games",
	Long:  `Evaluates theory cohorts against league baselines, fits models over generated features, simulates triggered bets under exposure caps, and validates edge persistence walk-forward.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return setupDependencies(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	loaded, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(loaded, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(loaded); err != nil {
		return err
	}
	cfg = loaded
	appLogger = logger.NewLogger(cfg.App.LogLevel)
	return nil
}

func setupDependencies(ctx context.Context) error {
	var err error
	db, err = database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return err
	}

	store, err := gamestore.NewFromConfig(cfg.GameStore, repos, appLogger)
	if err != nil {
		return err
	}

	snapshots := snapshot.NewStore(repos.Run, appLogger)
	eng = engine.New(cfg, store, snapshots, appLogger)
	return nil
}

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "List the generated features for a league",
	RunE: func(cmd *cobra.Command, args []string) error {
		league, _ := cmd.Flags().GetString("league")
		stats, _ := cmd.Flags().GetString("stats")
		rolling, _ := cmd.Flags().GetBool("rolling")
		rest, _ := cmd.Flags().GetBool("rest")
		window, _ := cmd.Flags().GetInt("window")

		req := engine.GenerateFeaturesRequest{
			League: models.League(strings.ToUpper(league)),
			Features: engine.FeatureSpec{
				RawStatKeys:     splitStats(stats),
				IncludeRestDays: rest,
				IncludeRolling:  rolling,
				RollingWindow:   window,
			},
		}

		result, err := eng.GenerateFeatures(cmd.Context(), req)
		if err != nil {
			return err
		}
		printFeatures(result)
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Evaluate a theory cohort against its league baseline",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req engine.AnalyzeRequest
		if err := readRequest(requestFile, &req); err != nil {
			return err
		}
		result, err := eng.Analyze(cmd.Context(), req)
		if err != nil {
			return err
		}
		printAnalyze(result)
		return nil
	},
}

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Fit a model, simulate its triggers, and bootstrap the outcomes",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req engine.BuildModelRequest
		if err := readRequest(requestFile, &req); err != nil {
			return err
		}
		result, err := eng.BuildModel(cmd.Context(), req)
		if err != nil {
			return err
		}
		printBuildModel(result)
		return nil
	},
}

var walkforwardCmd = &cobra.Command{
	Use:   "walkforward",
	Short: "Validate edge persistence over rolling train/test windows",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req engine.WalkforwardRequest
		if err := readRequest(requestFile, &req); err != nil {
			return err
		}
		result, err := eng.RunWalkforward(cmd.Context(), req)
		if err != nil {
			return err
		}
		printWalkforward(result)
		return nil
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect persisted run snapshots",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent run snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := eng.ListRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}
		for _, run := range runs {
			fmt.Printf("%s  %-12s %-6s %s  %s\n",
				run.ID, run.Kind, run.League,
				run.CreatedAt.Format(time.RFC3339), run.ContentHash[:12])
		}
		return nil
	},
}

var runsGetCmd = &cobra.Command{
	Use:   "get <run-id>",
	Short: "Print one run snapshot as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid run id %q: %w", args[0], err)
		}
		run, err := eng.GetRun(cmd.Context(), id)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(run, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func readRequest(path string, v any) error {
	if path == "" {
		return fmt.Errorf("a request file is required, pass -f <request.json>")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read request file: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse request file: %w", err)
	}
	return nil
}

func splitStats(stats string) []string {
	if stats == "" {
		return nil
	}
	parts := strings.Split(stats, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			keys = append(keys, trimmed)
		}
	}
	return keys
}

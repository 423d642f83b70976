package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moznion/go-optional"
	"github.com/urfave/cli/v3"

	"github.com/Atypix/Smart100-sub002/internal/api"
	"github.com/Atypix/Smart100-sub002/internal/datasource"
	"github.com/Atypix/Smart100-sub002/internal/engine"
	"github.com/Atypix/Smart100-sub002/internal/logger"
	"github.com/Atypix/Smart100-sub002/internal/strategy"
	"github.com/Atypix/Smart100-sub002/internal/version"
)

// builtinStrategies returns one instance of every strategy shipped with the
// engine. The config's candidates list narrows which of them compete.
func builtinStrategies() []strategy.Strategy {
	return []strategy.Strategy{
		strategy.NewSMACrossover(),
		strategy.NewRSIReversion(),
		strategy.NewIchimokuCloud(),
	}
}

// runAction wires up the selection engine from CLI flags and runs it to
// completion, writing the report into the results folder.
func runAction(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	dataPath := cmd.String("data")
	resultsFolder := cmd.String("output")
	listenAddr := cmd.String("listen")

	configContent, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	selectionEngine := engine.NewSelectionEngine()
	if err := selectionEngine.Initialize(string(configContent)); err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}

	for _, strat := range builtinStrategies() {
		if err := selectionEngine.LoadStrategy(strat); err != nil {
			return fmt.Errorf("failed to load strategy %s: %w", strat.ID(), err)
		}
	}

	if err := selectionEngine.SetDataPath(dataPath); err != nil {
		return fmt.Errorf("failed to set data path: %w", err)
	}

	if err := selectionEngine.SetResultsFolder(resultsFolder); err != nil {
		return fmt.Errorf("failed to set results folder: %w", err)
	}

	l, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	source, err := datasource.NewDuckDBSource(":memory:", l)
	if err != nil {
		return fmt.Errorf("failed to create data source: %w", err)
	}
	defer source.Close()

	if err := selectionEngine.SetDataSource(source); err != nil {
		return fmt.Errorf("failed to set data source: %w", err)
	}

	// Optionally expose selection state and metrics while the run is active
	if listenAddr != "" {
		server := api.NewServer(selectionEngine, l)
		if err := server.Start(listenAddr); err != nil {
			return fmt.Errorf("failed to start API server: %w", err)
		}

		log.Printf("API server listening on %s", server.Address())

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := server.Stop(shutdownCtx); err != nil {
				log.Printf("Warning: failed to stop API server: %v", err)
			}
		}()
	}

	log.Printf("Starting selection run over %s...", dataPath)

	if err := selectionEngine.Run(ctx, optional.None[engine.OnProcessDataCallback]()); err != nil {
		return fmt.Errorf("selection run failed: %w", err)
	}

	log.Printf("Run complete. Report written to %s/%s", resultsFolder, engine.ReportFileName)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "engine",
		Usage:   "Run per-bar strategy selection over historical market data",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a selection over a market data file and write a report",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to the engine YAML configuration",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "Path to the market data file (parquet or CSV)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Results folder the run report is written to",
						Value:    "results",
						Required: false,
					},
					&cli.StringFlag{
						Name:     "listen",
						Aliases:  []string{"l"},
						Usage:    "Address for the HTTP API (e.g. :8080). Disabled when empty.",
						Required: false,
					},
				},
				Action: runAction,
			},
		},
	}

	// SIGINT/SIGTERM cancel the run between bars
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/Atypix/Smart100-sub002/pkg/marketdata"
)

// resolveDownload builds the client configuration and download parameters,
// either from a JSON config file (--config) or from the individual flags.
func resolveDownload(cmd *cli.Command) (marketdata.ClientConfig, marketdata.DownloadParams, error) {
	providerFlag := cmd.String("provider")
	dataPath := cmd.String("data")

	if configPath := cmd.String("config"); configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return marketdata.ClientConfig{}, marketdata.DownloadParams{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
		}

		switch marketdata.ProviderType(providerFlag) {
		case marketdata.ProviderBinance:
			config, err := marketdata.ParseBinanceConfig(string(content))
			if err != nil {
				return marketdata.ClientConfig{}, marketdata.DownloadParams{}, err
			}

			params, err := config.ToDownloadParams()
			if err != nil {
				return marketdata.ClientConfig{}, marketdata.DownloadParams{}, err
			}

			return config.ToClientConfig(dataPath), params, nil
		case marketdata.ProviderPolygon:
			config, err := marketdata.ParsePolygonConfig(string(content))
			if err != nil {
				return marketdata.ClientConfig{}, marketdata.DownloadParams{}, err
			}

			params, err := config.ToDownloadParams()
			if err != nil {
				return marketdata.ClientConfig{}, marketdata.DownloadParams{}, err
			}

			return config.ToClientConfig(dataPath), params, nil
		default:
			return marketdata.ClientConfig{}, marketdata.DownloadParams{}, fmt.Errorf("unknown provider: %s", providerFlag)
		}
	}

	clientConfig := marketdata.ClientConfig{
		ProviderType:  marketdata.ProviderType(providerFlag),
		WriterType:    marketdata.WriterType(cmd.String("writer")),
		DataPath:      dataPath,
		PolygonApiKey: os.Getenv("POLYGON_API_KEY"),
	}

	interval := marketdata.Timespan(cmd.String("interval"))
	downloadParams := marketdata.DownloadParams{
		Ticker:     cmd.String("ticker"),
		StartDate:  cmd.Timestamp("start"),
		EndDate:    cmd.Timestamp("end"),
		Multiplier: interval.Multiplier(),
		Timespan:   interval.Timespan(),
	}

	return clientConfig, downloadParams, nil
}

// downloadAction is the core logic executed by the CLI command.
// It parses arguments, sets up the market data client, and starts the download process.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	clientConfig, downloadParams, err := resolveDownload(cmd)
	if err != nil {
		return err
	}

	// Providers report progress per record, so only log whole-percent changes
	lastPercent := -1
	onProgress := func(current float64, total float64, message string) {
		if total <= 0 {
			return
		}

		percent := int(current / total * 100)
		if percent != lastPercent {
			lastPercent = percent
			log.Printf("%s: %d%%", message, percent)
		}
	}

	// Create market data client
	client, err := marketdata.NewClient(clientConfig, onProgress)
	if err != nil {
		return fmt.Errorf("failed to create market data client: %w", err)
	}

	// Execute download
	log.Printf("Starting download for %s from %s to %s using %s provider...",
		downloadParams.Ticker, downloadParams.StartDate.Format("2006-01-02"), downloadParams.EndDate.Format("2006-01-02"), clientConfig.ProviderType)

	err = client.Download(ctx, downloadParams)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	log.Println("Download completed successfully.")
	return nil
}

func main() {
	// Define the CLI application
	cmd := &cli.Command{
		Name:  "market",
		Usage: "Download historical market data",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "ticker",
				Aliases:  []string{"t"},
				Usage:    "Ticker symbol (e.g. SPY, BTCUSDT)",
				Required: false,
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format (or other RFC3339 compatible)",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
				Required: false,
			},
			&cli.TimestampFlag{
				Name:     "end",
				Aliases:  []string{"e"},
				Usage:    "End date in `YYYY-MM-DD` format (or other RFC3339 compatible). Defaults to today.",
				Value:    time.Now(), // Default to today
				Required: false,      // Has a default value
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.StringFlag{
				Name:     "interval",
				Aliases:  []string{"i"},
				Usage:    "Bar interval (e.g. 1m, 5m, 1h, 1d)",
				Value:    string(marketdata.TimespanOneMinute),
				Required: false,
			},
			&cli.StringFlag{
				Name:     "provider",
				Aliases:  []string{"p"},
				Usage:    fmt.Sprintf("Data provider to use (e.g., %s, %s)", marketdata.ProviderPolygon, marketdata.ProviderBinance),
				Value:    string(marketdata.ProviderPolygon), // Default provider
				Required: false,
			},
			&cli.StringFlag{
				Name:     "writer",
				Aliases:  []string{"w"},
				Usage:    fmt.Sprintf("Data writer format (e.g., %s)", marketdata.WriterDuckDB),
				Value:    string(marketdata.WriterDuckDB), // Default writer
				Required: false,
			},
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Path to the data output directory",
				Value:    "data", // Default data directory
				Required: false,
			},
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to a JSON download config. Replaces the ticker, start, end and interval flags.",
				Required: false,
			},
		},
		Action: downloadAction, // Assign the action function
	}

	// Ctrl+C aborts the download and removes any empty output file
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run the CLI application
	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

package provider

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/schollz/progressbar/v3"

	"github.com/Atypix/Smart100-sub002/internal/types"
	"github.com/Atypix/Smart100-sub002/pkg/errors"
	"github.com/Atypix/Smart100-sub002/pkg/marketdata/writer"
)

// PolygonAggsIterator abstracts the paginated aggregates iterator of the Polygon SDK.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient abstracts the Polygon SDK client so downloads can be
// exercised without network access.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

// polygonClientWrapper adapts *polygon.Client to PolygonAPIClient.
type polygonClientWrapper struct {
	client *polygon.Client
}

func (w *polygonClientWrapper) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return w.client.ListAggs(ctx, params, options...)
}

type PolygonClient struct {
	apiClient PolygonAPIClient
	writer    writer.MarketDataWriter
}

func NewPolygonClient(apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("apiKey is required")
	}

	client := polygon.New(apiKey)

	return &PolygonClient{
		apiClient: &polygonClientWrapper{client: client},
		writer:    nil,
	}, nil
}

// NewPolygonClientWithAPI creates a PolygonClient backed by a custom API client.
func NewPolygonClientWithAPI(apiClient PolygonAPIClient) *PolygonClient {
	return &PolygonClient{
		apiClient: apiClient,
		writer:    nil,
	}
}

func (c *PolygonClient) ConfigWriter(w writer.MarketDataWriter) {
	c.writer = w
}

func (c *PolygonClient) Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, multiplier int, timespan models.Timespan, onProgress OnDownloadProgress) (path string, err error) {
	if c.writer == nil {
		return "", fmt.Errorf("no writer configured for PolygonClient. Call ConfigWriter first")
	}

	err = c.writer.Initialize()
	if err != nil {
		return "", fmt.Errorf("failed to initialize writer: %w", err)
	}

	defer func() {
		if cerr := c.writer.Close(); cerr != nil {
			if err == nil {
				err = fmt.Errorf("error closing writer: %w", cerr)
			} else {
				log.Printf("Error closing writer after another error: %v", cerr)
			}
		}
	}()

	totalIterations := int(endDate.Sub(startDate).Hours()/24) + 1

	bar := progressbar.NewOptions(totalIterations, progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", ticker)), progressbar.OptionShowCount())

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: multiplier,
		Timespan:   timespan,
		From:       models.Millis(startDate),
		To:         models.Millis(endDate),
	}.WithLimit(50000)

	aggs := c.apiClient.ListAggs(ctx, params)

	// Progress is derived from bar timestamps relative to the requested window
	totalMillis := float64(endDate.Sub(startDate).Milliseconds())
	processedCount := 0

	for aggs.Next() {
		if ctxErr := ctx.Err(); ctxErr != nil {
			c.cleanupOutputFile(processedCount)

			return "", fmt.Errorf("download cancelled: %w", ctxErr)
		}

		agg := aggs.Item()
		marketData := types.MarketData{
			Id:     "",
			Symbol: ticker,
			Time:   time.Time(agg.Timestamp),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		}

		err = c.writer.Write(marketData)
		if err != nil {
			c.cleanupOutputFile(processedCount)

			return "", fmt.Errorf("failed to write data: %w", err)
		}

		processedCount++
		currentTime := time.Time(agg.Timestamp)

		if onProgress != nil {
			elapsedMillis := float64(currentTime.Sub(startDate).Milliseconds())
			if elapsedMillis > totalMillis {
				elapsedMillis = totalMillis
			}

			onProgress(elapsedMillis, totalMillis, fmt.Sprintf("Downloading %s", ticker))
		}

		if processedCount%1000 == 0 {
			daysElapsed := int(currentTime.Sub(startDate).Hours() / 24)
			bar.Set(daysElapsed)
		}
	}

	if aggs.Err() != nil {
		c.cleanupOutputFile(processedCount)

		return "", errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, aggs.Err(), "error iterating polygon aggregates")
	}

	bar.Finish()
	log.Printf("Finished downloading %d data points for %s.", processedCount, ticker)

	outputPath, err := c.writer.Finalize()
	if err != nil {
		return "", fmt.Errorf("failed to finalize writer: %w", err)
	}

	return outputPath, nil
}

// cleanupOutputFile removes the output file when a download fails before any rows were written.
func (c *PolygonClient) cleanupOutputFile(processedCount int) {
	if processedCount > 0 {
		return
	}

	outputPath := c.writer.GetOutputPath()
	if outputPath == "" {
		return
	}

	if removeErr := os.Remove(outputPath); removeErr != nil && !os.IsNotExist(removeErr) {
		log.Printf("Warning: failed to remove incomplete output file %s: %v", outputPath, removeErr)
	}
}

package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/Atypix/Smart100-sub002/internal/types"
	"github.com/Atypix/Smart100-sub002/pkg/errors"
	"github.com/Atypix/Smart100-sub002/pkg/marketdata/writer"
)

// BinanceKlinesService abstracts the chainable klines request builder of the Binance SDK.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	StartTime(startTime int64) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinanceAPIClient abstracts the Binance SDK client so downloads can be
// exercised without network access.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

// binanceClientWrapper adapts *binance.Client to BinanceAPIClient.
type binanceClientWrapper struct {
	client *binance.Client
}

func (w *binanceClientWrapper) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesServiceWrapper{service: w.client.NewKlinesService()}
}

// binanceKlinesServiceWrapper adapts *binance.KlinesService to BinanceKlinesService.
type binanceKlinesServiceWrapper struct {
	service *binance.KlinesService
}

func (w *binanceKlinesServiceWrapper) Symbol(symbol string) BinanceKlinesService {
	w.service.Symbol(symbol)

	return w
}

func (w *binanceKlinesServiceWrapper) Interval(interval string) BinanceKlinesService {
	w.service.Interval(interval)

	return w
}

func (w *binanceKlinesServiceWrapper) StartTime(startTime int64) BinanceKlinesService {
	w.service.StartTime(startTime)

	return w
}

func (w *binanceKlinesServiceWrapper) EndTime(endTime int64) BinanceKlinesService {
	w.service.EndTime(endTime)

	return w
}

func (w *binanceKlinesServiceWrapper) Do(ctx context.Context) ([]*binance.Kline, error) {
	return w.service.Do(ctx)
}

type BinanceClient struct {
	apiClient BinanceAPIClient
	writer    writer.MarketDataWriter
}

func NewBinanceClient() (Provider, error) {
	client := binance.NewClient("", "")

	return &BinanceClient{
		apiClient: &binanceClientWrapper{client: client},
		writer:    nil,
	}, nil
}

// NewBinanceClientWithAPI creates a BinanceClient backed by a custom API client.
func NewBinanceClientWithAPI(apiClient BinanceAPIClient) *BinanceClient {
	return &BinanceClient{
		apiClient: apiClient,
		writer:    nil,
	}
}

func (c *BinanceClient) ConfigWriter(w writer.MarketDataWriter) {
	c.writer = w
}

// Download downloads the historical klines data for the given ticker and date range from Binance.
// It converts the binance kline format to our internal MarketData format and writes it using the configured writer.
func (c *BinanceClient) Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, multiplier int, timespan models.Timespan, onProgress OnDownloadProgress) (path string, err error) {
	interval, err := convertTimespanToBinanceInterval(timespan, multiplier)
	if err != nil {
		return "", fmt.Errorf("failed to convert timespan to Binance interval: %w", err)
	}

	if c.writer == nil {
		return "", fmt.Errorf("writer is not configured")
	}

	err = c.writer.Initialize()
	if err != nil {
		return "", fmt.Errorf("failed to initialize writer: %w", err)
	}

	// Binance API uses milliseconds for timestamps
	startTimeMillis := startDate.UnixMilli()
	endTimeMillis := endDate.UnixMilli()

	// Use pagination to handle Binance API limits (max 500 data points per request)
	// Keep track of the last data point time to use as start time for next request
	currentStartTime := startTimeMillis

	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("download cancelled: %w", ctxErr)
		}

		klines, err := c.apiClient.NewKlinesService().
			Symbol(ticker).
			Interval(interval).
			StartTime(currentStartTime).
			EndTime(endTimeMillis).
			Do(ctx)
		if err != nil {
			// Attempt to finalize/close even if fetch fails
			_, finalizeErr := c.writer.Finalize()
			if finalizeErr != nil {
				return "", errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch klines from Binance; also failed to finalize writer: %v", finalizeErr)
			}

			return "", errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch klines from Binance")
		}

		// Progress is reported relative to the requested window, not as raw timestamps
		if onProgress != nil {
			onProgress(float64(currentStartTime-startTimeMillis), float64(endTimeMillis-startTimeMillis), fmt.Sprintf("Downloading %s klines from Binance", ticker))
		}

		// Less than a full page means this is the last page
		if len(klines) < 500 {
			if err := processKlines(c.writer, ticker, klines); err != nil {
				_, finalizeErr := c.writer.Finalize()
				if finalizeErr != nil {
					return "", fmt.Errorf("failed to process klines: %w; also failed to finalize writer: %v", err, finalizeErr)
				}

				return "", fmt.Errorf("failed to process klines: %w", err)
			}

			break
		}

		// Process current page of klines
		if err := processKlines(c.writer, ticker, klines); err != nil {
			_, finalizeErr := c.writer.Finalize()
			if finalizeErr != nil {
				return "", fmt.Errorf("failed to process klines: %w; also failed to finalize writer: %v", err, finalizeErr)
			}

			return "", fmt.Errorf("failed to process klines: %w", err)
		}

		// Update start time for next request
		// Use the close time of the last kline + 1ms to avoid duplicates
		lastKline := klines[len(klines)-1]
		currentStartTime = lastKline.CloseTime + 1

		// Break if we've reached or exceeded the end time
		if currentStartTime >= endTimeMillis {
			break
		}
	}

	// Finalize the writing process (e.g., save file, commit transaction)
	outputPath, err := c.writer.Finalize()
	if err != nil {
		return "", fmt.Errorf("failed to finalize writer: %w", err)
	}

	return outputPath, nil
}

// processKlines converts Binance kline data to our internal MarketData format and writes it.
// Malformed price or volume strings are written as zero rather than aborting the download.
func processKlines(writer writer.MarketDataWriter, ticker string, klines []*binance.Kline) error {
	for _, k := range klines {
		open, _ := strconv.ParseFloat(k.Open, 64)
		high, _ := strconv.ParseFloat(k.High, 64)
		low, _ := strconv.ParseFloat(k.Low, 64)
		closePrice, _ := strconv.ParseFloat(k.Close, 64)
		volume, _ := strconv.ParseFloat(k.Volume, 64)

		marketData := types.MarketData{
			Id:     "",
			Symbol: ticker,
			Time:   time.UnixMilli(k.OpenTime), // OpenTime is the timestamp of the bar
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		}

		if err := writer.Write(marketData); err != nil {
			return errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to write market data")
		}
	}

	return nil
}

// convertTimespanToBinanceInterval converts the polygon timespan and multiplier to a Binance interval string.
// Binance intervals: 1m, 3m, 5m, 15m, 30m, 1h, 2h, 4h, 6h, 8h, 12h, 1d, 3d, 1w, 1M
// Ref: https://binance-docs.github.io/apidocs/spot/en/#kline-candlestick-data
func convertTimespanToBinanceInterval(timespan models.Timespan, multiplier int) (string, error) {
	switch timespan {
	case models.Minute:
		return fmt.Sprintf("%dm", multiplier), nil
	case models.Hour:
		return fmt.Sprintf("%dh", multiplier), nil
	case models.Day:
		return fmt.Sprintf("%dd", multiplier), nil
	case models.Week:
		if multiplier == 1 {
			return "1w", nil
		}

		return "", errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported weekly multiplier for Binance: %d", multiplier)
	case models.Month:
		if multiplier == 1 {
			return "1M", nil
		}

		return "", errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported monthly multiplier for Binance: %d", multiplier)
	default:
		return "", errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported timespan for Binance: %s", timespan)
	}
}

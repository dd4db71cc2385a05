// Package datagov fetches live car park availability from the government
// transport feed and parses it incrementally.
package datagov

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/carpark-service/internal/domain"
	"github.com/carpark-service/internal/domain/repository"
	"go.uber.org/zap"
)

const apiKeyHeader = "X-Api-Key"

type availabilityClient struct {
	httpClient *http.Client
	feedURL    string
	apiKey     string
	logger     *zap.Logger
}

// NewAvailabilityClient builds the live feed client. The timeout is the hard
// ceiling for the whole fetch; past it the run fails cleanly.
func NewAvailabilityClient(feedURL, apiKey string, timeout time.Duration, logger *zap.Logger) repository.AvailabilitySource {
	return &availabilityClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		feedURL: feedURL,
		apiKey:  apiKey,
		logger:  logger,
	}
}

// StreamAvailability fetches the feed and walks the response token by token,
// emitting one sample per carpark_data item. The payload is never decoded into
// a generic object graph, so peak memory stays bounded regardless of feed size.
func (c *availabilityClient) StreamAvailability(ctx context.Context, fn func(sample domain.AvailabilitySample) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	c.logger.Info("Fetching availability feed", zap.String("url", c.feedURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Availability feed request failed", zap.Error(err))
		return fmt.Errorf("availability feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Availability feed returned error", zap.Int("status_code", resp.StatusCode))
		return fmt.Errorf("availability feed error: status %d", resp.StatusCode)
	}

	count, err := c.streamCarParkData(json.NewDecoder(resp.Body), fn)
	if err != nil {
		return err
	}

	c.logger.Info("Availability feed processed", zap.Int("samples", count))
	return nil
}

// errNoCarParkData reports a payload that closes without the expected array.
var errNoCarParkData = errors.New("availability payload has no carpark_data array")

// streamCarParkData advances the decoder to the carpark_data array and parses
// its items one at a time.
func (c *availabilityClient) streamCarParkData(dec *json.Decoder, fn func(sample domain.AvailabilitySample) error) (int, error) {
	if err := seekCarParkData(dec); err != nil {
		return 0, err
	}

	// Opening bracket of the array.
	tok, err := dec.Token()
	if err != nil {
		return 0, fmt.Errorf("parse availability payload: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return 0, fmt.Errorf("unexpected carpark_data shape: %v", tok)
	}

	count := 0
	for dec.More() {
		var item carParkItem
		if err := dec.Decode(&item); err != nil {
			return count, fmt.Errorf("parse carpark_data item: %w", err)
		}

		sample, ok := item.toSample()
		if !ok {
			c.logger.Warn("Skipping incomplete availability item",
				zap.String("car_park_no", item.CarParkNumber))
			continue
		}

		if err := fn(sample); err != nil {
			return count, err
		}
		count++
	}

	// Closing bracket; a truncated payload surfaces here.
	if _, err := dec.Token(); err != nil {
		return count, fmt.Errorf("parse availability payload: %w", err)
	}

	return count, nil
}

// seekCarParkData advances the decoder past the first "carpark_data" object
// key. Key position is tracked through nesting, so a string value that merely
// contains the text never matches.
func seekCarParkData(dec *json.Decoder) error {
	type frame struct {
		object  bool
		keyNext bool
	}
	var stack []frame

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return errNoCarParkData
		}
		if err != nil {
			return fmt.Errorf("parse availability payload: %w", err)
		}

		if delim, ok := tok.(json.Delim); ok {
			switch delim {
			case '{':
				stack = append(stack, frame{object: true, keyNext: true})
			case '[':
				stack = append(stack, frame{})
			case '}', ']':
				stack = stack[:len(stack)-1]
				if len(stack) > 0 && stack[len(stack)-1].object {
					stack[len(stack)-1].keyNext = true
				}
			}
			continue
		}

		if len(stack) == 0 || !stack[len(stack)-1].object {
			continue
		}

		top := &stack[len(stack)-1]
		if !top.keyNext {
			// Scalar value; the next token is a key again.
			top.keyNext = true
			continue
		}
		top.keyNext = false
		if name, ok := tok.(string); ok && name == "carpark_data" {
			return nil
		}
	}
}

// carParkItem mirrors one element of the feed's carpark_data array: a facility
// code plus a single-element carpark_info array. Lot counts arrive as strings.
type carParkItem struct {
	CarParkNumber string `json:"carpark_number"`
	CarParkInfo   []struct {
		TotalLots     string `json:"total_lots"`
		LotsAvailable string `json:"lots_available"`
		LotType       string `json:"lot_type"`
	} `json:"carpark_info"`
}

func (item carParkItem) toSample() (domain.AvailabilitySample, bool) {
	if item.CarParkNumber == "" || len(item.CarParkInfo) == 0 {
		return domain.AvailabilitySample{}, false
	}

	info := item.CarParkInfo[0]
	total, err := strconv.Atoi(info.TotalLots)
	if err != nil {
		return domain.AvailabilitySample{}, false
	}
	available, err := strconv.Atoi(info.LotsAvailable)
	if err != nil {
		return domain.AvailabilitySample{}, false
	}
	if info.LotType == "" {
		return domain.AvailabilitySample{}, false
	}

	return domain.AvailabilitySample{
		CarParkNo:     item.CarParkNumber,
		TotalLots:     total,
		AvailableLots: available,
		LotType:       info.LotType,
	}, true
}

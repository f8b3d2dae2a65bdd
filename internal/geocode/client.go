// Package geocode resolves postal codes to geographic metadata through
// the postcodes.io bulk lookup API.
package geocode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oneeighty/connect/internal/clock"
	"github.com/oneeighty/connect/internal/observability/metrics"
	"go.uber.org/zap"
)

// BatchSize is the provider's documented per-request maximum.
const BatchSize = 100

// Location is the enrichment attached to a postcode. The provider's
// admin_district and pfa fields stand in for city and region.
type Location struct {
	City   string
	Region string
}

type bulkRequest struct {
	Postcodes []string `json:"postcodes"`
}

type bulkResponse struct {
	Result []struct {
		Query  string `json:"query"`
		Result *struct {
			AdminDistrict string `json:"admin_district"`
			PFA           string `json:"pfa"`
		} `json:"result"`
	} `json:"result"`
}

type Client struct {
	baseURL string
	client  *http.Client
	clk     clock.Clock
	pause   time.Duration
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewClient(baseURL string, clk clock.Clock, pause time.Duration, log *zap.Logger, m *metrics.Metrics) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		clk:     clk,
		pause:   pause,
		log:     log,
		metrics: m,
	}
}

// Lookup resolves postcodes in batches of BatchSize. Empty and "N/A"
// inputs are skipped. A failed batch is logged and dropped; the partial
// mapping is still returned, so absent keys degrade to "N/A" downstream.
// Keys are the exact postcode strings echoed by the provider.
func (c *Client) Lookup(ctx context.Context, postcodes []string) map[string]Location {
	valid := make([]string, 0, len(postcodes))
	for _, postcode := range postcodes {
		if postcode == "" || postcode == "N/A" {
			continue
		}
		valid = append(valid, postcode)
	}

	locations := make(map[string]Location, len(valid))
	for start := 0; start < len(valid); start += BatchSize {
		end := start + BatchSize
		if end > len(valid) {
			end = len(valid)
		}

		if err := c.lookupBatch(ctx, valid[start:end], locations); err != nil {
			c.log.Warn("postcode batch lookup failed",
				zap.Int("batch_start", start),
				zap.Int("batch_size", end-start),
				zap.Error(err),
			)
			metrics.Pipeline().ObserveFetchError("postcodes")
			c.metrics.RecordGeocodeBatch(ctx, "error")
		} else {
			c.metrics.RecordGeocodeBatch(ctx, "ok")
		}
		c.clk.Sleep(ctx, c.pause)
	}

	return locations
}

func (c *Client) lookupBatch(ctx context.Context, batch []string, locations map[string]Location) error {
	payload, err := json.Marshal(bulkRequest{Postcodes: batch})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/postcodes", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("postcode lookup returned status %d", resp.StatusCode)
	}

	var decoded bulkResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return err
	}

	for _, entry := range decoded.Result {
		if entry.Result == nil {
			locations[entry.Query] = Location{City: "N/A", Region: "N/A"}
			continue
		}
		locations[entry.Query] = Location{
			City:   orNA(entry.Result.AdminDistrict),
			Region: orNA(entry.Result.PFA),
		}
	}
	return nil
}

func orNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}

package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"

	"github.com/oneeighty/connect/internal/clock"
	"github.com/oneeighty/connect/internal/observability/metrics"
)

func TestLookupBatchesOfOneHundred(t *testing.T) {
	var batchSizes []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Postcodes []string `json:"postcodes"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		batchSizes = append(batchSizes, len(req.Postcodes))

		resp := map[string]any{"result": []map[string]any{}}
		for _, postcode := range req.Postcodes {
			resp["result"] = append(resp["result"].([]map[string]any), map[string]any{
				"query": postcode,
				"result": map[string]any{
					"admin_district": "Sheffield",
					"pfa":            "South Yorkshire",
				},
			})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	clk := clock.NewFakeClock(time.Unix(0, 0))
	client := NewClient(srv.URL, clk, 500*time.Millisecond, zap.NewNop(), nil)

	postcodes := make([]string, 0, 250)
	for i := 0; i < 250; i++ {
		postcodes = append(postcodes, fmt.Sprintf("S%d 1AA", i))
	}

	locations := client.Lookup(context.Background(), postcodes)

	assert.Equal(t, []int{100, 100, 50}, batchSizes)
	assert.Len(t, locations, 250)
	assert.Equal(t, Location{City: "Sheffield", Region: "South Yorkshire"}, locations["S0 1AA"])
	assert.Len(t, clk.Sleeps(), 3)
}

func TestLookupSkipsEmptyAndNA(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		_ = json.NewEncoder(w).Encode(map[string]any{"result": []map[string]any{}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, clock.NewFakeClock(time.Unix(0, 0)), 0, zap.NewNop(), nil)
	locations := client.Lookup(context.Background(), []string{"", "N/A"})

	assert.Zero(t, requests)
	assert.Empty(t, locations)
}

func TestLookupUnresolvedPostcode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{"query": "ZZ99 9ZZ", "result": nil},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, clock.NewFakeClock(time.Unix(0, 0)), 0, zap.NewNop(), nil)
	locations := client.Lookup(context.Background(), []string{"ZZ99 9ZZ"})

	assert.Equal(t, Location{City: "N/A", Region: "N/A"}, locations["ZZ99 9ZZ"])
}

func TestLookupCountsBatchOutcomes(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": []map[string]any{}})
	}))
	defer srv.Close()

	reader := sdkmetric.NewManualReader()
	m, err := metrics.New(metrics.Config{ServiceName: "connect"},
		sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	require.NoError(t, err)

	client := NewClient(srv.URL, clock.NewFakeClock(time.Unix(0, 0)), 0, zap.NewNop(), m)

	postcodes := make([]string, 0, 150)
	for i := 0; i < 150; i++ {
		postcodes = append(postcodes, fmt.Sprintf("S%d 1AA", i))
	}
	client.Lookup(context.Background(), postcodes)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	outcomes := map[string]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, inst := range scope.Metrics {
			if inst.Name != "connect_geocode_batches_total" {
				continue
			}
			sum, ok := inst.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, point := range sum.DataPoints {
				outcome, _ := point.Attributes.Value(attribute.Key("outcome"))
				outcomes[outcome.AsString()] = point.Value
			}
		}
	}

	assert.Equal(t, map[string]int64{"error": 1, "ok": 1}, outcomes)
}

func TestLookupFailedBatchReturnsPartial(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, clock.NewFakeClock(time.Unix(0, 0)), 0, zap.NewNop(), nil)
	locations := client.Lookup(context.Background(), []string{"S1 2JE"})

	assert.Empty(t, locations)
}

// Package charitybase queries the CharityBase GraphQL API for charity
// records in a configured region.
package charitybase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oneeighty/connect/internal/observability/metrics"
	"github.com/oneeighty/connect/internal/rules"
	"go.uber.org/zap"
)

// Charity is the raw record shape returned by CharityBase.
type Charity struct {
	ID         string       `json:"id"`
	Names      []CharityName `json:"names"`
	Activities string       `json:"activities"`
	Contact    *Contact     `json:"contact"`
	Website    string       `json:"website"`
}

type CharityName struct {
	Value string `json:"value"`
}

type Contact struct {
	Address  []string `json:"address"`
	Email    string   `json:"email"`
	Postcode string   `json:"postcode"`
}

type graphQLRequest struct {
	Query string `json:"query"`
}

type graphQLResponse struct {
	Data struct {
		CHC struct {
			GetCharities struct {
				Count int       `json:"count"`
				List  []Charity `json:"list"`
			} `json:"getCharities"`
		} `json:"CHC"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *zap.Logger
}

func NewClient(baseURL, apiKey string, log *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

// FetchCharities runs the region-filtered query. Any provider failure is
// logged and yields an empty result; a charity outage never aborts an
// aggregation run.
func (c *Client) FetchCharities(ctx context.Context, r rules.Rules) []Charity {
	query := fmt.Sprintf(`
	query {
	  CHC {
	    getCharities(filters: {geo: {region: %s}}) {
	      count
	      list(limit: %d) {
	        id
	        names {
	          value
	        }
	        activities
	        contact {
	          address
	          email
	          postcode
	        }
	        website
	      }
	    }
	  }
	}`, r.RegionCode, r.CharityLimit)

	payload, err := json.Marshal(graphQLRequest{Query: query})
	if err != nil {
		c.log.Error("failed to encode charity query", zap.Error(err))
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		c.log.Error("failed to build charity request", zap.Error(err))
		return nil
	}
	req.Header.Set("Authorization", "Apikey "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("charity registry unreachable", zap.Error(err))
		metrics.Pipeline().ObserveFetchError("charitybase")
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Warn("failed to read charity response", zap.Error(err))
		metrics.Pipeline().ObserveFetchError("charitybase")
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("charity registry returned non-200",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		metrics.Pipeline().ObserveFetchError("charitybase")
		return nil
	}

	var decoded graphQLResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		c.log.Warn("failed to decode charity response", zap.Error(err))
		metrics.Pipeline().ObserveFetchError("charitybase")
		return nil
	}
	if len(decoded.Errors) > 0 {
		c.log.Warn("charity registry returned GraphQL errors",
			zap.String("first_error", decoded.Errors[0].Message),
			zap.Int("error_count", len(decoded.Errors)),
		)
		metrics.Pipeline().ObserveFetchError("charitybase")
		return nil
	}

	return decoded.Data.CHC.GetCharities.List
}

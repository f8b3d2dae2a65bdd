// Package companieshouse queries the Companies House advanced-search API
// and applies the three-tier inclusion policy: broad registry types are
// trusted outright, community-interest subtypes are trusted, and
// ambiguous types must be confirmed by a social-impact SIC code.
package companieshouse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/oneeighty/connect/internal/clock"
	"github.com/oneeighty/connect/internal/observability/metrics"
	"github.com/oneeighty/connect/internal/rules"
	"go.uber.org/zap"
)

// Inclusion rule buckets, recorded per fetched company.
const (
	RuleAutoInclude = "auto_include"
	RuleCIC         = "cic"
	RuleSICFiltered = "sic_filtered"
)

// Company is the raw record shape returned by the advanced-search API.
type Company struct {
	CompanyNumber           string `json:"company_number"`
	CompanyName             string `json:"company_name"`
	CompanyStatus           string `json:"company_status"`
	CompanyType             string `json:"company_type"`
	RegisteredOfficeAddress struct {
		AddressSnippet string `json:"address_snippet"`
		PostalCode     string `json:"postal_code"`
	} `json:"registered_office_address"`
}

// FetchedCompany is a company retained by the inclusion policy.
type FetchedCompany struct {
	Company
	Rule     string
	SICCodes []string
}

// LocalityStats counts retained records per inclusion rule for one
// locality. Diagnostic only.
type LocalityStats struct {
	AutoInclude int `json:"auto_include"`
	CICTypes    int `json:"cic_types"`
	SICFiltered int `json:"sic_filtered"`
}

func (s LocalityStats) Total() int {
	return s.AutoInclude + s.CICTypes + s.SICFiltered
}

type searchResponse struct {
	Items []Company `json:"items"`
}

type profileResponse struct {
	SICCodes []string `json:"sic_codes"`
}

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	clk     clock.Clock
	pause   time.Duration
	log     *zap.Logger
}

func NewClient(baseURL, apiKey string, clk clock.Clock, pause time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		clk:     clk,
		pause:   pause,
		log:     log,
	}
}

// FetchCompanies walks every configured locality and returns the companies
// retained by the inclusion policy, in fetch order, together with
// per-locality diagnostics. Individual query failures degrade to empty
// results without aborting the locality loop.
func (c *Client) FetchCompanies(ctx context.Context, r rules.Rules) ([]FetchedCompany, map[string]LocalityStats) {
	sicCodes := r.SICCodeSet()

	var all []FetchedCompany
	stats := make(map[string]LocalityStats, len(r.Localities))

	for _, locality := range r.Localities {
		c.log.Info("searching locality", zap.String("locality", locality))
		var localityStats LocalityStats

		autoIncluded := c.search(ctx, r.AutoIncludeTypes, "", locality, 100)
		localityStats.AutoInclude = len(autoIncluded)
		for _, company := range autoIncluded {
			all = append(all, FetchedCompany{Company: company, Rule: RuleAutoInclude})
		}
		c.clk.Sleep(ctx, c.pause)

		cics := c.search(ctx, r.CICTypes, "community-interest-company", locality, 10)
		localityStats.CICTypes = len(cics)
		for _, company := range cics {
			all = append(all, FetchedCompany{Company: company, Rule: RuleCIC})
		}
		c.clk.Sleep(ctx, c.pause)

		for _, company := range c.search(ctx, r.SICFilterTypes, "", locality, 100) {
			codes, ok := c.confirmSocialImpact(ctx, company.CompanyNumber, sicCodes)
			if !ok {
				continue
			}
			all = append(all, FetchedCompany{Company: company, Rule: RuleSICFiltered, SICCodes: codes})
			localityStats.SICFiltered++
		}
		c.clk.Sleep(ctx, c.pause)

		stats[locality] = localityStats
	}

	return all, stats
}

// CompanyProfile fetches the detail record for one company. Failures
// degrade to an empty profile.
func (c *Client) CompanyProfile(ctx context.Context, companyNumber string) []string {
	endpoint := fmt.Sprintf("%s/company/%s", c.baseURL, url.PathEscape(companyNumber))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.log.Error("failed to build company profile request", zap.Error(err))
		return nil
	}
	req.SetBasicAuth(c.apiKey, "")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("company profile lookup failed",
			zap.String("company_number", companyNumber),
			zap.Error(err),
		)
		metrics.Pipeline().ObserveFetchError("companieshouse")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("company profile returned non-200",
			zap.String("company_number", companyNumber),
			zap.Int("status", resp.StatusCode),
		)
		metrics.Pipeline().ObserveFetchError("companieshouse")
		return nil
	}

	var decoded profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.log.Warn("failed to decode company profile",
			zap.String("company_number", companyNumber),
			zap.Error(err),
		)
		return nil
	}
	return decoded.SICCodes
}

func (c *Client) confirmSocialImpact(ctx context.Context, companyNumber string, reference map[string]struct{}) ([]string, bool) {
	codes := c.CompanyProfile(ctx, companyNumber)
	for _, code := range codes {
		if _, ok := reference[code]; ok {
			return codes, true
		}
	}
	return nil, false
}

func (c *Client) search(ctx context.Context, companyTypes []string, subtype, locality string, size int) []Company {
	endpoint := c.baseURL + "/advanced-search/companies"

	params := url.Values{}
	for _, companyType := range companyTypes {
		params.Add("company_type", companyType)
	}
	if subtype != "" {
		params.Set("company_subtype", subtype)
	}
	params.Set("location", locality)
	params.Set("size", strconv.Itoa(size))
	params.Set("company_status", "active")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		c.log.Error("failed to build company search request", zap.Error(err))
		return nil
	}
	req.SetBasicAuth(c.apiKey, "")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("company search failed",
			zap.String("locality", locality),
			zap.Error(err),
		)
		metrics.Pipeline().ObserveFetchError("companieshouse")
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Warn("failed to read company search response", zap.Error(err))
		metrics.Pipeline().ObserveFetchError("companieshouse")
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("company search returned non-200",
			zap.String("locality", locality),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		metrics.Pipeline().ObserveFetchError("companieshouse")
		return nil
	}

	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		c.log.Warn("failed to decode company search response", zap.Error(err))
		return nil
	}
	return decoded.Items
}

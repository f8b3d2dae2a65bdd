package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oneeighty/connect/internal/clock"
	"github.com/oneeighty/connect/internal/geocode"
	organizationdomain "github.com/oneeighty/connect/internal/organization/domain"
	"github.com/oneeighty/connect/internal/organization/repository"
	organizationservice "github.com/oneeighty/connect/internal/organization/service"
	"github.com/oneeighty/connect/internal/registry/charitybase"
	"github.com/oneeighty/connect/internal/registry/companieshouse"
	"github.com/oneeighty/connect/internal/rules"
	"github.com/oneeighty/connect/pkg/db"
)

func newCharityServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"CHC": map[string]any{
					"getCharities": map[string]any{
						"count": 1,
						"list": []map[string]any{
							{
								"id":         "charity-1",
								"names":      []map[string]any{{"value": "Example Trust"}},
								"activities": "Youth programmes",
								"contact": map[string]any{
									"address":  []string{"1 High Street", "Sheffield"},
									"email":    "info@example.org",
									"postcode": "S1 2JE",
								},
								"website": "https://example.org",
							},
						},
					},
				},
			},
		})
	}))
}

func newCompanyServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/advanced-search/companies" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("company_subtype") != "" {
			_ = json.NewEncoder(w).Encode(map[string]any{"items": []map[string]any{}})
			return
		}
		if r.URL.Query()["company_type"][0] != "charitable-incorporated-organisation" {
			_ = json.NewEncoder(w).Encode(map[string]any{"items": []map[string]any{}})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{
					"company_number": "01234567",
					"company_name":   "Example Trust",
					"company_status": "active",
					"company_type":   "charitable-incorporated-organisation",
				},
				{
					"company_number": "07654321",
					"company_name":   "Example CIO",
					"company_status": "active",
					"company_type":   "charitable-incorporated-organisation",
					"registered_office_address": map[string]any{
						"address_snippet": "2 Low Road, Leeds",
						"postal_code":     "LS1 4AP",
					},
				},
			},
		})
	}))
}

func newPostcodeServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{
					"query": "S1 2JE",
					"result": map[string]any{
						"admin_district": "Sheffield",
						"pfa":            "South Yorkshire",
					},
				},
				{"query": "LS1 4AP", "result": nil},
			},
		})
	}))
}

func newPipelineForTest(t *testing.T, charitySrv, companySrv, postcodeSrv *httptest.Server) (*Pipeline, organizationdomain.Service) {
	t.Helper()

	gdb, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&organizationdomain.Source{}, &organizationdomain.Organization{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zap.NewNop()
	clk := clock.NewFakeClock(time.Unix(1700000000, 0))
	orgs := organizationservice.NewService(log, repository.NewRepository(gdb), node)
	holder := rules.NewStaticHolder(rules.Rules{
		Localities:       []string{"Sheffield"},
		AutoIncludeTypes: []string{"charitable-incorporated-organisation"},
		CICTypes:         []string{"private-limited-guarant-nsc"},
		SICFilterTypes:   []string{"ltd"},
	})

	pipeline := New(
		log,
		holder,
		charitybase.NewClient(charitySrv.URL, "key", log),
		companieshouse.NewClient(companySrv.URL, "key", clk, 0, log),
		geocode.NewClient(postcodeSrv.URL, clk, 0, log, nil),
		orgs,
		nil,
		clk,
		nil,
		nil,
		nil,
	)
	return pipeline, orgs
}

func TestRunAggregatesBothRegistries(t *testing.T) {
	charitySrv := newCharityServer(t)
	defer charitySrv.Close()
	companySrv := newCompanyServer(t)
	defer companySrv.Close()
	postcodeSrv := newPostcodeServer(t)
	defer postcodeSrv.Close()

	pipeline, orgs := newPipelineForTest(t, charitySrv, companySrv, postcodeSrv)

	result, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 1, result.CharitiesFetched)
	assert.Equal(t, 2, result.CompaniesFetched)
	assert.Equal(t, 2, result.Merged)
	assert.Equal(t, 2, result.Persisted)
	assert.Equal(t, 2, result.Localities["Sheffield"].AutoInclude)

	all, err := orgs.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)

	byName := map[string]organizationdomain.Organization{}
	for _, org := range all {
		byName[org.Name] = org
	}

	// The charity record wins the name collision with company 01234567.
	trust := byName["Example Trust"]
	assert.Equal(t, organizationdomain.SourceCharityBase, trust.SourceName)
	assert.Equal(t, "charity-1", trust.SourceRecordID)
	assert.Equal(t, "Sheffield", trust.City)
	assert.Equal(t, "South Yorkshire", trust.Region)

	cio := byName["Example CIO"]
	assert.Equal(t, organizationdomain.SourceCompaniesHouse, cio.SourceName)
	assert.Equal(t, "LS1 4AP", cio.Postcode)
	assert.Equal(t, "N/A", cio.City)
	assert.Equal(t, "N/A", cio.Region)
	assert.Equal(t, "N/A", cio.Email)
}

func TestRunSurvivesRegistryOutage(t *testing.T) {
	downSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer downSrv.Close()
	postcodeSrv := newPostcodeServer(t)
	defer postcodeSrv.Close()

	pipeline, _ := newPipelineForTest(t, downSrv, downSrv, postcodeSrv)

	result, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.CharitiesFetched)
	assert.Zero(t, result.CompaniesFetched)
	assert.Zero(t, result.Persisted)
}

func TestCollectPostcodes(t *testing.T) {
	postcodes := collectPostcodes([]organizationdomain.Organization{
		{Postcode: "S1 2JE"},
		{Postcode: "N/A"},
		{Postcode: ""},
		{Postcode: "S1 2JE"},
		{Postcode: "LS1 4AP"},
	})
	assert.Equal(t, []string{"S1 2JE", "LS1 4AP"}, postcodes)
}

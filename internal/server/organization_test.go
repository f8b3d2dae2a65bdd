package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oneeighty/connect/internal/clock"
	"github.com/oneeighty/connect/internal/config"
	organizationdomain "github.com/oneeighty/connect/internal/organization/domain"
	"github.com/oneeighty/connect/internal/organization/repository"
	organizationservice "github.com/oneeighty/connect/internal/organization/service"
	"github.com/oneeighty/connect/internal/providers/ai"
	"github.com/oneeighty/connect/pkg/db"
)

func newTestServer(t *testing.T) (*Server, organizationdomain.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&organizationdomain.Source{}, &organizationdomain.Organization{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	orgs := organizationservice.NewService(zap.NewNop(), repository.NewRepository(gdb), node)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	srv := NewServer(ServerParams{
		Gin:             engine,
		Cfg:             config.Config{},
		OrganizationSvc: orgs,
		Drafts:          ai.NewTemplateGenerator(),
		Clk:             clock.NewFakeClock(time.Unix(1700000000, 0)),
		Log:             zap.NewNop(),
	})
	return srv, orgs
}

func seedOrganizations(t *testing.T, orgs organizationdomain.Service) []organizationdomain.Organization {
	t.Helper()
	records := []organizationdomain.Organization{
		{Name: "Example Trust", City: "Sheffield", SourceName: organizationdomain.SourceCharityBase},
		{Name: "Example CIC", City: "N/A", SourceName: organizationdomain.SourceCompaniesHouse},
	}
	_, err := orgs.Persist(context.Background(), records)
	require.NoError(t, err)
	return records
}

func TestListOrganizations(t *testing.T) {
	srv, orgs := newTestServer(t)
	seedOrganizations(t, orgs)

	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/organizations", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp organizationdomain.ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Organizations, 2)
}

func TestListOrganizationsFilterBySource(t *testing.T) {
	srv, orgs := newTestServer(t)
	seedOrganizations(t, orgs)

	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/organizations?source=CharityBase", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp organizationdomain.ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Organizations, 1)
	assert.Equal(t, "Example Trust", resp.Organizations[0].Name)
}

func TestGetOrganizationNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/organizations/999999", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetOrganization(t *testing.T) {
	srv, orgs := newTestServer(t)
	records := seedOrganizations(t, orgs)

	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/organizations/"+records[0].ID.String(), nil))

	require.Equal(t, http.StatusOK, w.Code)
	var org organizationdomain.Organization
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &org))
	assert.Equal(t, "Example Trust", org.Name)
	assert.Equal(t, organizationdomain.SourceCharityBase, org.SourceName)
}

func TestDraftOutreach(t *testing.T) {
	srv, orgs := newTestServer(t)
	records := seedOrganizations(t, orgs)

	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/organizations/"+records[0].ID.String()+"/outreach", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["draft"], "Example Trust")
	assert.Contains(t, resp["draft"], "Sheffield")
}

func TestExportCSV(t *testing.T) {
	srv, orgs := newTestServer(t)
	seedOrganizations(t, orgs)

	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/export/csv", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Example Trust")
	assert.Contains(t, w.Body.String(), "id,name,status")
}

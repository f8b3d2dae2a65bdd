package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oneeighty/connect/internal/organization/domain"
	"github.com/oneeighty/connect/internal/organization/repository"
	"github.com/oneeighty/connect/pkg/db"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	gdb, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&domain.Source{}, &domain.Organization{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(zap.NewNop(), repository.NewRepository(gdb), node)
}

func TestGetOrCreateSourceIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.GetOrCreateSource(ctx, domain.SourceCharityBase)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, domain.SourceCharityBase, first.Name)
	assert.Equal(t, "charitybase", first.Slug)

	second, err := svc.GetOrCreateSource(ctx, domain.SourceCharityBase)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestGetOrCreateSourceTrimsName(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.GetOrCreateSource(ctx, "  Companies House  ")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceCompaniesHouse, created.Name)

	_, err = svc.GetOrCreateSource(ctx, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidSourceName)
}

func TestPersistTagsRecordsWithSources(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	records := []domain.Organization{
		{Name: "Example Trust", Postcode: "S1 2JE", SourceName: domain.SourceCharityBase},
		{Name: "Example CIC", Postcode: "N/A", SourceName: domain.SourceCompaniesHouse},
	}

	count, err := svc.Persist(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NotZero(t, records[0].ID)
	assert.NotZero(t, records[1].ID)
	assert.NotEqual(t, records[0].SourceID, records[1].SourceID)

	got, err := svc.Get(ctx, records[0].ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Example Trust", got.Name)
	assert.Equal(t, domain.SourceCharityBase, got.SourceName)
}

func TestPersistIsAppendOnly(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	record := domain.Organization{Name: "Example Trust", SourceName: domain.SourceCharityBase}

	_, err := svc.Persist(ctx, []domain.Organization{record})
	require.NoError(t, err)
	_, err = svc.Persist(ctx, []domain.Organization{record})
	require.NoError(t, err)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPersistRejectsBlankName(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Persist(context.Background(), []domain.Organization{
		{Name: "   ", SourceName: domain.SourceCharityBase},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}

func TestListFiltersBySourceAndPaginates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	records := []domain.Organization{
		{Name: "Charity A", SourceName: domain.SourceCharityBase},
		{Name: "Charity B", SourceName: domain.SourceCharityBase},
		{Name: "Company A", SourceName: domain.SourceCompaniesHouse},
	}
	_, err := svc.Persist(ctx, records)
	require.NoError(t, err)

	resp, err := svc.List(ctx, domain.ListRequest{SourceName: domain.SourceCharityBase})
	require.NoError(t, err)
	assert.Len(t, resp.Organizations, 2)
	for _, org := range resp.Organizations {
		assert.Equal(t, domain.SourceCharityBase, org.SourceName)
	}

	page, err := svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	assert.Len(t, page.Organizations, 3)
	assert.EqualValues(t, 3, page.TotalSize)
	assert.False(t, page.PageInfo.HasMore)
}

func TestGetUnknownID(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Get(context.Background(), "not-a-snowflake")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(context.Background(), "123456789")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

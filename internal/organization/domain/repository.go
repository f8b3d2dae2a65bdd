package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListFilter narrows organization listings.
type ListFilter struct {
	SourceName string
	AfterID    snowflake.ID
	Limit      int
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	GetSourceByName(ctx context.Context, name string) (*Source, error)
	CreateSource(ctx context.Context, source Source) (*Source, error)
	ListSources(ctx context.Context) ([]Source, error)

	InsertOrganization(ctx context.Context, org Organization) error
	GetOrganization(ctx context.Context, id snowflake.ID) (*Organization, error)
	ListOrganizations(ctx context.Context, filter ListFilter) ([]Organization, error)
	CountOrganizations(ctx context.Context) (int64, error)
}

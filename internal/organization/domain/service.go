package domain

import (
	"context"
	"errors"

	"github.com/oneeighty/connect/pkg/db/pagination"
)

type Service interface {
	// GetOrCreateSource resolves a registry to its persisted identity,
	// creating it on first sight. Safe to call repeatedly across runs.
	GetOrCreateSource(ctx context.Context, name string) (*Source, error)

	// Persist writes each record tagged with its resolved source.
	// Organization rows are append-only: re-running an aggregation
	// against a populated store duplicates organization rows.
	Persist(ctx context.Context, records []Organization) (int, error)

	Get(ctx context.Context, id string) (*Organization, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	ListAll(ctx context.Context) ([]Organization, error)
}

type ListRequest struct {
	SourceName string
	Page       pagination.Pagination
}

type ListResponse struct {
	Organizations []Organization       `json:"organizations"`
	TotalSize     int64                `json:"total_size"`
	PageInfo      *pagination.PageInfo `json:"page_info"`
}

var (
	ErrInvalidSourceName   = errors.New("invalid_source_name")
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrNotFound            = errors.New("not_found")
)

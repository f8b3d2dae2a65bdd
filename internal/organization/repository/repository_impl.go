package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/oneeighty/connect/internal/organization/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) GetSourceByName(ctx context.Context, name string) (*domain.Source, error) {
	var source domain.Source
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&source).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &source, nil
}

func (r *repository) CreateSource(ctx context.Context, source domain.Source) (*domain.Source, error) {
	if err := r.db.WithContext(ctx).Create(&source).Error; err != nil {
		return nil, err
	}
	return &source, nil
}

func (r *repository) ListSources(ctx context.Context) ([]domain.Source, error) {
	var sources []domain.Source
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&sources).Error
	if err != nil {
		return nil, err
	}
	return sources, nil
}

func (r *repository) InsertOrganization(ctx context.Context, org domain.Organization) error {
	return r.db.WithContext(ctx).Create(&org).Error
}

func (r *repository) GetOrganization(ctx context.Context, id snowflake.ID) (*domain.Organization, error) {
	var org domain.Organization
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *repository) ListOrganizations(ctx context.Context, filter domain.ListFilter) ([]domain.Organization, error) {
	query := r.db.WithContext(ctx).Model(&domain.Organization{})

	if filter.SourceName != "" {
		query = query.Joins("JOIN sources ON sources.id = organizations.source_id").
			Where("sources.name = ?", filter.SourceName)
	}
	if filter.AfterID != 0 {
		query = query.Where("organizations.id > ?", filter.AfterID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var orgs []domain.Organization
	err := query.Order("organizations.id ASC").Find(&orgs).Error
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *repository) CountOrganizations(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Organization{}).
		Count(&count).Error
	return count, err
}

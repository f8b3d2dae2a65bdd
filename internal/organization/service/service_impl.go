package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/oneeighty/connect/internal/organization/domain"
	"github.com/oneeighty/connect/pkg/db"
	"github.com/oneeighty/connect/pkg/db/pagination"
	"go.uber.org/zap"
)

type service struct {
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func NewService(log *zap.Logger, repo domain.Repository, genID *snowflake.Node) domain.Service {
	return &service{
		log:   log,
		repo:  repo,
		genID: genID,
	}
}

func (s *service) GetOrCreateSource(ctx context.Context, name string) (*domain.Source, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidSourceName
	}

	source, err := s.repo.GetSourceByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if source != nil {
		return source, nil
	}

	created, err := s.repo.CreateSource(ctx, domain.Source{
		Name: name,
		Slug: slug.Make(name),
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			// Lost a create race with a concurrent run; the row exists now.
			return s.repo.GetSourceByName(ctx, name)
		}
		return nil, err
	}

	s.log.Info("registered source", zap.String("source", name), zap.Int64("source_id", created.ID))
	return created, nil
}

func (s *service) Persist(ctx context.Context, records []domain.Organization) (int, error) {
	sources := map[string]*domain.Source{}

	count := 0
	for i := range records {
		if strings.TrimSpace(records[i].Name) == "" {
			return count, domain.ErrInvalidOrganization
		}

		source, ok := sources[records[i].SourceName]
		if !ok {
			var err error
			source, err = s.GetOrCreateSource(ctx, records[i].SourceName)
			if err != nil {
				return count, err
			}
			sources[records[i].SourceName] = source
		}

		records[i].ID = s.genID.Generate()
		records[i].SourceID = source.ID
		if err := s.repo.InsertOrganization(ctx, records[i]); err != nil {
			return count, err
		}
		count++
	}

	return count, nil
}

func (s *service) Get(ctx context.Context, id string) (*domain.Organization, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrNotFound
	}

	org, err := s.repo.GetOrganization(ctx, parsed)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domain.ErrNotFound
	}

	orgs := []domain.Organization{*org}
	if err := s.attachSourceNames(ctx, orgs); err != nil {
		return nil, err
	}
	return &orgs[0], nil
}

func (s *service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	limit := req.Page.Limit()

	filter := domain.ListFilter{
		SourceName: strings.TrimSpace(req.SourceName),
		Limit:      limit + 1,
	}
	if req.Page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.Page.PageToken)
		if err != nil {
			return nil, err
		}
		after, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, err
		}
		filter.AfterID = after
	}

	orgs, err := s.repo.ListOrganizations(ctx, filter)
	if err != nil {
		return nil, err
	}

	hasMore := len(orgs) > limit
	if hasMore {
		orgs = orgs[:limit]
	}

	pageInfo := &pagination.PageInfo{HasMore: hasMore}
	if hasMore && len(orgs) > 0 {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: orgs[len(orgs)-1].ID.String()})
		if err != nil {
			return nil, err
		}
		pageInfo.NextPageToken = token
	}

	if err := s.attachSourceNames(ctx, orgs); err != nil {
		return nil, err
	}

	total, err := s.repo.CountOrganizations(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.ListResponse{
		Organizations: orgs,
		TotalSize:     total,
		PageInfo:      pageInfo,
	}, nil
}

func (s *service) ListAll(ctx context.Context) ([]domain.Organization, error) {
	orgs, err := s.repo.ListOrganizations(ctx, domain.ListFilter{})
	if err != nil {
		return nil, err
	}
	if err := s.attachSourceNames(ctx, orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

func (s *service) attachSourceNames(ctx context.Context, orgs []domain.Organization) error {
	if len(orgs) == 0 {
		return nil
	}
	sources, err := s.repo.ListSources(ctx)
	if err != nil {
		return err
	}
	byID := make(map[int64]string, len(sources))
	for _, source := range sources {
		byID[source.ID] = source.Name
	}
	for i := range orgs {
		orgs[i].SourceName = byID[orgs[i].SourceID]
	}
	return nil
}

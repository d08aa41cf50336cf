package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/prepwise/prepwise-backend/internal/config"
	"github.com/prepwise/prepwise-backend/internal/exam"
	"github.com/prepwise/prepwise-backend/internal/model"
	"github.com/prepwise/prepwise-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CatalogService serves the subject picker: every subject, display-ordered
// and labeled, with the pinned subject first. The catalog is cached in
// Redis and invalidated when subjects change.
type CatalogService struct {
	subjectRepo *repository.SubjectRepository
	rdb         *redis.Client
	cfg         *config.Config
	log         zerolog.Logger

	pinned      func(model.Subject) bool
	pinnedLabel string
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(subjectRepo *repository.SubjectRepository, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		subjectRepo: subjectRepo,
		rdb:         rdb,
		cfg:         cfg,
		log:         log.With().Str("component", "catalog_service").Logger(),
		pinned:      exam.PinnedByName(cfg.PinnedSubjectMarker),
		pinnedLabel: exam.PinnedLabel(cfg.PinnedSubjectMarker),
	}
}

// List returns the labeled subject catalog in display order.
func (s *CatalogService) List(ctx context.Context) ([]exam.LabeledSubject, error) {
	key := config.CacheKey.SubjectCatalogKey()

	cached, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		var catalog []exam.LabeledSubject
		if err := json.Unmarshal([]byte(cached), &catalog); err == nil {
			return catalog, nil
		}
		s.log.Warn().Msg("Cached catalog undecodable, rebuilding")
	} else if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis get catalog: %w", err)
	}

	subjects, err := s.subjectRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}

	catalog := exam.OrderAndLabel(subjects, s.pinned, s.pinnedLabel)

	if raw, err := json.Marshal(catalog); err == nil {
		if err := s.rdb.Set(ctx, key, raw, 0).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Catalog cache write failed")
		}
	}
	return catalog, nil
}

// Create adds a subject and invalidates the cached catalog.
func (s *CatalogService) Create(ctx context.Context, subj *model.Subject) error {
	if err := s.subjectRepo.Create(ctx, subj); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	if err := s.rdb.Del(ctx, config.CacheKey.SubjectCatalogKey()).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Catalog cache invalidation failed")
	}
	return nil
}

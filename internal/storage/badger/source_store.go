package badger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jobworker/engine/internal/models"
	"github.com/jobworker/engine/internal/storeapi"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

type SourceStore struct {
	db     *BadgerDB
	logger arbor.ILogger
	mu     sync.Mutex
}

func NewSourceStore(db *BadgerDB, logger arbor.ILogger) *SourceStore {
	return &SourceStore{db: db, logger: logger}
}

func (s *SourceStore) Get(ctx context.Context, id string) (*models.Source, error) {
	var src models.Source
	if err := s.db.Store().Get(id, &src); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, storeapi.ErrNotFound
		}
		return nil, err
	}
	return &src, nil
}

func (s *SourceStore) Upsert(ctx context.Context, src *models.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var existing models.Source
	err := s.db.Store().Get(src.ID, &existing)
	if err == badgerhold.ErrNotFound {
		src.CreatedAt = now
		src.UpdatedAt = now
		return s.db.Store().Insert(src.ID, src)
	}
	if err != nil {
		return fmt.Errorf("get source %s: %w", src.ID, err)
	}
	src.CreatedAt = existing.CreatedAt
	src.UpdatedAt = now
	return s.db.Store().Update(src.ID, src)
}

// EnabledForCompany returns the enabled sources belonging to companyRef,
// used by the company pipeline's "no enabled source exists" spawn check.
func (s *SourceStore) EnabledForCompany(ctx context.Context, companyRef string) ([]*models.Source, error) {
	var found []models.Source
	q := badgerhold.Where("CompanyRef").Eq(companyRef).And("Enabled").Eq(true)
	if err := s.db.Store().Find(&found, q); err != nil {
		return nil, fmt.Errorf("query sources for company: %w", err)
	}
	out := make([]*models.Source, len(found))
	for i := range found {
		out[i] = &found[i]
	}
	return out, nil
}

// AllEnabled returns every enabled source, for the rotation scheduler to rank.
func (s *SourceStore) AllEnabled(ctx context.Context) ([]*models.Source, error) {
	var found []models.Source
	if err := s.db.Store().Find(&found, badgerhold.Where("Enabled").Eq(true)); err != nil {
		return nil, fmt.Errorf("query enabled sources: %w", err)
	}
	out := make([]*models.Source, len(found))
	for i := range found {
		out[i] = &found[i]
	}
	return out, nil
}

func (s *SourceStore) UpdateHealth(ctx context.Context, id string, mutate func(*models.Source) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var src models.Source
	if err := s.db.Store().Get(id, &src); err != nil {
		if err == badgerhold.ErrNotFound {
			return storeapi.ErrNotFound
		}
		return err
	}
	if err := mutate(&src); err != nil {
		return err
	}
	src.UpdatedAt = time.Now()
	return s.db.Store().Update(id, &src)
}

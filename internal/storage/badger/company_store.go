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

type CompanyStore struct {
	db     *BadgerDB
	logger arbor.ILogger
	mu     sync.Mutex
}

func NewCompanyStore(db *BadgerDB, logger arbor.ILogger) *CompanyStore {
	return &CompanyStore{db: db, logger: logger}
}

func (s *CompanyStore) Get(ctx context.Context, id string) (*models.Company, error) {
	var c models.Company
	if err := s.db.Store().Get(id, &c); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, storeapi.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *CompanyStore) GetByNormalizedName(ctx context.Context, normalizedName string) (*models.Company, error) {
	var found []models.Company
	if err := s.db.Store().Find(&found, badgerhold.Where("NormalizedName").Eq(normalizedName)); err != nil {
		return nil, fmt.Errorf("query company by name: %w", err)
	}
	if len(found) == 0 {
		return nil, storeapi.ErrNotFound
	}
	return &found[0], nil
}

// Upsert inserts or updates a company keyed by normalized name, the
// dedup key the company Save stage uses.
func (s *CompanyStore) Upsert(ctx context.Context, c *models.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.getByNormalizedNameLocked(c.NormalizedName)
	now := time.Now()
	if err == storeapi.ErrNotFound {
		if c.ID == "" {
			return fmt.Errorf("upsert company: ID required for insert")
		}
		c.CreatedAt = now
		c.UpdatedAt = now
		return s.db.Store().Insert(c.ID, c)
	}
	if err != nil {
		return err
	}

	c.ID = existing.ID
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = now
	return s.db.Store().Update(c.ID, c)
}

func (s *CompanyStore) getByNormalizedNameLocked(normalizedName string) (*models.Company, error) {
	var found []models.Company
	if err := s.db.Store().Find(&found, badgerhold.Where("NormalizedName").Eq(normalizedName)); err != nil {
		return nil, fmt.Errorf("query company by name: %w", err)
	}
	if len(found) == 0 {
		return nil, storeapi.ErrNotFound
	}
	return &found[0], nil
}

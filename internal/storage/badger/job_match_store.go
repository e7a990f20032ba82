package badger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jobworker/engine/internal/models"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

type JobMatchStore struct {
	db     *BadgerDB
	logger arbor.ILogger
	mu     sync.Mutex
}

func NewJobMatchStore(db *BadgerDB, logger arbor.ILogger) *JobMatchStore {
	return &JobMatchStore{db: db, logger: logger}
}

func (s *JobMatchStore) Create(ctx context.Context, m *models.JobMatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Store().Insert(m.ID, m)
}

// ExistsByURLHash reports whether a job-match already exists for urlHash,
// the store-side half of the dedup existence check.
func (s *JobMatchStore) ExistsByURLHash(ctx context.Context, urlHash string) (bool, error) {
	n, err := s.db.Store().Count(&models.JobMatch{}, badgerhold.Where("URLHash").Eq(urlHash))
	if err != nil {
		return false, fmt.Errorf("count job matches by hash: %w", err)
	}
	return n > 0, nil
}

// CountSince counts job matches created at or after since, the rotation
// scheduler's per-cycle target_matches gate.
func (s *JobMatchStore) CountSince(ctx context.Context, since time.Time) (int, error) {
	n, err := s.db.Store().Count(&models.JobMatch{}, badgerhold.Where("CreatedAt").Ge(since))
	if err != nil {
		return 0, fmt.Errorf("count job matches since %s: %w", since, err)
	}
	return n, nil
}

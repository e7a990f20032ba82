package badger

import (
	"github.com/jobworker/engine/internal/common"
	"github.com/ternarybob/arbor"
)

// Manager composes the per-collection stores over a single Badger database
// and connection.
type Manager struct {
	db *BadgerDB

	WorkItems *WorkItemStore
	Companies *CompanyStore
	Sources   *SourceStore
	JobMatches *JobMatchStore
}

func NewManager(logger arbor.ILogger, cfg *common.BadgerConfig) (*Manager, error) {
	db, err := NewBadgerDB(logger, cfg)
	if err != nil {
		return nil, err
	}

	return &Manager{
		db:         db,
		WorkItems:  NewWorkItemStore(db, logger),
		Companies:  NewCompanyStore(db, logger),
		Sources:    NewSourceStore(db, logger),
		JobMatches: NewJobMatchStore(db, logger),
	}, nil
}

func (m *Manager) Close() error {
	return m.db.Close()
}

package sqlite

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
)

// Manager implements the StorageManager interface for SQLite
type Manager struct {
	db        *SQLiteDB
	jobs      interfaces.JobStorage
	summaries interfaces.SummaryStorage
	logger    arbor.ILogger
}

// NewManager creates a new SQLite storage manager
func NewManager(logger arbor.ILogger, config *common.SqliteConfig) (interfaces.StorageManager, error) {
	db, err := NewSQLiteDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:        db,
		jobs:      NewJobStorage(db, logger),
		summaries: NewSummaryStorage(db, logger),
		logger:    logger,
	}

	logger.Info().Msg("SQLite storage manager initialized")

	return manager, nil
}

// Jobs returns the Job storage interface
func (m *Manager) Jobs() interfaces.JobStorage {
	return m.jobs
}

// Summaries returns the Summary storage interface
func (m *Manager) Summaries() interfaces.SummaryStorage {
	return m.summaries
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"me_msggen/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const batchSize = 500

// Storage archives generation runs in SQLite
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the SQLite archive at dbPath
func NewStorage(dbPath string) (*Storage, error) {
	// Ensure directory exists
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create DB directory: %w", err)
		}
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.RunRecord{}, &domain.ArchivedMessage{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close releases the underlying connection
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ======================================================================================
// Run Operations
// ======================================================================================

// SaveRun stores the run summary and both streams in one transaction.
// A run without an ID is given a fresh UUID.
func (s *Storage) SaveRun(run *domain.RunRecord, test, seeded []*domain.Message) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	run.TestCount = len(test)
	run.SeededCount = len(seeded)

	rows := make([]domain.ArchivedMessage, 0, len(test)+len(seeded))
	rows = appendArchived(rows, run.ID, domain.StreamTest, test)
	rows = appendArchived(rows, run.ID, domain.StreamSeeded, seeded)

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, batchSize).Error
	})
}

func appendArchived(rows []domain.ArchivedMessage, runID, stream string, msgs []*domain.Message) []domain.ArchivedMessage {
	for i, m := range msgs {
		rows = append(rows, domain.ArchivedMessage{
			RunID:       runID,
			Stream:      stream,
			Ordinal:     i,
			Seq:         m.Seq,
			Time:        m.Time,
			Kind:        string(m.Kind),
			Symbol:      m.Instrument.Symbol,
			Price:       m.PriceString(),
			TIF:         m.TIF,
			Account:     m.Account,
			ClOrdID:     m.ClOrdID,
			OrigClOrdID: m.OrigClOrdID,
		})
	}
	return rows
}

// GetRun retrieves a run by ID
func (s *Storage) GetRun(id string) (*domain.RunRecord, error) {
	var run domain.RunRecord
	err := s.db.First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	return &run, err
}

// ListRuns returns all runs, newest first
func (s *Storage) ListRuns() ([]domain.RunRecord, error) {
	var runs []domain.RunRecord
	err := s.db.Order("created_at desc").Find(&runs).Error
	return runs, err
}

// Messages returns one stream of a run in emission order
func (s *Storage) Messages(runID, stream string) ([]domain.ArchivedMessage, error) {
	var msgs []domain.ArchivedMessage
	err := s.db.Where("run_id = ? AND stream = ?", runID, stream).Order("ordinal").Find(&msgs).Error
	return msgs, err
}

// FindByClOrdID looks an identifier up across all runs
func (s *Storage) FindByClOrdID(clordid string) ([]domain.ArchivedMessage, error) {
	var msgs []domain.ArchivedMessage
	err := s.db.Where("clordid = ?", clordid).Find(&msgs).Error
	return msgs, err
}

// DeleteRun deletes a run and its messages
func (s *Storage) DeleteRun(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_id = ?", id).Delete(&domain.ArchivedMessage{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.RunRecord{}).Error
	})
}

var _ domain.RunArchive = (*Storage)(nil)

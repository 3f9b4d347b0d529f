package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"github.com/feral-file/ff-ledger/internal/domain"
	"github.com/feral-file/ff-ledger/internal/store/schema"
)

// replayBatchSize bounds memory use when streaming the journal at startup
const replayBatchSize = 1000

type pgJournal struct {
	db *gorm.DB
}

// NewPGJournal creates a PostgreSQL-backed journal
func NewPGJournal(db *gorm.DB) Journal {
	return &pgJournal{db: db}
}

// Migrate creates or updates the journal table
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&schema.LedgerEvent{}); err != nil {
		return fmt.Errorf("failed to migrate ledger_events: %w", err)
	}
	return nil
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to defaults of 20 open
// connections, 5 idle connections, 5 minute lifetime, and 10 minute idle time.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// Append journals the events of one completed operation atomically
func (j *pgJournal) Append(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	rows := make([]schema.LedgerEvent, 0, len(events))
	for i := range events {
		payload, err := json.Marshal(&events[i])
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}

		rows = append(rows, schema.LedgerEvent{
			EventID: ulid.Make().String(),
			Type:    string(events[i].Type),
			Token:   uint64(events[i].Token),
			Payload: payload,
		})
	}

	// One transaction per operation so mint's Mint+Transfer pair commits
	// or rolls back as a unit.
	err := j.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("failed to append events: %w", err)
	}

	return nil
}

// Replay streams all journaled events in append order
func (j *pgJournal) Replay(ctx context.Context, fn func(domain.Event) error) error {
	var rows []schema.LedgerEvent
	result := j.db.WithContext(ctx).
		Order("id ASC").
		FindInBatches(&rows, replayBatchSize, func(tx *gorm.DB, batch int) error {
			for i := range rows {
				var event domain.Event
				if err := json.Unmarshal(rows[i].Payload, &event); err != nil {
					return fmt.Errorf("failed to unmarshal event %s: %w", rows[i].EventID, err)
				}
				if err := fn(event); err != nil {
					return err
				}
			}
			return nil
		})
	if result.Error != nil {
		return fmt.Errorf("failed to replay events: %w", result.Error)
	}

	return nil
}

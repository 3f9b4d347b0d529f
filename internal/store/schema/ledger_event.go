package schema

import (
	"time"

	"gorm.io/datatypes"
)

// LedgerEvent represents the ledger_events table — the append-only journal
// of every event the ledger has emitted. The in-memory state is rebuilt by
// replaying this table in ID order at startup.
type LedgerEvent struct {
	// ID is the internal database primary key and defines replay order
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// EventID is a ULID, unique and time-sortable across processes
	EventID string `gorm:"column:event_id;not null;uniqueIndex"`
	// Type is the event type (mint, transfer, approval, approval_for_all)
	Type string `gorm:"column:type;not null;index"`
	// Token is the subject token ID (zero for approval_for_all events)
	Token uint64 `gorm:"column:token;not null;index"`
	// Payload is the full event document as emitted
	Payload datatypes.JSON `gorm:"column:payload;not null"`
	// CreatedAt is the timestamp when the event was journaled
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the LedgerEvent model
func (LedgerEvent) TableName() string {
	return "ledger_events"
}

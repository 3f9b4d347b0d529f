package store

import (
	"context"

	"github.com/feral-file/ff-ledger/internal/domain"
)

// Journal is the durable record of every event the ledger has emitted.
// Appending the events of one operation is atomic: either all of them are
// journaled or none are.
//
//go:generate mockgen -source=journal.go -destination=../mocks/journal.go -package=mocks -mock_names=Journal=MockJournal
type Journal interface {
	// Append journals the events of one completed operation atomically
	Append(ctx context.Context, events []domain.Event) error
	// Replay streams all journaled events in append order. The callback
	// returning an error stops the replay and propagates the error.
	Replay(ctx context.Context, fn func(domain.Event) error) error
}

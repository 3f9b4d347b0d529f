// Package service hosts the ledger engine: it serializes operations the way
// the engine's invocation model requires, keeps the authoritative event
// journal, and fans emitted events out to observers.
package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/feral-file/ff-ledger/internal/domain"
	"github.com/feral-file/ff-ledger/internal/ledger"
	"github.com/feral-file/ff-ledger/internal/logger"
	"github.com/feral-file/ff-ledger/internal/messaging"
	"github.com/feral-file/ff-ledger/internal/store"
	"github.com/feral-file/ff-ledger/internal/webhook"
)

// Service exposes the ledger operations to transport handlers. Each mutating
// call runs the engine operation under an exclusive lock, journals the
// emitted events, and then publishes them to NATS and webhook observers.
//
// The journal is the durable record: if journaling fails the call reports
// failure, and the next restart rebuilds in-memory state from the journal,
// discarding the unjournaled mutation.
type Service struct {
	mu         sync.RWMutex
	ledger     *ledger.Ledger
	recorder   *ledger.Recorder
	journal    store.Journal
	publisher  messaging.Publisher
	dispatcher *webhook.Dispatcher
}

// New creates a service over fresh in-memory state. The publisher and
// dispatcher are optional; pass nil to disable either side channel.
func New(journal store.Journal, publisher messaging.Publisher, dispatcher *webhook.Dispatcher) *Service {
	recorder := ledger.NewRecorder()
	return &Service{
		ledger:     ledger.New(store.NewMemoryState(), recorder),
		recorder:   recorder,
		journal:    journal,
		publisher:  publisher,
		dispatcher: dispatcher,
	}
}

// Restore rebuilds in-memory state by replaying the journal
func (s *Service) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	err := s.journal.Replay(ctx, func(event domain.Event) error {
		count++
		return s.ledger.Apply(event)
	})
	if err != nil {
		return fmt.Errorf("failed to restore ledger state: %w", err)
	}

	logger.Info("Restored ledger state from journal", zap.Int("events", count))
	return nil
}

// BalanceOf returns the number of tokens the owner currently holds
func (s *Service) BalanceOf(owner domain.Principal) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.BalanceOf(owner)
}

// OwnerOf returns the owner of the token, reporting whether the token exists
func (s *Service) OwnerOf(token domain.TokenID) (domain.Principal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.OwnerOf(token)
}

// GetApproved returns the principal approved for the token, if any
func (s *Service) GetApproved(token domain.TokenID) (domain.Principal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.GetApproved(token)
}

// IsApprovedForAll reports whether operator holds a blanket grant from owner
func (s *Service) IsApprovedForAll(owner, operator domain.Principal) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.IsApprovedForAll(owner, operator)
}

// TokenURI returns the asset locator of the token, reporting whether the
// token exists
func (s *Service) TokenURI(token domain.TokenID) (domain.TokenURI, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.TokenURI(token)
}

// Mint creates a new token owned by the caller
func (s *Service) Mint(ctx context.Context, caller domain.Principal, token domain.TokenID, uri domain.TokenURI) error {
	return s.execute(ctx, func() error {
		return s.ledger.Mint(caller, token, uri)
	})
}

// Burn destroys a token owned by the caller
func (s *Service) Burn(ctx context.Context, caller domain.Principal, token domain.TokenID) error {
	return s.execute(ctx, func() error {
		return s.ledger.Burn(caller, token)
	})
}

// Approve grants `to` the right to transfer the token once
func (s *Service) Approve(ctx context.Context, caller, to domain.Principal, token domain.TokenID) error {
	return s.execute(ctx, func() error {
		return s.ledger.Approve(caller, to, token)
	})
}

// SetApprovalForAll enables or disables an operator for the caller
func (s *Service) SetApprovalForAll(ctx context.Context, caller, operator domain.Principal, approved bool) error {
	return s.execute(ctx, func() error {
		return s.ledger.SetApprovalForAll(caller, operator, approved)
	})
}

// Transfer moves the caller's token to the given destination
func (s *Service) Transfer(ctx context.Context, caller, to domain.Principal, token domain.TokenID) error {
	return s.execute(ctx, func() error {
		return s.ledger.Transfer(caller, to, token)
	})
}

// TransferFrom moves a token the caller is authorized for from its owner to
// the given destination
func (s *Service) TransferFrom(ctx context.Context, caller, from, to domain.Principal, token domain.TokenID) error {
	return s.execute(ctx, func() error {
		return s.ledger.TransferFrom(caller, from, to, token)
	})
}

// execute runs one engine operation under the exclusive lock and fans out
// its events. A failed operation emits nothing and commits nothing.
func (s *Service) execute(ctx context.Context, op func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := op(); err != nil {
		return err
	}

	events := s.recorder.Drain()
	if err := s.journal.Append(ctx, events); err != nil {
		return err
	}

	for i := range events {
		if s.publisher != nil {
			if err := s.publisher.PublishEvent(ctx, &events[i]); err != nil {
				// Notifications are fire-and-forget; the operation has
				// already committed.
				logger.Error(err, zap.String("event_type", string(events[i].Type)))
			}
		}
		if s.dispatcher != nil {
			s.dispatcher.Dispatch(events[i])
		}
	}

	return nil
}

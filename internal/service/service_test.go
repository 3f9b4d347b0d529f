package service_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-ledger/internal/domain"
	"github.com/feral-file/ff-ledger/internal/logger"
	"github.com/feral-file/ff-ledger/internal/mocks"
	"github.com/feral-file/ff-ledger/internal/service"
)

const (
	alice = domain.Principal("alice")
	bob   = domain.Principal("bob")
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestMintJournalsAndPublishes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	journal := mocks.NewMockJournal(ctrl)
	publisher := mocks.NewMockPublisher(ctrl)

	var appended []domain.Event
	journal.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, events []domain.Event) error {
			appended = events
			return nil
		})
	// Mint commits two events, published in order
	gomock.InOrder(
		publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).Return(nil),
		publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).Return(nil),
	)

	svc := service.New(journal, publisher, nil)
	require.NoError(t, svc.Mint(context.Background(), alice, 1, "ipfs://asset"))

	require.Len(t, appended, 2)
	assert.Equal(t, domain.EventTypeMint, appended[0].Type)
	assert.Equal(t, domain.EventTypeTransfer, appended[1].Type)

	owner, ok := svc.OwnerOf(1)
	require.True(t, ok)
	assert.Equal(t, alice, owner)
	assert.Equal(t, uint64(1), svc.BalanceOf(alice))
}

func TestFailedOperationCommitsNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	journal := mocks.NewMockJournal(ctrl)
	publisher := mocks.NewMockPublisher(ctrl)
	journal.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)
	publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	svc := service.New(journal, publisher, nil)
	require.NoError(t, svc.Mint(context.Background(), alice, 1, "ipfs://asset"))

	// Second mint of the same token fails before any event is emitted, so
	// neither the journal nor the publisher sees another call.
	err := svc.Mint(context.Background(), bob, 1, "ipfs://other")
	assert.ErrorIs(t, err, domain.ErrTokenExists)

	owner, ok := svc.OwnerOf(1)
	require.True(t, ok)
	assert.Equal(t, alice, owner)
}

func TestJournalFailureReportsError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	journal := mocks.NewMockJournal(ctrl)
	publisher := mocks.NewMockPublisher(ctrl)
	journal.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		Return(errors.New("connection reset"))

	svc := service.New(journal, publisher, nil)
	err := svc.Mint(context.Background(), alice, 1, "ipfs://asset")
	assert.EqualError(t, err, "connection reset")
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	journal := mocks.NewMockJournal(ctrl)
	publisher := mocks.NewMockPublisher(ctrl)
	journal.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)
	publisher.EXPECT().
		PublishEvent(gomock.Any(), gomock.Any()).
		Return(errors.New("nats: timeout")).
		Times(2)

	svc := service.New(journal, publisher, nil)
	assert.NoError(t, svc.Mint(context.Background(), alice, 1, "ipfs://asset"))
}

func TestRestoreRebuildsState(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	history := []domain.Event{
		domain.NewMintEvent(alice, 1, "ipfs://asset"),
		domain.NewTransferEvent(domain.NullPrincipal, alice, 1),
		domain.NewTransferEvent(alice, bob, 1),
	}

	journal := mocks.NewMockJournal(ctrl)
	journal.EXPECT().
		Replay(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fn func(domain.Event) error) error {
			for _, event := range history {
				if err := fn(event); err != nil {
					return err
				}
			}
			return nil
		})

	svc := service.New(journal, nil, nil)
	require.NoError(t, svc.Restore(context.Background()))

	owner, ok := svc.OwnerOf(1)
	require.True(t, ok)
	assert.Equal(t, bob, owner)
	assert.Equal(t, uint64(0), svc.BalanceOf(alice))
	assert.Equal(t, uint64(1), svc.BalanceOf(bob))

	uri, ok := svc.TokenURI(1)
	require.True(t, ok)
	assert.Equal(t, domain.TokenURI("ipfs://asset"), uri)
}

func TestRestoreFailurePropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	journal := mocks.NewMockJournal(ctrl)
	journal.EXPECT().
		Replay(gomock.Any(), gomock.Any()).
		Return(errors.New("table missing"))

	svc := service.New(journal, nil, nil)
	err := svc.Restore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to restore ledger state")
}

func TestTransferLifecycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	journal := mocks.NewMockJournal(ctrl)
	journal.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	svc := service.New(journal, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.Mint(ctx, alice, 1, "ipfs://asset"))
	require.NoError(t, svc.Approve(ctx, alice, bob, 1))

	approved, ok := svc.GetApproved(1)
	require.True(t, ok)
	assert.Equal(t, bob, approved)

	require.NoError(t, svc.TransferFrom(ctx, bob, alice, bob, 1))

	owner, ok := svc.OwnerOf(1)
	require.True(t, ok)
	assert.Equal(t, bob, owner)

	require.NoError(t, svc.SetApprovalForAll(ctx, bob, alice, true))
	assert.True(t, svc.IsApprovedForAll(bob, alice))

	require.NoError(t, svc.Burn(ctx, bob, 1))
	_, ok = svc.OwnerOf(1)
	assert.False(t, ok)
}

package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/feral-file/ff-ledger/internal/domain"
	"github.com/feral-file/ff-ledger/internal/store/schema"
)

var (
	testDB      *gorm.DB
	pgContainer *postgres.PostgresContainer
)

// TestMain sets up the test database before running tests
func TestMain(m *testing.M) {
	ctx := context.Background()

	// Check if we should use an external database (for CI or local development)
	dbHost := os.Getenv("TEST_DB_HOST")

	var dsn string
	var err error

	if dbHost != "" {
		dbPort := os.Getenv("TEST_DB_PORT")
		dbUser := os.Getenv("TEST_DB_USER")
		dbPassword := os.Getenv("TEST_DB_PASSWORD")
		dbName := os.Getenv("TEST_DB_NAME")

		if dbPort == "" {
			dbPort = "5432"
		}
		if dbUser == "" {
			dbUser = "postgres"
		}
		if dbPassword == "" {
			dbPassword = "postgres"
		}
		if dbName == "" {
			dbName = "test_db"
		}

		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			dbHost, dbPort, dbUser, dbPassword, dbName)
	} else {
		// Start a PostgreSQL container for testing
		pgContainer, err = postgres.Run(ctx,
			"postgres:18-alpine",
			postgres.WithDatabase("test_db"),
			postgres.WithUsername("postgres"),
			postgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
		if err != nil {
			fmt.Printf("Failed to start postgres container: %v\n", err)
			os.Exit(1)
		}

		dsn, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			fmt.Printf("Failed to get connection string: %v\n", err)
			os.Exit(1)
		}
	}

	testDB, err = gorm.Open(pgdriver.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		fmt.Printf("Failed to connect to test database: %v\n", err)
		os.Exit(1)
	}

	if err := Migrate(testDB); err != nil {
		fmt.Printf("Failed to migrate test database: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	if pgContainer != nil {
		_ = pgContainer.Terminate(ctx)
	}

	os.Exit(code)
}

// resetJournal truncates the journal table between tests
func resetJournal(t *testing.T) {
	t.Helper()
	require.NoError(t, testDB.Exec("TRUNCATE TABLE ledger_events RESTART IDENTITY").Error)
}

func TestPGJournal_AppendAndReplay(t *testing.T) {
	resetJournal(t)
	ctx := context.Background()
	journal := NewPGJournal(testDB)

	alice := domain.Principal("alice")
	bob := domain.Principal("bob")

	mint := []domain.Event{
		domain.NewMintEvent(alice, 1, "ipfs://asset/1"),
		domain.NewTransferEvent(domain.NullPrincipal, alice, 1),
	}
	transfer := []domain.Event{
		domain.NewTransferEvent(alice, bob, 1),
	}

	require.NoError(t, journal.Append(ctx, mint))
	require.NoError(t, journal.Append(ctx, transfer))

	var replayed []domain.Event
	require.NoError(t, journal.Replay(ctx, func(ev domain.Event) error {
		replayed = append(replayed, ev)
		return nil
	}))

	require.Len(t, replayed, 3)
	assert.Equal(t, mint[0], replayed[0])
	assert.Equal(t, mint[1], replayed[1])
	assert.Equal(t, transfer[0], replayed[2])
}

func TestPGJournal_AppendEmptyIsNoop(t *testing.T) {
	resetJournal(t)
	ctx := context.Background()
	journal := NewPGJournal(testDB)

	require.NoError(t, journal.Append(ctx, nil))

	var count int64
	require.NoError(t, testDB.Model(&schema.LedgerEvent{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestPGJournal_EventIDsAreUniqueAndSortable(t *testing.T) {
	resetJournal(t)
	ctx := context.Background()
	journal := NewPGJournal(testDB)

	alice := domain.Principal("alice")
	events := make([]domain.Event, 0, 10)
	for i := 1; i <= 10; i++ {
		events = append(events, domain.NewMintEvent(alice, domain.TokenID(i), "ipfs://asset"))
	}
	require.NoError(t, journal.Append(ctx, events))

	var rows []schema.LedgerEvent
	require.NoError(t, testDB.Order("id ASC").Find(&rows).Error)
	require.Len(t, rows, 10)

	seen := make(map[string]bool)
	for _, row := range rows {
		assert.Len(t, row.EventID, 26)
		assert.False(t, seen[row.EventID], "duplicate event id %s", row.EventID)
		seen[row.EventID] = true
	}
}

func TestPGJournal_ReplayStopsOnCallbackError(t *testing.T) {
	resetJournal(t)
	ctx := context.Background()
	journal := NewPGJournal(testDB)

	alice := domain.Principal("alice")
	require.NoError(t, journal.Append(ctx, []domain.Event{
		domain.NewMintEvent(alice, 1, "ipfs://asset/1"),
		domain.NewTransferEvent(domain.NullPrincipal, alice, 1),
	}))

	calls := 0
	err := journal.Replay(ctx, func(domain.Event) error {
		calls++
		return fmt.Errorf("boom")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

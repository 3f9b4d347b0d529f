package webhook_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-ledger/internal/adapter"
	"github.com/feral-file/ff-ledger/internal/domain"
	"github.com/feral-file/ff-ledger/internal/webhook"
)

// capturedRequest records one delivery received by the test server
type capturedRequest struct {
	body      []byte
	signature string
	timestamp int64
	eventID   string
}

// newCaptureServer returns a test server recording deliveries and the slice
// they are recorded into
func newCaptureServer(t *testing.T, status int) (*httptest.Server, func() []capturedRequest) {
	t.Helper()

	var mu sync.Mutex
	var captured []capturedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		ts, _ := strconv.ParseInt(r.Header.Get(webhook.HeaderTimestamp), 10, 64)

		mu.Lock()
		captured = append(captured, capturedRequest{
			body:      body,
			signature: r.Header.Get(webhook.HeaderSignature),
			timestamp: ts,
			eventID:   r.Header.Get(webhook.HeaderEventID),
		})
		mu.Unlock()

		w.WriteHeader(status)
	}))

	return srv, func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedRequest(nil), captured...)
	}
}

func newTestDispatcher(clients []webhook.Client) *webhook.Dispatcher {
	return webhook.NewDispatcher(webhook.Config{
		PoolSize:       2,
		RequestTimeout: 2 * time.Second,
		MaxRetries:     0,
	}, clients, adapter.NewJCS(), adapter.NewClock())
}

func TestDispatcherDeliversSignedEvent(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusOK)
	defer srv.Close()

	d := newTestDispatcher([]webhook.Client{
		{
			Name:       "indexer",
			URL:        srv.URL,
			Secret:     "topsecret",
			EventTypes: []string{webhook.EventTypeWildcard},
		},
	})

	d.Dispatch(domain.NewTransferEvent("alice", "bob", 1))
	d.Close()

	reqs := captured()
	require.Len(t, reqs, 1)
	assert.NotEmpty(t, reqs[0].eventID)
	assert.True(t, webhook.VerifySignature("topsecret", reqs[0].signature, reqs[0].timestamp, reqs[0].eventID, reqs[0].body))
}

func TestDispatcherFiltersEventTypes(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusOK)
	defer srv.Close()

	d := newTestDispatcher([]webhook.Client{
		{
			Name:       "mints-only",
			URL:        srv.URL,
			Secret:     "topsecret",
			EventTypes: []string{string(domain.EventTypeMint)},
		},
	})

	d.Dispatch(domain.NewTransferEvent("alice", "bob", 1))
	d.Dispatch(domain.NewMintEvent("alice", 2, "ipfs://asset/2"))
	d.Close()

	reqs := captured()
	require.Len(t, reqs, 1)
}

func TestDispatcherRetriesFailedDelivery(t *testing.T) {
	var mu sync.Mutex
	attempts := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()

		if n == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := webhook.NewDispatcher(webhook.Config{
		PoolSize:       1,
		RequestTimeout: 2 * time.Second,
		MaxRetries:     3,
	}, []webhook.Client{
		{
			Name:       "flaky",
			URL:        srv.URL,
			Secret:     "topsecret",
			EventTypes: []string{webhook.EventTypeWildcard},
		},
	}, adapter.NewJCS(), adapter.NewClock())

	d.Dispatch(domain.NewMintEvent("alice", 1, "ipfs://asset/1"))
	d.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, attempts)
}

func TestClientMatches(t *testing.T) {
	tests := []struct {
		name      string
		filters   []string
		eventType domain.EventType
		expected  bool
	}{
		{
			name:      "wildcard matches everything",
			filters:   []string{"*"},
			eventType: domain.EventTypeApproval,
			expected:  true,
		},
		{
			name:      "exact match",
			filters:   []string{"mint", "transfer"},
			eventType: domain.EventTypeTransfer,
			expected:  true,
		},
		{
			name:      "no match",
			filters:   []string{"mint"},
			eventType: domain.EventTypeTransfer,
			expected:  false,
		},
		{
			name:      "empty filter matches nothing",
			filters:   nil,
			eventType: domain.EventTypeMint,
			expected:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := webhook.Client{EventTypes: tt.filters}
			assert.Equal(t, tt.expected, c.Matches(tt.eventType))
		})
	}
}

package webhook

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-ledger/internal/adapter"
	"github.com/feral-file/ff-ledger/internal/domain"
	"github.com/feral-file/ff-ledger/internal/logger"
)

// Delivery headers set on every webhook request
const (
	HeaderSignature = "X-Ledger-Signature"
	HeaderTimestamp = "X-Ledger-Timestamp"
	HeaderEventID   = "X-Ledger-Event-Id"
)

// responseBodyLimit caps how much of a client response is read for logging
const responseBodyLimit = 4 << 10

// Config holds dispatcher configuration
type Config struct {
	// PoolSize is the number of concurrent deliveries
	PoolSize int
	// RequestTimeout bounds a single delivery attempt
	RequestTimeout time.Duration
	// MaxRetries is the number of retry attempts after a failed delivery
	MaxRetries uint64
}

// Dispatcher fans ledger events out to registered webhook clients. Delivery
// is fire-and-forget from the caller's perspective: attempts run on a worker
// pool and retry with exponential backoff.
type Dispatcher struct {
	clients    []Client
	pool       pond.Pool
	httpClient *http.Client
	jcs        adapter.JCS
	clock      adapter.Clock
	maxRetries uint64
}

// NewDispatcher creates a dispatcher delivering to the given clients
func NewDispatcher(cfg Config, clients []Client, jcs adapter.JCS, clock adapter.Clock) *Dispatcher {
	poolSize := cfg.PoolSize
	if poolSize == 0 {
		poolSize = 4
	}
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Dispatcher{
		clients:    clients,
		pool:       pond.NewPool(poolSize),
		httpClient: &http.Client{Timeout: timeout},
		jcs:        jcs,
		clock:      clock,
		maxRetries: cfg.MaxRetries,
	}
}

// Dispatch submits the event for delivery to every matching client
func (d *Dispatcher) Dispatch(event domain.Event) {
	if len(d.clients) == 0 {
		return
	}

	webhookEvent := Event{
		EventID:   ulid.Make().String(),
		EventType: string(event.Type),
		Timestamp: d.clock.Now().UTC(),
		Data:      event,
	}

	for _, client := range d.clients {
		if !client.Matches(event.Type) {
			continue
		}
		c := client
		d.pool.Submit(func() {
			d.deliver(c, webhookEvent)
		})
	}
}

// Close waits for in-flight deliveries to finish
func (d *Dispatcher) Close() {
	d.pool.StopAndWait()
}

// deliver attempts delivery to one client, retrying with exponential backoff
func (d *Dispatcher) deliver(client Client, event Event) {
	payload, signature, timestamp, err := GenerateSignedPayload(client.Secret, event, d.jcs)
	if err != nil {
		logger.Error(err,
			zap.String("client", client.Name),
			zap.String("event_id", event.EventID))
		return
	}

	attempt := func() error {
		req, err := http.NewRequest(http.MethodPost, client.URL, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(HeaderSignature, signature)
		req.Header.Set(HeaderTimestamp, strconv.FormatInt(timestamp, 10))
		req.Header.Set(HeaderEventID, event.EventID)

		resp, err := d.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		return fmt.Errorf("webhook delivery returned %d: %s", resp.StatusCode, string(body))
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), d.maxRetries)
	if err := backoff.Retry(attempt, policy); err != nil {
		logger.Error(err,
			zap.String("client", client.Name),
			zap.String("url", client.URL),
			zap.String("event_id", event.EventID))
		return
	}

	logger.Debug("Webhook delivered",
		zap.String("client", client.Name),
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType))
}

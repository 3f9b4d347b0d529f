package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/feral-file/ff-ledger/internal/adapter"
)

// GenerateSignedPayload generates a signed webhook payload with an
// HMAC-SHA256 signature. The body is JCS-canonicalized before signing so the
// signature is stable regardless of how either side re-serializes the JSON.
// Returns the canonical payload, the signature header value, and the
// timestamp covered by the signature.
func GenerateSignedPayload(secret string, event Event, jcs adapter.JCS) (payload []byte, signature string, timestamp int64, err error) {
	raw, err := json.Marshal(event)
	if err != nil {
		return nil, "", 0, fmt.Errorf("failed to marshal event: %w", err)
	}

	payload, err = jcs.Transform(raw)
	if err != nil {
		return nil, "", 0, fmt.Errorf("failed to canonicalize event: %w", err)
	}

	timestamp = event.Timestamp.Unix()

	// Signature payload: {timestamp}.{event_id}.{canonical_body}
	// The timestamp guards against replay, the event ID allows client-side
	// deduplication, and the body covers payload integrity.
	signaturePayload := fmt.Sprintf("%d.%s.%s", timestamp, event.EventID, string(payload))

	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(signaturePayload))
	signature = "sha256=" + hex.EncodeToString(h.Sum(nil))

	return payload, signature, timestamp, nil
}

// VerifySignature checks a webhook signature produced by
// GenerateSignedPayload against the delivered payload
func VerifySignature(secret, signature string, timestamp int64, eventID string, payload []byte) bool {
	signaturePayload := fmt.Sprintf("%d.%s.%s", timestamp, eventID, string(payload))

	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(signaturePayload))
	expected := "sha256=" + hex.EncodeToString(h.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expected))
}

package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrincipalIsNull(t *testing.T) {
	assert.True(t, NullPrincipal.IsNull())
	assert.True(t, Principal("").IsNull())
	assert.False(t, Principal("alice").IsNull())
}

func TestParseTokenID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected TokenID
		wantErr  bool
	}{
		{
			name:     "valid token id",
			input:    "42",
			expected: TokenID(42),
		},
		{
			name:     "zero token id",
			input:    "0",
			expected: TokenID(0),
		},
		{
			name:    "negative token id",
			input:   "-1",
			wantErr: true,
		},
		{
			name:    "non-numeric token id",
			input:   "abc",
			wantErr: true,
		},
		{
			name:    "empty token id",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseTokenID(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, id)
		})
	}
}

func TestEvent_Valid(t *testing.T) {
	alice := Principal("alice")
	bob := Principal("bob")
	null := NullPrincipal

	tests := []struct {
		name     string
		event    Event
		expected bool
	}{
		{
			name:     "valid mint",
			event:    NewMintEvent(alice, 1, "ipfs://asset/1"),
			expected: true,
		},
		{
			name:     "mint without recipient",
			event:    Event{Type: EventTypeMint, Token: 1},
			expected: false,
		},
		{
			name:     "valid transfer",
			event:    NewTransferEvent(alice, bob, 1),
			expected: true,
		},
		{
			name:     "creation transfer from null principal",
			event:    NewTransferEvent(null, alice, 1),
			expected: true,
		},
		{
			name:     "destruction transfer to null principal",
			event:    NewTransferEvent(alice, null, 1),
			expected: true,
		},
		{
			name:     "transfer with both ends null",
			event:    NewTransferEvent(null, null, 1),
			expected: false,
		},
		{
			name:     "valid approval",
			event:    NewApprovalEvent(alice, bob, 1),
			expected: true,
		},
		{
			name:     "approval with null target",
			event:    NewApprovalEvent(alice, null, 1),
			expected: false,
		},
		{
			name:     "valid approval for all",
			event:    NewApprovalForAllEvent(alice, bob, true),
			expected: true,
		},
		{
			name:     "approval for all with null operator",
			event:    NewApprovalForAllEvent(alice, null, false),
			expected: false,
		},
		{
			name:     "unknown event type",
			event:    Event{Type: EventType("reorg")},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.event.Valid())
		})
	}
}

func TestEvent_JSONOmitsNullPrincipals(t *testing.T) {
	ev := NewTransferEvent(NullPrincipal, Principal("alice"), 7)

	data, err := json.Marshal(&ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.NotContains(t, decoded, "from")
	assert.Equal(t, "alice", decoded["to"])
	assert.Equal(t, float64(7), decoded["token"])
}

func TestEvent_JSONRoundTrip(t *testing.T) {
	ev := NewMintEvent(Principal("alice"), 3, "ipfs://asset/3")

	data, err := json.Marshal(&ev)
	require.NoError(t, err)

	var decoded Event
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ev, decoded)
}

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/feral-file/ff-ledger/internal/domain"
)

func TestMemoryMapping(t *testing.T) {
	m := NewMemoryMapping[domain.TokenID, domain.Principal]()

	_, ok := m.Get(1)
	assert.False(t, ok)
	assert.False(t, m.Contains(1))

	m.Insert(1, "alice")
	v, ok := m.Get(1)
	assert.True(t, ok)
	assert.Equal(t, domain.Principal("alice"), v)
	assert.True(t, m.Contains(1))

	// Insert overwrites.
	m.Insert(1, "bob")
	v, _ = m.Get(1)
	assert.Equal(t, domain.Principal("bob"), v)

	m.Remove(1)
	assert.False(t, m.Contains(1))

	// Removing an absent key is a no-op.
	m.Remove(1)
	assert.False(t, m.Contains(1))
}

func TestNewMemoryState(t *testing.T) {
	s := NewMemoryState()

	s.Operators.Insert(OperatorKey{Owner: "alice", Operator: "bob"}, struct{}{})
	assert.True(t, s.Operators.Contains(OperatorKey{Owner: "alice", Operator: "bob"}))
	assert.False(t, s.Operators.Contains(OperatorKey{Owner: "bob", Operator: "alice"}))

	s.Balances.Insert("alice", 3)
	count, ok := s.Balances.Get("alice")
	assert.True(t, ok)
	assert.Equal(t, uint64(3), count)
}

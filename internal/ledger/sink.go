package ledger

import (
	"github.com/feral-file/ff-ledger/internal/domain"
)

// Sink receives the events an operation emits. Emission is one-way and
// fire-and-forget; the ledger never observes delivery.
type Sink interface {
	Emit(event domain.Event)
}

// Recorder is a Sink that captures events in order. The host drains it after
// each successful operation; tests assert on the captured sequence.
type Recorder struct {
	events []domain.Event
}

// NewRecorder creates an empty event recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Emit appends the event to the recorded sequence
func (r *Recorder) Emit(event domain.Event) {
	r.events = append(r.events, event)
}

// Drain returns the recorded events and resets the recorder
func (r *Recorder) Drain() []domain.Event {
	events := r.events
	r.events = nil
	return events
}

// Events returns the recorded events without resetting
func (r *Recorder) Events() []domain.Event {
	return r.events
}

package parser

import (
	"github.com/google/uuid"
)

// State is the state of a parse session.
type State int32

// States of a parse session.
const (
	Idle State = iota
	Running
	Suspended
	Finished
	Complete
	Aborted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Suspended:
		return "suspended"
	case Finished:
		return "finished"
	case Complete:
		return "complete"
	case Aborted:
		return "aborted"
	}
	return "<unknown state>"
}

// Terminal is true for Complete and Aborted.
func (s State) Terminal() bool {
	return s == Complete || s == Aborted
}

// PipelineID identifies the page load a parse session belongs to.
type PipelineID uuid.UUID

// NewPipelineID creates a random pipeline id.
func NewPipelineID() PipelineID {
	return PipelineID(uuid.New())
}

func (id PipelineID) String() string {
	return uuid.UUID(id).String()
}

// Coordinator is notified once per session when parsing is done. err is
// nil for sessions which completed regularly.
type Coordinator interface {
	ParsingComplete(id PipelineID, err error)
}

// CoordinatorFunc adapts a function to a Coordinator.
type CoordinatorFunc func(id PipelineID, err error)

// ParsingComplete calls f.
func (f CoordinatorFunc) ParsingComplete(id PipelineID, err error) {
	f(id, err)
}

// Package wire holds the data model shared by every inference stage:
// Message, Field, FieldLayout, Symbol and Cluster.
package wire

import (
	"time"

	"github.com/google/uuid"
)

// Message is a single captured frame, optionally enriched with per-trace
// context metadata and, once the payload stripper has run, an
// encapsulated-payload summary.
type Message struct {
	Data     []byte
	Date     *time.Time
	Metadata map[string]string

	PayloadData    []byte
	PayloadSummary string

	TraceID   uuid.UUID
	TraceName string
}

// Clone returns a Message with its own copy of Data, so that callers (in
// particular Deduplicator) can zero-mask bytes without mutating the
// original.
func (m *Message) Clone() *Message {
	cp := *m
	cp.Data = append([]byte(nil), m.Data...)
	return &cp
}

// Cluster is an ordered list of symbols belonging to one trace (before
// ContextCorrelator runs) or to the entire run (after).
type Cluster []*Symbol

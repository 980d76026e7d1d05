// Package importer reads trace files — the self-describing capture
// format this tool accepts in place of PCAP — into the wire package's
// Message model.
package importer

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/techge/l2pre/internal/concurrency"
	"github.com/techge/l2pre/internal/importer/schema"
	"github.com/techge/l2pre/internal/wire"
)

// Trace is one imported capture file: a name, the context dictionary
// shared by every message in it, and the decoded messages themselves.
type Trace struct {
	Name     string
	Context  map[string]string
	Messages []*wire.Message
}

type rawMessage struct {
	Data string `yaml:"data"`
	Date string `yaml:"date"`
}

type rawTrace struct {
	Name    string            `yaml:"name"`
	Schema  string            `yaml:"$schema"`
	Context map[string]string `yaml:"context"`
	Messages []rawMessage     `yaml:"messages"`
}

// LoadTrace parses one trace file into a Trace, stamping every message
// with one freshly assigned TraceID and decoding hex frame bodies and
// RFC3339 timestamps (spec §4.10).
// If the file names a $schema, its context dictionary is validated
// against it before anything else happens.
func LoadTrace(path string) (Trace, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Trace{}, fmt.Errorf("read trace file %q: %w", path, err)
	}

	var rt rawTrace
	if err := yaml.Unmarshal(raw, &rt); err != nil {
		return Trace{}, fmt.Errorf("parse trace file %q: %w", path, err)
	}

	if rt.Schema != "" {
		if err := schema.ValidateContext(rt.Schema, rt.Context); err != nil {
			return Trace{}, fmt.Errorf("trace file %q: context schema: %w", path, err)
		}
	}

	traceID := uuid.New()

	messages := make([]*wire.Message, 0, len(rt.Messages))
	for i, rm := range rt.Messages {
		data, err := hex.DecodeString(rm.Data)
		if err != nil {
			return Trace{}, fmt.Errorf("trace file %q: message %d: decode hex: %w", path, i, err)
		}

		msg := &wire.Message{
			Data:      data,
			Metadata:  rt.Context,
			TraceID:   traceID,
			TraceName: rt.Name,
		}

		if rm.Date != "" {
			parsed, err := time.Parse(time.RFC3339, rm.Date)
			if err != nil {
				return Trace{}, fmt.Errorf("trace file %q: message %d: parse date: %w", path, i, err)
			}
			msg.Date = &parsed
		}

		messages = append(messages, msg)
	}

	return Trace{Name: rt.Name, Context: rt.Context, Messages: messages}, nil
}

// LoadTraces loads every path independently over a bounded worker pool
// (spec §5): trace files share no state, so import is fanned out, but the
// returned slice preserves the input path order regardless of which
// worker finishes first.
func LoadTraces(paths []string) ([]Trace, error) {
	return concurrency.Map(paths, concurrency.Workers(len(paths)), func(_ int, path string) (Trace, error) {
		return LoadTrace(path)
	})
}

// Package audit records migration events to an external sink. Recording is
// strictly best effort: a sink failure never changes the outcome of a
// migration run.
package audit

import (
	"context"
	"time"
)

// Event is one recorded migration outcome.
type Event struct {
	At      time.Time
	Src     string
	Dst     string
	Status  string
	Reason  string
	Elapsed time.Duration
}

// Recorder accepts migration events.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}

// NopRecorder drops every event. It is the default when no sink is
// configured.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Event) error { return nil }

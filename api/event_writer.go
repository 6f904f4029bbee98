package api

import (
	"bytes"
	"sync"
)

// EventWriter is an io.Writer that broadcasts every write as a log event
// for one job, so that job's WebSocket subscribers see each line. Nothing
// in this module creates one: the orchestrator's logging goes to the
// package-level loggers, not to an EventWriter.
type EventWriter struct {
	broadcaster *Broadcaster
	jobID       string
	buffer      *bytes.Buffer
	mutex       sync.Mutex
}

// NewEventWriter creates a writer that broadcasts to jobID's subscribers.
func NewEventWriter(broadcaster *Broadcaster, jobID string) *EventWriter {
	return &EventWriter{
		broadcaster: broadcaster,
		jobID:       jobID,
		buffer:      &bytes.Buffer{},
	}
}

// Write implements io.Writer, broadcasting p as a log line.
func (w *EventWriter) Write(p []byte) (int, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	n, err := w.buffer.Write(p)
	if err == nil && n > 0 && w.broadcaster != nil {
		w.broadcaster.BroadcastLog(w.jobID, string(p))
	}
	return n, err
}

// GetBufferAndClear returns everything written so far and clears it.
func (w *EventWriter) GetBufferAndClear() string {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	output := w.buffer.String()
	w.buffer.Reset()
	return output
}

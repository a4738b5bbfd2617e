package stores

import (
	"context"
	"sync"

	"github.com/openmission/openmission/pkg/report"
	"github.com/openmission/openmission/pkg/telemetry"
)

// ReportSink adapts a Store into a report.Sink so that every operator report
// emitted during a run lands in the run's persistent audit trail. Writes
// happen on the reporting thread; failures are logged and dropped rather
// than propagated into behavior execution.
type ReportSink struct {
	store  Store
	runID  string
	logger *telemetry.Logger

	mu     sync.Mutex
	closed bool
}

// NewReportSink creates a sink persisting entries under the given run ID.
func NewReportSink(store Store, runID string, logger *telemetry.Logger) *ReportSink {
	if logger == nil {
		logger = telemetry.NopLogger()
	}
	return &ReportSink{store: store, runID: runID, logger: logger}
}

// Add persists one report entry.
func (s *ReportSink) Add(entry report.Entry) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}

	rep := &Report{
		RunID:    s.runID,
		Behavior: entry.Behavior,
		Level:    entry.Level,
		Message:  entry.Message,
		Value:    entry.Value,
		Time:     entry.Time,
	}
	if entry.Unit != "" {
		unit := entry.Unit
		rep.Unit = &unit
	}

	if err := s.store.AppendReport(context.Background(), rep); err != nil {
		s.logger.WithError(err).Warn("dropping report entry, persistence failed")
	}
}

// Close stops the sink; later entries are discarded. Behaviors may still
// hold the reporter after the run record is finalized.
func (s *ReportSink) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

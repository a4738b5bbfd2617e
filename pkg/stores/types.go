package stores

import (
	"context"
	"database/sql"
	"time"

	"github.com/openmission/openmission/pkg/report"
)

// RunStatus represents the status of a mission run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
	RunStatusPreempted RunStatus = "preempted"
)

// StatusForOutcome maps a terminal behavior outcome string onto a run status.
// Custom outcomes count as succeeded when nominal and failed otherwise; the
// caller decides, this helper covers the canonical three.
func StatusForOutcome(outcome string) RunStatus {
	switch outcome {
	case "success":
		return RunStatusSucceeded
	case "preemption":
		return RunStatusPreempted
	default:
		return RunStatusFailed
	}
}

// Run represents one execution of a mission behavior
type Run struct {
	ID          string     `json:"id"`
	Mission     string     `json:"mission"`       // mission name
	Behavior    string     `json:"behavior"`      // registered behavior type
	MissionPath string     `json:"mission_path"`  // definition file, empty for ad hoc runs
	Status      RunStatus  `json:"status"`
	Outcome     *string    `json:"outcome,omitempty"` // terminal outcome once the run finishes
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       *string    `json:"error,omitempty"`
	Settings    string     `json:"settings"` // YAML snapshot of the loaded settings
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Report represents one persisted operator report entry
type Report struct {
	ID       int64        `json:"id"`
	RunID    string       `json:"run_id"`
	Behavior string       `json:"behavior"` // nested behavior name
	Level    report.Level `json:"level"`
	Message  string       `json:"message"`
	Value    *float64     `json:"value,omitempty"`
	Unit     *string      `json:"unit,omitempty"`
	Time     time.Time    `json:"time"`
}

// Store defines the interface for the persistence layer
type Store interface {
	// Lifecycle
	Init(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error

	// Transaction support
	BeginTx(ctx context.Context) (*sql.Tx, error)
	CommitTx(tx *sql.Tx) error
	RollbackTx(tx *sql.Tx) error

	// Run operations
	CreateRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	UpdateRunStatus(ctx context.Context, id string, status RunStatus, outcome *string, errMsg *string) error
	ListRuns(ctx context.Context, limit, offset int) ([]*Run, error)
	DeleteRun(ctx context.Context, id string) error

	// Report operations
	AppendReport(ctx context.Context, rep *Report) error
	ListReports(ctx context.Context, runID *string, level *report.Level, limit, offset int) ([]*Report, error)

	// Utility
	HealthCheck(ctx context.Context) error
}

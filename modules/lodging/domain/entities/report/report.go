package report

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

type StepName string

const (
	StepBackup             StepName = "backup"
	StepImportReservations StepName = "import_reservations"
	StepImportDaily        StepName = "import_daily"
	StepImportQuotas       StepName = "import_quotas"
	StepDryRun             StepName = "dry_run"
	StepProduction         StepName = "production"
	StepRestore            StepName = "restore"
)

// StepOrder is the fixed execution order of an import run.
func StepOrder() []StepName {
	return []StepName{
		StepBackup,
		StepImportReservations,
		StepImportDaily,
		StepImportQuotas,
		StepDryRun,
		StepProduction,
		StepRestore,
	}
}

// Modification is the tri-state effect the run had on the reservation table.
type Modification string

const (
	ModificationNotAttempted Modification = "not_attempted"
	ModificationUnknown      Modification = "attempted_unknown_effect"
	ModificationConfirmed    Modification = "confirmed"
)

type Step struct {
	Name       StepName       `json:"name"`
	Status     Status         `json:"status"`
	StartedAt  *time.Time     `json:"started_at,omitempty"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	Duration   time.Duration  `json:"duration"`
	Message    string         `json:"message,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

func (s *Step) Start(at time.Time) {
	s.Status = StatusRunning
	s.StartedAt = &at
}

func (s *Step) Finish(status Status, at time.Time, message string) {
	s.Status = status
	s.FinishedAt = &at
	if s.StartedAt != nil {
		s.Duration = at.Sub(*s.StartedAt)
	}
	s.Message = message
}

func (s *Step) Skip(message string) {
	s.Status = StatusSkipped
	s.Message = message
}

// Run is the full record of one import-orchestration run. It is mutated
// step-by-step while the run executes and treated as immutable once emitted.
type Run struct {
	ID            uuid.UUID     `json:"id"`
	Success       bool          `json:"success"`
	From          time.Time     `json:"from"`
	To            time.Time     `json:"to"`
	Kinds         []string      `json:"kinds"`
	Steps         []*Step       `json:"steps"`
	Errors        []string      `json:"errors"`
	StartedAt     time.Time     `json:"started_at"`
	FinishedAt    time.Time     `json:"finished_at"`
	Duration      time.Duration `json:"duration"`
	BackupTable   string        `json:"backup_table,omitempty"`
	BackupExists  bool          `json:"backup_exists"`
	TableModified Modification  `json:"table_modified"`
}

func NewRun(id uuid.UUID, from, to time.Time, kinds []string, startedAt time.Time) *Run {
	steps := make([]*Step, 0, len(StepOrder()))
	for _, name := range StepOrder() {
		steps = append(steps, &Step{Name: name, Status: StatusPending})
	}
	return &Run{
		ID:            id,
		From:          from,
		To:            to,
		Kinds:         kinds,
		Steps:         steps,
		Errors:        []string{},
		StartedAt:     startedAt,
		TableModified: ModificationNotAttempted,
	}
}

// Step returns the named step; the step set is fixed at construction.
func (r *Run) Step(name StepName) *Step {
	for _, s := range r.Steps {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func (r *Run) AddError(message string) {
	r.Errors = append(r.Errors, message)
}

func (r *Run) Finish(at time.Time) {
	r.FinishedAt = at
	r.Duration = at.Sub(r.StartedAt)
	r.Success = len(r.Errors) == 0
}

package operations

import (
	"time"

	"tidycli/internal/dataprocessing"
	"tidycli/pkg/contracts/domain"
)

// StepStatus represents the current status of a step
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
)

// StepState tracks the execution of a single step
type StepState struct {
	ID        string
	Name      string
	Status    StepStatus
	StartTime time.Time
	EndTime   time.Time
	Error     error
}

// NewStepState creates a pending step state
func NewStepState(id, name string) *StepState {
	return &StepState{
		ID:     id,
		Name:   name,
		Status: StepStatusPending,
	}
}

// Start marks the step as active
func (s *StepState) Start(now time.Time) {
	s.Status = StepStatusActive
	s.StartTime = now
}

// Complete marks the step as completed
func (s *StepState) Complete(now time.Time) {
	s.Status = StepStatusCompleted
	s.EndTime = now
}

// Fail marks the step as failed
func (s *StepState) Fail(now time.Time, err error) {
	s.Status = StepStatusFailed
	s.EndTime = now
	s.Error = err
}

// Duration returns how long the step ran, or zero if it never finished
func (s *StepState) Duration() time.Duration {
	if s.StartTime.IsZero() || s.EndTime.IsZero() {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// RunState carries data between the steps of one run
type RunState struct {
	ID      string
	Options RunOptions
	Steps   []*StepState

	Table  *domain.WideTable
	Result *dataprocessing.ReshapeResult
}

// NewRunState creates the state for a run
func NewRunState(id string, opts RunOptions) *RunState {
	return &RunState{
		ID:      id,
		Options: opts,
	}
}

// Step returns the state of the step with the given ID, or nil
func (s *RunState) Step(id string) *StepState {
	for _, st := range s.Steps {
		if st.ID == id {
			return st
		}
	}
	return nil
}

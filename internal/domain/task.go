package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvariantViolated = errors.New("task invariant violated")

type TaskStatus string

const (
	TaskPending   TaskStatus = "Pending"
	TaskCompleted TaskStatus = "Completed"
	TaskDelayed   TaskStatus = "Delayed"
)

func (s TaskStatus) Valid() bool {
	return s == TaskPending || s == TaskCompleted || s == TaskDelayed
}

type DelayReport struct {
	Reason                string
	EstimatedDelayMinutes int
	ReportedBy            CrewMember
	Timestamp             time.Time
}

// Task is one checklist item. Sequence orders the checklist for display only;
// it is not a precedence constraint between tasks.
type Task struct {
	ID             string
	TurnaroundID   string
	Name           string
	AssignedRole   Role
	AssignedTo     CrewMember
	Status         TaskStatus
	IsDelayed      bool
	Sequence       int
	CompletedBy    *CrewMember
	CompletionTime *time.Time
	DelayReport    *DelayReport

	// Revision counts committed writes of the record.
	Revision int64
}

// NewTask returns a checklist item in its creation state.
func NewTask(id, turnaroundID, name string, role Role, assignee CrewMember, sequence int) Task {
	return Task{
		ID:           id,
		TurnaroundID: turnaroundID,
		Name:         name,
		AssignedRole: role,
		AssignedTo:   assignee,
		Status:       TaskPending,
		Sequence:     sequence,
	}
}

// CheckInvariants reports whether the completion and delay metadata agree with
// the status: completion iff Completed, delay report iff Delayed.
func (t Task) CheckInvariants() error {
	if !t.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvariantViolated, t.Status)
	}

	completed := t.CompletedBy != nil || t.CompletionTime != nil
	delayed := t.DelayReport != nil

	switch t.Status {
	case TaskPending:
		if completed || delayed || t.IsDelayed {
			return fmt.Errorf("%w: pending task %q carries completion or delay data", ErrInvariantViolated, t.ID)
		}
	case TaskCompleted:
		if t.CompletedBy == nil || t.CompletionTime == nil {
			return fmt.Errorf("%w: completed task %q has no completion data", ErrInvariantViolated, t.ID)
		}

		if delayed || t.IsDelayed {
			return fmt.Errorf("%w: completed task %q carries a delay report", ErrInvariantViolated, t.ID)
		}
	case TaskDelayed:
		if !delayed || !t.IsDelayed {
			return fmt.Errorf("%w: delayed task %q has no delay report", ErrInvariantViolated, t.ID)
		}

		if completed {
			return fmt.Errorf("%w: delayed task %q carries completion data", ErrInvariantViolated, t.ID)
		}
	}

	return nil
}

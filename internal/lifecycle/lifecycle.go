// Package lifecycle is the task state machine: which events are legal from
// which status, and which fields each transition sets and clears.
package lifecycle

import (
	"time"

	"github.com/YusovID/turnaround-service/internal/apperrors"
	"github.com/YusovID/turnaround-service/internal/domain"
	"github.com/YusovID/turnaround-service/internal/validation"
)

type Event string

const (
	EventComplete    Event = "complete"
	EventUncomplete  Event = "uncomplete"
	EventReportDelay Event = "reportDelay"
	EventClearDelay  Event = "clearDelay"
)

// MaxDelayMinutes caps an estimate at one day.
const MaxDelayMinutes = 24 * 60

// DelayInput is what the actor submits when reporting a delay.
type DelayInput struct {
	Reason                string `json:"reason" validate:"not_blank"`
	EstimatedDelayMinutes int    `json:"estimatedDelayMinutes" validate:"gt=0,lte=1440"`
}

type Transition struct {
	Event Event
	Actor domain.CrewMember
	At    time.Time
	Delay *DelayInput
}

var allowed = map[Event]map[domain.TaskStatus]bool{
	EventComplete:    {domain.TaskPending: true, domain.TaskDelayed: true},
	EventUncomplete:  {domain.TaskCompleted: true},
	EventReportDelay: {domain.TaskPending: true, domain.TaskDelayed: true, domain.TaskCompleted: true},
	EventClearDelay:  {domain.TaskDelayed: true},
}

// Allowed reports whether ev may be applied to a task in status from.
func Allowed(from domain.TaskStatus, ev Event) bool {
	return allowed[ev][from]
}

// Apply returns the task as it must be written after tr. The input task is not
// modified. On error nothing is to be written.
func Apply(task domain.Task, tr Transition) (domain.Task, error) {
	if tr.Event == EventReportDelay {
		if err := ValidateDelay(tr.Delay); err != nil {
			return task, err
		}
	}

	if !Allowed(task.Status, tr.Event) {
		return task, &apperrors.TransitionError{From: string(task.Status), Event: string(tr.Event)}
	}

	next := task
	at := tr.At.UTC()

	switch tr.Event {
	case EventComplete:
		actor := tr.Actor
		next.Status = domain.TaskCompleted
		next.CompletedBy = &actor
		next.CompletionTime = &at
		clearDelay(&next)
	case EventUncomplete:
		next.Status = domain.TaskPending
		clearCompletion(&next)
	case EventReportDelay:
		next.Status = domain.TaskDelayed
		next.IsDelayed = true
		next.DelayReport = &domain.DelayReport{
			Reason:                tr.Delay.Reason,
			EstimatedDelayMinutes: tr.Delay.EstimatedDelayMinutes,
			ReportedBy:            tr.Actor,
			Timestamp:             at,
		}
		clearCompletion(&next)
	case EventClearDelay:
		next.Status = domain.TaskPending
		clearDelay(&next)
	}

	return next, nil
}

// ValidateDelay rejects a missing report, a blank reason and an estimate
// outside 1..MaxDelayMinutes.
func ValidateDelay(in *DelayInput) error {
	if in == nil {
		return validation.Fail("reason", "must not be blank")
	}

	return validation.ValidateStruct(in)
}

// EnteredDelay is true when a write moves a task into Delayed from any other
// status. The owning turnaround is forced to Delayed exactly then.
func EnteredDelay(before, after domain.Task) bool {
	return before.Status != domain.TaskDelayed && after.Status == domain.TaskDelayed
}

func clearDelay(t *domain.Task) {
	t.IsDelayed = false
	t.DelayReport = nil
}

func clearCompletion(t *domain.Task) {
	t.CompletedBy = nil
	t.CompletionTime = nil
}

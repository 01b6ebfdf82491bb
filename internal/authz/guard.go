// Package authz decides whether an actor may change a task.
package authz

import "github.com/YusovID/turnaround-service/internal/domain"

// CanTransition permits the task's single assignee and any Supervisor. There is
// no other role override or delegation path.
func CanTransition(actor domain.CrewMember, task domain.Task) bool {
	if actor.Role == domain.RoleSupervisor {
		return true
	}

	return actor.UID == task.AssignedTo.UID
}

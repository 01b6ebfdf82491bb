// Package progress derives turnaround-level progress from its checklist.
package progress

import "github.com/YusovID/turnaround-service/internal/domain"

// Compute returns the rounded percentage of completed tasks, halves rounding
// up. An empty checklist is 0.
func Compute(tasks []domain.Task) int {
	total := len(tasks)
	if total == 0 {
		return 0
	}

	completed := 0
	for _, t := range tasks {
		if t.Status == domain.TaskCompleted {
			completed++
		}
	}

	return (200*completed + total) / (2 * total)
}

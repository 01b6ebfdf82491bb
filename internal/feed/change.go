// Package feed turns the store's change notifications into per-scope streams
// of full snapshots.
package feed

type Kind string

const (
	KindTask       Kind = "task"
	KindTurnaround Kind = "turnaround"
	KindUser       Kind = "user"
	// KindResync is emitted when notifications may have been lost, e.g. after
	// the listener reconnected. Every scope must reload.
	KindResync Kind = "resync"
)

// Change names a committed write. It carries no document data; consumers
// reload the scope they care about.
type Change struct {
	Kind         Kind   `json:"kind"`
	TurnaroundID string `json:"turnaroundId"`
	ID           string `json:"id"`
}

// Source delivers changes in commit order. The channel is closed when the
// source stops.
type Source interface {
	Changes() <-chan Change
	Close() error
}

type Matcher func(Change) bool

// TasksOf matches writes to any task of one turnaround and to the turnaround
// itself, whose crew decides who may read the checklist.
func TasksOf(turnaroundID string) Matcher {
	return func(c Change) bool {
		switch c.Kind {
		case KindResync:
			return true
		case KindTask, KindTurnaround:
			return c.TurnaroundID == turnaroundID
		}

		return false
	}
}

// Profile matches writes to one user document.
func Profile(uid string) Matcher {
	return func(c Change) bool {
		return c.Kind == KindUser && c.ID == uid
	}
}

func AnyOf(matchers ...Matcher) Matcher {
	return func(c Change) bool {
		for _, m := range matchers {
			if m(c) {
				return true
			}
		}

		return false
	}
}

// AnyTask matches writes to any task of any turnaround.
func AnyTask() Matcher {
	return func(c Change) bool {
		return c.Kind == KindResync || c.Kind == KindTask
	}
}

// TurnaroundSet matches everything that can change a user's visible
// turnarounds: turnaround documents and the user's own profile.
func TurnaroundSet(uid string) Matcher {
	return func(c Change) bool {
		switch c.Kind {
		case KindResync, KindTurnaround:
			return true
		case KindUser:
			return c.ID == uid
		}

		return false
	}
}

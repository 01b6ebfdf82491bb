// Package visibility selects which turnarounds a user may observe.
package visibility

import (
	"sort"

	"github.com/YusovID/turnaround-service/internal/domain"
)

type Mode string

const (
	// MatchUID treats a user as crew of a turnaround when any assignedCrew entry
	// carries the same uid.
	MatchUID Mode = "uid"
	// MatchIdentity requires the full {uid, name, role} snapshot to be equal. A
	// renamed user or a role change hides turnarounds the user still belongs to.
	MatchIdentity Mode = "triple"
)

type Filter struct {
	mode Mode
}

// New returns a filter for mode. Unknown modes fall back to MatchUID.
func New(mode Mode) Filter {
	if mode != MatchIdentity {
		mode = MatchUID
	}

	return Filter{mode: mode}
}

func (f Filter) Mode() Mode { return f.mode }

// Visible reports whether user may observe t.
func (f Filter) Visible(user domain.User, t domain.Turnaround) bool {
	if user.Role == domain.RoleSupervisor {
		return true
	}

	me := user.Member()

	for _, c := range t.AssignedCrew {
		switch f.mode {
		case MatchIdentity:
			if c == me {
				return true
			}
		default:
			if c.UID == me.UID {
				return true
			}
		}
	}

	return false
}

// Apply keeps the turnarounds user may observe, folds duplicates by id (the
// later entry wins) and orders the result by id.
func (f Filter) Apply(user domain.User, all []domain.Turnaround) []domain.Turnaround {
	byID := make(map[string]domain.Turnaround, len(all))

	for _, t := range all {
		if f.Visible(user, t) {
			byID[t.ID] = t
		}
	}

	result := make([]domain.Turnaround, 0, len(byID))
	for _, t := range byID {
		result = append(result, t)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result
}

package service

import (
	"github.com/YusovID/turnaround-service/internal/domain"
	"github.com/YusovID/turnaround-service/pkg/api"
)

func toAPICrewMember(m domain.CrewMember) api.CrewMember {
	return api.CrewMember{Uid: m.UID, Name: m.Name, Role: string(m.Role)}
}

func toAPITurnaround(t *domain.Turnaround) *api.Turnaround {
	crew := make([]api.CrewMember, len(t.AssignedCrew))
	for i, m := range t.AssignedCrew {
		crew[i] = toAPICrewMember(m)
	}

	return &api.Turnaround{
		Id: t.ID,
		FlightInfo: api.FlightInfo{
			FlightNumber: t.FlightInfo.FlightNumber,
			Origin:       t.FlightInfo.Origin,
			AircraftType: t.FlightInfo.AircraftType,
		},
		Gate:         t.Gate,
		Status:       string(t.Status),
		Progress:     t.Progress,
		AssignedCrew: crew,
		LastUpdated:  t.LastUpdated,
	}
}

func toAPITurnarounds(ts []domain.Turnaround) []api.Turnaround {
	out := make([]api.Turnaround, len(ts))
	for i := range ts {
		out[i] = *toAPITurnaround(&ts[i])
	}

	return out
}

func toAPITask(t *domain.Task) *api.Task {
	out := &api.Task{
		Id:             t.ID,
		Name:           t.Name,
		AssignedRole:   string(t.AssignedRole),
		AssignedTo:     api.AssignedTo{Uid: t.AssignedTo.UID, Name: t.AssignedTo.Name},
		Status:         string(t.Status),
		IsDelayed:      t.IsDelayed,
		Sequence:       t.Sequence,
		CompletionTime: t.CompletionTime,
		Revision:       t.Revision,
	}

	if t.CompletedBy != nil {
		m := toAPICrewMember(*t.CompletedBy)
		out.CompletedBy = &m
	}

	if d := t.DelayReport; d != nil {
		reason := d.Reason
		minutes := d.EstimatedDelayMinutes
		ts := d.Timestamp
		reporter := toAPICrewMember(d.ReportedBy)

		out.DelayReason = &reason
		out.EstimatedDelayMinutes = &minutes
		out.DelayTimestamp = &ts
		out.ReportedBy = &reporter
	}

	return out
}

func toAPITasks(ts []domain.Task) []api.Task {
	out := make([]api.Task, len(ts))
	for i := range ts {
		out[i] = *toAPITask(&ts[i])
	}

	return out
}

func toAPIUser(u *domain.User) *api.User {
	assigned := u.AssignedTurnarounds
	if assigned == nil {
		assigned = []string{}
	}

	return &api.User{
		Uid:                 u.UID,
		EmployeeId:          u.EmployeeID,
		FullName:            u.FullName,
		Role:                string(u.Role),
		AssignedTurnarounds: assigned,
	}
}

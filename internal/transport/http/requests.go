package http

import (
	"encoding/json"
	"strconv"

	"github.com/YusovID/turnaround-service/internal/domain"
	"github.com/YusovID/turnaround-service/internal/lifecycle"
)

type crewMemberRequest struct {
	UID  string `json:"uid" validate:"required,custom_id,max=100"`
	Name string `json:"name" validate:"required,not_blank,max=200"`
	Role string `json:"role" validate:"omitempty,crew_role"`
}

type taskRequest struct {
	ID           string `json:"id" validate:"omitempty,custom_id,max=100"`
	Name         string `json:"name" validate:"required,not_blank,max=200"`
	AssignedRole string `json:"assignedRole" validate:"required,crew_role"`
	AssignedTo   struct {
		UID  string `json:"uid" validate:"required,custom_id,max=100"`
		Name string `json:"name" validate:"max=200"`
	} `json:"assignedTo"`
	Sequence int `json:"sequence" validate:"gt=0"`
}

// provisionRequest may omit ids; they are generated.
type provisionRequest struct {
	ID         string `json:"id" validate:"omitempty,custom_id,max=100"`
	FlightInfo struct {
		FlightNumber string `json:"flightNumber" validate:"required,not_blank,max=20"`
		Origin       string `json:"origin" validate:"required,not_blank,max=20"`
		AircraftType string `json:"aircraftType" validate:"required,not_blank,max=50"`
	} `json:"flightInfo"`
	Gate         string              `json:"gate" validate:"required,not_blank,max=20"`
	Status       string              `json:"status" validate:"omitempty,turnaround_status"`
	AssignedCrew []crewMemberRequest `json:"assignedCrew" validate:"omitempty,dive"`
	Tasks        []taskRequest       `json:"tasks" validate:"required,min=1,dive"`
}

func (r provisionRequest) toDomain() domain.TurnaroundWithTasks {
	crew := make([]domain.CrewMember, len(r.AssignedCrew))
	for i, c := range r.AssignedCrew {
		crew[i] = domain.CrewMember{UID: c.UID, Name: c.Name, Role: domain.Role(c.Role)}
	}

	tasks := make([]domain.Task, len(r.Tasks))
	for i, t := range r.Tasks {
		tasks[i] = domain.Task{
			ID:           t.ID,
			Name:         t.Name,
			AssignedRole: domain.Role(t.AssignedRole),
			AssignedTo:   domain.CrewMember{UID: t.AssignedTo.UID, Name: t.AssignedTo.Name},
			Sequence:     t.Sequence,
		}
	}

	return domain.TurnaroundWithTasks{
		Turnaround: domain.Turnaround{
			ID: r.ID,
			FlightInfo: domain.FlightInfo{
				FlightNumber: r.FlightInfo.FlightNumber,
				Origin:       r.FlightInfo.Origin,
				AircraftType: r.FlightInfo.AircraftType,
			},
			Gate:         r.Gate,
			Status:       domain.TurnaroundStatus(r.Status),
			AssignedCrew: crew,
		},
		Tasks: tasks,
	}
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required,turnaround_status"`
}

type upsertUserRequest struct {
	EmployeeID string `json:"employeeId" validate:"max=50"`
	FullName   string `json:"fullName" validate:"required,not_blank,max=200"`
	Role       string `json:"role" validate:"required,crew_role"`
}

// delayRequest is checked by the service after authorization, so it carries
// no validate tags.
type delayRequest struct {
	Reason                string      `json:"reason"`
	EstimatedDelayMinutes json.Number `json:"estimatedDelayMinutes"`
}

// toInput maps an estimate that is not a whole number to 0, which the delay
// rules reject.
func (r delayRequest) toInput() lifecycle.DelayInput {
	minutes, err := strconv.Atoi(r.EstimatedDelayMinutes.String())
	if err != nil {
		minutes = 0
	}

	return lifecycle.DelayInput{Reason: r.Reason, EstimatedDelayMinutes: minutes}
}

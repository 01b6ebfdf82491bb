package domain

import (
	"time"
)

type Role string

const (
	RoleSupervisor          Role = "Supervisor"
	RoleRampAgent           Role = "Ramp Agent"
	RoleMaintenanceEngineer Role = "Maintenance Engineer"
	RoleCatering            Role = "Catering"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSupervisor, RoleRampAgent, RoleMaintenanceEngineer, RoleCatering:
		return true
	}

	return false
}

// CrewMember is a by-value snapshot of a user taken at assignment time. It is
// never refreshed when the user's profile changes.
type CrewMember struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
	Role Role   `json:"role,omitempty"`
}

type TurnaroundStatus string

const (
	TurnaroundOnTime     TurnaroundStatus = "On Time"
	TurnaroundInProgress TurnaroundStatus = "In Progress"
	TurnaroundDelayed    TurnaroundStatus = "Delayed"
	TurnaroundCompleted  TurnaroundStatus = "Completed"
)

func (s TurnaroundStatus) Valid() bool {
	switch s {
	case TurnaroundOnTime, TurnaroundInProgress, TurnaroundDelayed, TurnaroundCompleted:
		return true
	}

	return false
}

type FlightInfo struct {
	FlightNumber string
	Origin       string
	AircraftType string
}

type Turnaround struct {
	ID           string
	FlightInfo   FlightInfo
	Gate         string
	Status       TurnaroundStatus
	Progress     int
	AssignedCrew []CrewMember
	LastUpdated  time.Time
}

// TurnaroundWithTasks is the provisioning unit: a turnaround and its checklist
// are created together.
type TurnaroundWithTasks struct {
	Turnaround
	Tasks []Task
}

type User struct {
	UID                 string
	EmployeeID          string
	FullName            string
	Role                Role
	AssignedTurnarounds []string
}

// Member returns the identity snapshot that is embedded into records written
// on the user's behalf.
func (u User) Member() CrewMember {
	return CrewMember{UID: u.UID, Name: u.FullName, Role: u.Role}
}

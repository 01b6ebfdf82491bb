// Package api holds the JSON documents exchanged with crew clients.
package api

import "time"

type ErrorResponseErrorCode string

const (
	ALREADYEXISTS     ErrorResponseErrorCode = "ALREADY_EXISTS"
	CONFLICT          ErrorResponseErrorCode = "CONFLICT"
	FORBIDDEN         ErrorResponseErrorCode = "FORBIDDEN"
	INTERNAL          ErrorResponseErrorCode = "INTERNAL"
	INVALIDREQUEST    ErrorResponseErrorCode = "INVALID_REQUEST"
	INVALIDTRANSITION ErrorResponseErrorCode = "INVALID_TRANSITION"
	NOTFOUND          ErrorResponseErrorCode = "NOT_FOUND"
	UNAUTHENTICATED   ErrorResponseErrorCode = "UNAUTHENTICATED"
	UNAVAILABLE       ErrorResponseErrorCode = "UNAVAILABLE"
	VALIDATION        ErrorResponseErrorCode = "VALIDATION"
)

type ErrorResponse struct {
	Error struct {
		Code    ErrorResponseErrorCode `json:"code"`
		Message string                 `json:"message"`
	} `json:"error"`
}

type CrewMember struct {
	Uid  string `json:"uid"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

type FlightInfo struct {
	FlightNumber string `json:"flightNumber"`
	Origin       string `json:"origin"`
	AircraftType string `json:"aircraftType"`
}

type Turnaround struct {
	Id           string       `json:"id"`
	FlightInfo   FlightInfo   `json:"flightInfo"`
	Gate         string       `json:"gate"`
	Status       string       `json:"status"`
	Progress     int          `json:"progress"`
	AssignedCrew []CrewMember `json:"assignedCrew"`
	LastUpdated  time.Time    `json:"lastUpdated"`
}

type AssignedTo struct {
	Uid  string `json:"uid"`
	Name string `json:"name"`
}

type Task struct {
	Id                    string      `json:"id"`
	Name                  string      `json:"name"`
	AssignedRole          string      `json:"assignedRole"`
	AssignedTo            AssignedTo  `json:"assignedTo"`
	Status                string      `json:"status"`
	IsDelayed             bool        `json:"isDelayed"`
	Sequence              int         `json:"sequence"`
	CompletedBy           *CrewMember `json:"completedBy"`
	CompletionTime        *time.Time  `json:"completionTime"`
	DelayReason           *string     `json:"delayReason"`
	DelayTimestamp        *time.Time  `json:"delayTimestamp"`
	EstimatedDelayMinutes *int        `json:"estimatedDelayMinutes"`
	ReportedBy            *CrewMember `json:"reportedBy"`
	Revision              int64       `json:"revision"`
}

type User struct {
	Uid                 string   `json:"uid"`
	EmployeeId          string   `json:"employeeId"`
	FullName            string   `json:"fullName"`
	Role                string   `json:"role"`
	AssignedTurnarounds []string `json:"assignedTurnarounds"`
}

type TurnaroundWithTasks struct {
	Turnaround Turnaround `json:"turnaround"`
	Tasks      []Task     `json:"tasks"`
}

// StreamEvent is one server-sent snapshot of a subscribed scope.
type StreamEvent[T any] struct {
	Seq   uint64         `json:"seq"`
	Data  T              `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

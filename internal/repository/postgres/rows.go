package postgres

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/YusovID/turnaround-service/internal/domain"
	"github.com/lib/pq"
)

type crewJSON struct {
	member *domain.CrewMember
}

func (c *crewJSON) Scan(src any) error {
	if src == nil {
		c.member = nil
		return nil
	}

	b, err := jsonBytes(src)
	if err != nil {
		return err
	}

	var m domain.CrewMember
	if err := json.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("decode crew member: %w", err)
	}

	c.member = &m

	return nil
}

func (c crewJSON) Value() (driver.Value, error) {
	if c.member == nil {
		return nil, nil
	}

	b, err := json.Marshal(c.member)
	if err != nil {
		return nil, err
	}

	return string(b), nil
}

type crewListJSON []domain.CrewMember

func (c *crewListJSON) Scan(src any) error {
	if src == nil {
		*c = nil
		return nil
	}

	b, err := jsonBytes(src)
	if err != nil {
		return err
	}

	var list []domain.CrewMember
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("decode assigned crew: %w", err)
	}

	*c = list

	return nil
}

func (c crewListJSON) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}

	b, err := json.Marshal([]domain.CrewMember(c))
	if err != nil {
		return nil, err
	}

	return string(b), nil
}

func jsonBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported JSON column type %T", src)
	}
}

type turnaroundRow struct {
	ID           string       `db:"id"`
	FlightNumber string       `db:"flight_number"`
	Origin       string       `db:"origin"`
	AircraftType string       `db:"aircraft_type"`
	Gate         string       `db:"gate"`
	Status       string       `db:"status"`
	Progress     int          `db:"progress"`
	AssignedCrew crewListJSON `db:"assigned_crew"`
	LastUpdated  time.Time    `db:"last_updated"`
}

var turnaroundColumns = []string{
	"id", "flight_number", "origin", "aircraft_type", "gate",
	"status", "progress", "assigned_crew", "last_updated",
}

func (r turnaroundRow) toDomain() domain.Turnaround {
	crew := []domain.CrewMember(r.AssignedCrew)
	if crew == nil {
		crew = []domain.CrewMember{}
	}

	return domain.Turnaround{
		ID: r.ID,
		FlightInfo: domain.FlightInfo{
			FlightNumber: r.FlightNumber,
			Origin:       r.Origin,
			AircraftType: r.AircraftType,
		},
		Gate:         r.Gate,
		Status:       domain.TurnaroundStatus(r.Status),
		Progress:     r.Progress,
		AssignedCrew: crew,
		LastUpdated:  r.LastUpdated.UTC(),
	}
}

type taskRow struct {
	ID                    string     `db:"id"`
	TurnaroundID          string     `db:"turnaround_id"`
	Name                  string     `db:"name"`
	AssignedRole          string     `db:"assigned_role"`
	AssignedUID           string     `db:"assigned_uid"`
	AssignedName          string     `db:"assigned_name"`
	Status                string     `db:"status"`
	IsDelayed             bool       `db:"is_delayed"`
	Sequence              int        `db:"sequence"`
	CompletedBy           crewJSON   `db:"completed_by"`
	CompletionTime        *time.Time `db:"completion_time"`
	DelayReason           *string    `db:"delay_reason"`
	DelayTimestamp        *time.Time `db:"delay_timestamp"`
	EstimatedDelayMinutes *int       `db:"estimated_delay_minutes"`
	ReportedBy            crewJSON   `db:"reported_by"`
	Revision              int64      `db:"revision"`
}

var taskColumns = []string{
	"id", "turnaround_id", "name", "assigned_role", "assigned_uid", "assigned_name",
	"status", "is_delayed", "sequence", "completed_by", "completion_time",
	"delay_reason", "delay_timestamp", "estimated_delay_minutes", "reported_by", "revision",
}

func (r taskRow) toDomain() domain.Task {
	t := domain.Task{
		ID:           r.ID,
		TurnaroundID: r.TurnaroundID,
		Name:         r.Name,
		AssignedRole: domain.Role(r.AssignedRole),
		AssignedTo:   domain.CrewMember{UID: r.AssignedUID, Name: r.AssignedName},
		Status:       domain.TaskStatus(r.Status),
		IsDelayed:    r.IsDelayed,
		Sequence:     r.Sequence,
		CompletedBy:  r.CompletedBy.member,
		Revision:     r.Revision,
	}

	if r.CompletionTime != nil {
		ct := r.CompletionTime.UTC()
		t.CompletionTime = &ct
	}

	if r.DelayReason != nil {
		report := &domain.DelayReport{Reason: *r.DelayReason}
		if r.EstimatedDelayMinutes != nil {
			report.EstimatedDelayMinutes = *r.EstimatedDelayMinutes
		}
		if r.DelayTimestamp != nil {
			report.Timestamp = r.DelayTimestamp.UTC()
		}
		if r.ReportedBy.member != nil {
			report.ReportedBy = *r.ReportedBy.member
		}

		t.DelayReport = report
	}

	return t
}

func stateValues(t *domain.Task) map[string]any {
	values := map[string]any{
		"status":                  string(t.Status),
		"is_delayed":              t.IsDelayed,
		"completed_by":            crewJSON{member: t.CompletedBy},
		"completion_time":         t.CompletionTime,
		"delay_reason":            nil,
		"delay_timestamp":         nil,
		"estimated_delay_minutes": nil,
		"reported_by":             crewJSON{},
	}

	if d := t.DelayReport; d != nil {
		reporter := d.ReportedBy
		values["delay_reason"] = d.Reason
		values["delay_timestamp"] = d.Timestamp
		values["estimated_delay_minutes"] = d.EstimatedDelayMinutes
		values["reported_by"] = crewJSON{member: &reporter}
	}

	return values
}

type userRow struct {
	UID                 string         `db:"id"`
	EmployeeID          string         `db:"employee_id"`
	FullName            string         `db:"full_name"`
	Role                string         `db:"role"`
	AssignedTurnarounds pq.StringArray `db:"assigned_turnarounds"`
}

func (r userRow) toDomain() domain.User {
	assigned := []string(r.AssignedTurnarounds)
	if assigned == nil {
		assigned = []string{}
	}

	return domain.User{
		UID:                 r.UID,
		EmployeeID:          r.EmployeeID,
		FullName:            r.FullName,
		Role:                domain.Role(r.Role),
		AssignedTurnarounds: assigned,
	}
}

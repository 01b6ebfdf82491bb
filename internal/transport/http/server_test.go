package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/YusovID/turnaround-service/internal/apperrors"
	"github.com/YusovID/turnaround-service/internal/domain"
	"github.com/YusovID/turnaround-service/internal/feed"
	"github.com/YusovID/turnaround-service/internal/lifecycle"
	"github.com/YusovID/turnaround-service/internal/validation"
	"github.com/YusovID/turnaround-service/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	ann = domain.User{UID: "u1", FullName: "Ann", Role: domain.RoleRampAgent}
	sam = domain.User{UID: "u9", FullName: "Sam", Role: domain.RoleSupervisor}
)

type idleSource struct{}

func (idleSource) Changes() <-chan feed.Change { return nil }
func (idleSource) Close() error                { return nil }

type testServer struct {
	server      *Server
	users       *UserServiceMock
	turnarounds *TurnaroundServiceMock
	tasks       *TaskServiceMock
	hub         *feed.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	ts := &testServer{
		users:       new(UserServiceMock),
		turnarounds: new(TurnaroundServiceMock),
		tasks:       new(TaskServiceMock),
		hub:         feed.NewHub(idleSource{}, log),
	}

	a, s := ann, sam
	ts.users.On("Actor", mock.Anything, "u1").Return(&a, nil).Maybe()
	ts.users.On("Actor", mock.Anything, "u9").Return(&s, nil).Maybe()
	ts.users.On("Actor", mock.Anything, "").Return(nil, apperrors.ErrUnauthenticated).Maybe()

	ts.server = NewServer(log, ts.hub, ts.users, ts.turnarounds, ts.tasks)

	t.Cleanup(func() {
		ts.users.AssertExpectations(t)
		ts.turnarounds.AssertExpectations(t)
		ts.tasks.AssertExpectations(t)
	})

	return ts
}

func (ts *testServer) do(method, path, uid, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if uid != "" {
		req.Header.Set(actorHeader, uid)
	}

	rr := httptest.NewRecorder()
	ts.server.Routes().ServeHTTP(rr, req)

	return rr
}

func completedAPITask() *api.Task {
	return &api.Task{
		Id:           "t1-1",
		Name:         "Chocks on",
		AssignedRole: "Ramp Agent",
		AssignedTo:   api.AssignedTo{Uid: "u1", Name: "Ann"},
		Status:       "Completed",
		Sequence:     1,
		CompletedBy:  &api.CrewMember{Uid: "u1", Name: "Ann", Role: "Ramp Agent"},
	}
}

func TestServer_TaskTransitions(t *testing.T) {
	testCases := []struct {
		name                 string
		path                 string
		uid                  string
		setupMocks           func(tasks *TaskServiceMock)
		expectedStatusCode   int
		expectedResponseBody string
	}{
		{
			name: "Success - complete",
			path: "/turnarounds/t1/tasks/t1-1/complete",
			uid:  "u1",
			setupMocks: func(tasks *TaskServiceMock) {
				tasks.On("Complete", mock.Anything, ann, "t1", "t1-1").Return(completedAPITask(), nil).Once()
			},
			expectedStatusCode: http.StatusOK,
		},
		{
			name: "Forbidden - not the assignee",
			path: "/turnarounds/t1/tasks/t1-1/complete",
			uid:  "u1",
			setupMocks: func(tasks *TaskServiceMock) {
				tasks.On("Complete", mock.Anything, ann, "t1", "t1-1").Return(nil, apperrors.ErrForbidden).Once()
			},
			expectedStatusCode:   http.StatusForbidden,
			expectedResponseBody: `{"error":{"code":"FORBIDDEN","message":"task is not assigned to you; ask a supervisor"}}`,
		},
		{
			name: "Conflict - illegal transition",
			path: "/turnarounds/t1/tasks/t1-1/clear-delay",
			uid:  "u1",
			setupMocks: func(tasks *TaskServiceMock) {
				tasks.On("ClearDelay", mock.Anything, ann, "t1", "t1-1").
					Return(nil, &apperrors.TransitionError{From: "Pending", Event: "clearDelay"}).Once()
			},
			expectedStatusCode:   http.StatusConflict,
			expectedResponseBody: `{"error":{"code":"INVALID_TRANSITION","message":"cannot clearDelay a task that is Pending"}}`,
		},
		{
			name: "Conflict - concurrent write",
			path: "/turnarounds/t1/tasks/t1-1/uncomplete",
			uid:  "u1",
			setupMocks: func(tasks *TaskServiceMock) {
				tasks.On("Uncomplete", mock.Anything, ann, "t1", "t1-1").Return(nil, apperrors.ErrConflict).Once()
			},
			expectedStatusCode:   http.StatusConflict,
			expectedResponseBody: `{"error":{"code":"CONFLICT","message":"task was changed by another crew member; reload and try again"}}`,
		},
		{
			name: "Unavailable - store unreachable",
			path: "/turnarounds/t1/tasks/t1-1/complete",
			uid:  "u1",
			setupMocks: func(tasks *TaskServiceMock) {
				tasks.On("Complete", mock.Anything, ann, "t1", "t1-1").
					Return(nil, &apperrors.ConnectivityError{Op: "test", Err: errors.New("dial tcp")}).Once()
			},
			expectedStatusCode:   http.StatusServiceUnavailable,
			expectedResponseBody: `{"error":{"code":"UNAVAILABLE","message":"cannot reach the turnaround store; check your connection and try again"}}`,
		},
		{
			name:                 "Unauthenticated - no actor header",
			path:                 "/turnarounds/t1/tasks/t1-1/complete",
			setupMocks:           func(*TaskServiceMock) {},
			expectedStatusCode:   http.StatusUnauthorized,
			expectedResponseBody: `{"error":{"code":"UNAUTHENTICATED","message":"sign in with a crew profile to continue"}}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t)
			tc.setupMocks(ts.tasks)

			rr := ts.do(http.MethodPost, tc.path, tc.uid, "")

			assert.Equal(t, tc.expectedStatusCode, rr.Code)

			if tc.expectedResponseBody != "" {
				assert.JSONEq(t, tc.expectedResponseBody, rr.Body.String())
				return
			}

			var resp struct {
				Task api.Task `json:"task"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, "Completed", resp.Task.Status)
			assert.Equal(t, "u1", resp.Task.CompletedBy.Uid)
		})
	}
}

func TestServer_PostReportDelay(t *testing.T) {
	testCases := []struct {
		name                 string
		requestBody          string
		setupMocks           func(tasks *TaskServiceMock)
		expectedStatusCode   int
		expectedResponseBody string
	}{
		{
			name:        "Success",
			requestBody: `{"reason":"fuel truck late","estimatedDelayMinutes":15}`,
			setupMocks: func(tasks *TaskServiceMock) {
				tasks.On("ReportDelay", mock.Anything, ann, "t1", "t1-1",
					lifecycle.DelayInput{Reason: "fuel truck late", EstimatedDelayMinutes: 15}).
					Return(&api.Task{Id: "t1-1", Status: "Delayed", IsDelayed: true}, nil).Once()
			},
			expectedStatusCode: http.StatusOK,
		},
		{
			name:        "Fractional estimate reaches the rules as zero",
			requestBody: `{"reason":"fuel","estimatedDelayMinutes":1.5}`,
			setupMocks: func(tasks *TaskServiceMock) {
				tasks.On("ReportDelay", mock.Anything, ann, "t1", "t1-1",
					lifecycle.DelayInput{Reason: "fuel", EstimatedDelayMinutes: 0}).
					Return(nil, validation.Fail("estimatedDelayMinutes", "must be greater than 0")).Once()
			},
			expectedStatusCode:   http.StatusBadRequest,
			expectedResponseBody: `{"error":{"code":"VALIDATION","message":"field 'estimatedDelayMinutes' must be greater than 0"}}`,
		},
		{
			name:                 "Invalid JSON Body",
			requestBody:          `{"reason":`,
			setupMocks:           func(*TaskServiceMock) {},
			expectedStatusCode:   http.StatusBadRequest,
			expectedResponseBody: `{"error":{"code":"INVALID_REQUEST","message":"invalid request body"}}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t)
			tc.setupMocks(ts.tasks)

			rr := ts.do(http.MethodPost, "/turnarounds/t1/tasks/t1-1/delay", "u1", tc.requestBody)

			assert.Equal(t, tc.expectedStatusCode, rr.Code)
			if tc.expectedResponseBody != "" {
				assert.JSONEq(t, tc.expectedResponseBody, rr.Body.String())
			}
		})
	}
}

func TestServer_Turnarounds(t *testing.T) {
	t.Run("List visible", func(t *testing.T) {
		ts := newTestServer(t)
		ts.turnarounds.On("Visible", mock.Anything, ann).
			Return([]api.Turnaround{{Id: "t1", Status: "On Time", AssignedCrew: []api.CrewMember{}}}, nil).Once()

		rr := ts.do(http.MethodGet, "/turnarounds", "u1", "")
		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Turnarounds []api.Turnaround `json:"turnarounds"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp.Turnarounds, 1)
		assert.Equal(t, "t1", resp.Turnarounds[0].Id)
	})

	t.Run("Get hidden turnaround", func(t *testing.T) {
		ts := newTestServer(t)
		ts.turnarounds.On("Get", mock.Anything, ann, "t7").Return(nil, apperrors.ErrNotFound).Once()

		rr := ts.do(http.MethodGet, "/turnarounds/t7", "u1", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"error":{"code":"NOT_FOUND","message":"resource not found"}}`, rr.Body.String())
	})

	t.Run("Set status rejects unknown value before the service", func(t *testing.T) {
		ts := newTestServer(t)

		rr := ts.do(http.MethodPut, "/turnarounds/t1/status", "u9", `{"status":"Boarding"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t,
			`{"error":{"code":"VALIDATION","message":"field 'status' must be one of On Time, In Progress, Delayed, Completed"}}`,
			rr.Body.String())
	})

	t.Run("Set status", func(t *testing.T) {
		ts := newTestServer(t)
		ts.turnarounds.On("SetStatus", mock.Anything, sam, "t1", domain.TurnaroundInProgress).
			Return(&api.Turnaround{Id: "t1", Status: "In Progress"}, nil).Once()

		rr := ts.do(http.MethodPut, "/turnarounds/t1/status", "u9", `{"status":"In Progress"}`)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Provision", func(t *testing.T) {
		ts := newTestServer(t)
		ts.turnarounds.On("Provision", mock.Anything, sam, mock.MatchedBy(func(in domain.TurnaroundWithTasks) bool {
			return in.ID == "t1" && in.Gate == "B12" && len(in.Tasks) == 1 && in.Tasks[0].AssignedTo.UID == "u1"
		})).Return(&api.TurnaroundWithTasks{Turnaround: api.Turnaround{Id: "t1"}}, nil).Once()

		body := `{
			"id": "t1",
			"flightInfo": {"flightNumber": "QF1", "origin": "SYD", "aircraftType": "A380"},
			"gate": "B12",
			"assignedCrew": [{"uid": "u1", "name": "Ann", "role": "Ramp Agent"}],
			"tasks": [{"id": "t1-1", "name": "Chocks on", "assignedRole": "Ramp Agent", "assignedTo": {"uid": "u1", "name": "Ann"}, "sequence": 1}]
		}`

		rr := ts.do(http.MethodPost, "/turnarounds", "u9", body)
		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("Provision duplicate", func(t *testing.T) {
		ts := newTestServer(t)
		ts.turnarounds.On("Provision", mock.Anything, sam, mock.Anything).
			Return(nil, &apperrors.TurnaroundAlreadyExistsError{TurnaroundID: "t1"}).Once()

		body := `{"id":"t1","flightInfo":{"flightNumber":"QF1","origin":"SYD","aircraftType":"A380"},"gate":"B12",
			"tasks":[{"id":"t1-1","name":"Chocks","assignedRole":"Ramp Agent","assignedTo":{"uid":"u1"},"sequence":1}]}`

		rr := ts.do(http.MethodPost, "/turnarounds", "u9", body)
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.JSONEq(t, `{"error":{"code":"ALREADY_EXISTS","message":"turnaround with this id already exists"}}`, rr.Body.String())
	})

	t.Run("Provision with a task id already in use", func(t *testing.T) {
		ts := newTestServer(t)
		ts.turnarounds.On("Provision", mock.Anything, sam, mock.Anything).
			Return(nil, fmt.Errorf("op: %w", &apperrors.TaskAlreadyExistsError{TurnaroundID: "t2"})).Once()

		body := `{"id":"t2","flightInfo":{"flightNumber":"QF2","origin":"SYD","aircraftType":"A380"},"gate":"B14",
			"tasks":[{"id":"t1-1","name":"Chocks","assignedRole":"Ramp Agent","assignedTo":{"uid":"u1"},"sequence":1}]}`

		rr := ts.do(http.MethodPost, "/turnarounds", "u9", body)
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.JSONEq(t, `{"error":{"code":"ALREADY_EXISTS","message":"a task id in this checklist is already in use; choose different task ids"}}`, rr.Body.String())
	})

	t.Run("Provision without tasks", func(t *testing.T) {
		ts := newTestServer(t)

		body := `{"id":"t1","flightInfo":{"flightNumber":"QF1","origin":"SYD","aircraftType":"A380"},"gate":"B12","tasks":[]}`

		rr := ts.do(http.MethodPost, "/turnarounds", "u9", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestServer_Users(t *testing.T) {
	t.Run("Me", func(t *testing.T) {
		ts := newTestServer(t)
		ts.users.On("Me", ann).Return(&api.User{Uid: "u1", FullName: "Ann", Role: "Ramp Agent", AssignedTurnarounds: []string{}}).Once()

		rr := ts.do(http.MethodGet, "/users/me", "u1", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t,
			`{"user":{"uid":"u1","employeeId":"","fullName":"Ann","role":"Ramp Agent","assignedTurnarounds":[]}}`,
			rr.Body.String())
	})

	t.Run("Upsert own profile", func(t *testing.T) {
		ts := newTestServer(t)
		ts.users.On("Upsert", mock.Anything, ann, domain.User{UID: "u1", EmployeeID: "E1", FullName: "Ann Lee", Role: domain.RoleRampAgent}).
			Return(&api.User{Uid: "u1", FullName: "Ann Lee"}, nil).Once()

		rr := ts.do(http.MethodPut, "/users/u1", "u1", `{"employeeId":"E1","fullName":"Ann Lee","role":"Ramp Agent"}`)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Upsert blank name", func(t *testing.T) {
		ts := newTestServer(t)

		rr := ts.do(http.MethodPut, "/users/u1", "u1", `{"fullName":"   ","role":"Ramp Agent"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"error":{"code":"VALIDATION","message":"field 'fullName' must not be blank"}}`, rr.Body.String())
	})
}

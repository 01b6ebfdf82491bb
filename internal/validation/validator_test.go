package validation

import (
	"testing"

	"github.com/YusovID/turnaround-service/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStruct struct {
	ID      string `json:"id" validate:"required,custom_id"`
	Reason  string `json:"reason" validate:"not_blank"`
	Minutes int    `json:"estimatedDelayMinutes" validate:"gt=0"`
	Role    string `json:"role" validate:"crew_role"`
	Status  string `json:"status,omitempty" validate:"omitempty,turnaround_status"`
}

func valid() testStruct {
	return testStruct{ID: "task-1", Reason: "Late cart", Minutes: 30, Role: "Ramp Agent"}
}

func TestValidateStruct(t *testing.T) {
	testCases := []struct {
		name             string
		mutate           func(*testStruct)
		expectError      bool
		expectedErrorMsg string
	}{
		{name: "Success: all fields valid", mutate: func(*testStruct) {}},
		{
			name:             "Failure: id with spaces",
			mutate:           func(s *testStruct) { s.ID = "invalid id" },
			expectError:      true,
			expectedErrorMsg: "field 'id' must contain only letters, numbers, hyphens, and underscores",
		},
		{
			name:             "Failure: empty reason",
			mutate:           func(s *testStruct) { s.Reason = "" },
			expectError:      true,
			expectedErrorMsg: "field 'reason' must not be blank",
		},
		{
			name:             "Failure: whitespace reason",
			mutate:           func(s *testStruct) { s.Reason = "  \t " },
			expectError:      true,
			expectedErrorMsg: "field 'reason' must not be blank",
		},
		{
			name:             "Failure: zero minutes",
			mutate:           func(s *testStruct) { s.Minutes = 0 },
			expectError:      true,
			expectedErrorMsg: "field 'estimatedDelayMinutes' must be greater than 0",
		},
		{
			name:             "Failure: negative minutes",
			mutate:           func(s *testStruct) { s.Minutes = -5 },
			expectError:      true,
			expectedErrorMsg: "field 'estimatedDelayMinutes' must be greater than 0",
		},
		{
			name:             "Failure: unknown role",
			mutate:           func(s *testStruct) { s.Role = "Pilot" },
			expectError:      true,
			expectedErrorMsg: "field 'role' must be one of",
		},
		{
			name:             "Failure: unknown status",
			mutate:           func(s *testStruct) { s.Status = "Boarding" },
			expectError:      true,
			expectedErrorMsg: "field 'status' must be one of",
		},
		{
			name:             "Failure: missing id",
			mutate:           func(s *testStruct) { s.ID = "" },
			expectError:      true,
			expectedErrorMsg: "field 'id' failed on the 'required' tag",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid()
			tc.mutate(&in)

			err := ValidateStruct(in)

			if !tc.expectError {
				assert.NoError(t, err)
				return
			}

			require.IsType(t, &ValidationError{}, err)
			assert.Contains(t, err.Error(), tc.expectedErrorMsg)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Errors: []string{"error 1", "error 2"}}
	assert.Equal(t, "error 1, error 2", err.Error())
}

func TestFail(t *testing.T) {
	err := Fail("estimatedDelayMinutes", "must be a whole number of minutes")

	assert.Equal(t, "field 'estimatedDelayMinutes' must be a whole number of minutes", err.Error())
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

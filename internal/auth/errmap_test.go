package auth

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"

	"travel_agent_backend/internal/common"
)

func TestMapFirebaseError_KnownCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "rest message",
			err:        &googleapi.Error{Code: 400, Message: "EMAIL_NOT_FOUND"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "EMAIL_NOT_FOUND",
			wantMsg:    "Invalid email or password.",
		},
		{
			name:       "rest message with detail suffix",
			err:        &googleapi.Error{Code: 400, Message: "WEAK_PASSWORD : Password should be at least 6 characters"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "WEAK_PASSWORD",
			wantMsg:    "Password should be at least 6 characters.",
		},
		{
			name:       "code only in error items",
			err:        &googleapi.Error{Code: 400, Errors: []googleapi.ErrorItem{{Reason: "invalid", Message: "EMAIL_EXISTS"}}},
			wantStatus: http.StatusConflict,
			wantCode:   "EMAIL_EXISTS",
		},
		{
			name:       "wrapped",
			err:        fmt.Errorf("sign in: %w", &googleapi.Error{Code: 400, Message: "TOO_MANY_ATTEMPTS_TRY_LATER : Access disabled"}),
			wantStatus: http.StatusTooManyRequests,
			wantCode:   "TOO_MANY_ATTEMPTS_TRY_LATER",
		},
		{
			name:       "client alias",
			err:        &IdentityError{Code: "auth/user-not-found"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "EMAIL_NOT_FOUND",
			wantMsg:    "Invalid email or password.",
		},
		{
			name:       "assertion error message",
			err:        &IdentityError{Code: "FEDERATED_USER_ID_ALREADY_LINKED"},
			wantStatus: http.StatusConflict,
			wantCode:   "FEDERATED_USER_ID_ALREADY_LINKED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := MapFirebaseError(tt.err)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, apiErr.Message)
			}
		})
	}
}

func TestMapFirebaseError_UnknownCodeIsGeneric(t *testing.T) {
	for _, err := range []error{
		&googleapi.Error{Code: 400, Message: "SOMETHING_NEW"},
		&IdentityError{Code: "auth/network-request-failed"},
	} {
		apiErr := MapFirebaseError(err)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, "AUTH_ERROR", apiErr.Code)
		assert.Equal(t, genericAuthError.Message, apiErr.Message)
	}
}

func TestMapFirebaseError_NonFirebaseErrors(t *testing.T) {
	apiErr := MapFirebaseError(errors.New("dial tcp: connection refused"))
	assert.ErrorIs(t, apiErr, common.ErrServiceUnavailable)

	apiErr = MapFirebaseError(&googleapi.Error{Code: 503, Message: "Service Unavailable"})
	assert.ErrorIs(t, apiErr, common.ErrServiceUnavailable)

	apiErr = MapFirebaseError(common.ErrForbidden)
	assert.Same(t, common.ErrForbidden, apiErr)

	assert.Nil(t, MapFirebaseError(nil))
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "INVALID_PASSWORD", ErrorCode(&googleapi.Error{Message: "INVALID_PASSWORD"}))
	assert.Equal(t, "", ErrorCode(&googleapi.Error{Message: "Invalid JSON payload"}))
	assert.Equal(t, "", ErrorCode(nil))
}

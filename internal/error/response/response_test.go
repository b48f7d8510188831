package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axxaxinx/user-management-final-123/internal/error/apperror"
	"github.com/axxaxinx/user-management-final-123/internal/error/code"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func run(t *testing.T, err error) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/requests/1", nil)

	Error(c, err)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestErrorMapsKindsToStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   int
	}{
		{"validation", apperror.Validation("bad"), http.StatusBadRequest, code.ErrValidation},
		{"forbidden is 401", apperror.Forbidden("Unauthorized"), http.StatusUnauthorized, code.ErrUnauthorized},
		{"not found", apperror.NotFound("Request not found").WithCode(code.ErrRequestNotFound), http.StatusNotFound, code.ErrRequestNotFound},
		{"invalid state", apperror.InvalidState("Can only delete pending requests"), http.StatusBadRequest, code.ErrInvalidState},
		{"conflict", fmt.Errorf("wrap: %w", apperror.Conflict("exists")), http.StatusConflict, code.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := run(t, tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestErrorHidesDetailsInRelease(t *testing.T) {
	_, body := run(t, errors.New("dial tcp: refused"))
	assert.Equal(t, code.ErrUnknown, body.Code)
	assert.NotNil(t, body.Data)

	gin.SetMode(gin.ReleaseMode)
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	w, body := run(t, errors.New("dial tcp: refused"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Nil(t, body.Data)
}

func TestCodeStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusConflict, code.GetStatus(code.ErrDepartmentExists))
	assert.Equal(t, http.StatusBadRequest, code.GetStatus(code.ErrRequestNotPending))
	assert.Equal(t, http.StatusInternalServerError, code.GetStatus(999999))
	assert.Equal(t, "Unknown error", code.GetMessage(999999))
}

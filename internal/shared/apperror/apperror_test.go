package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"aisg-audit/internal/shared/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestToHTTP(t *testing.T) {
	t.Run("app error keeps status and details", func(t *testing.T) {
		err := apperror.ErrInvalidInput.WithDetails([]string{"x"})
		httpErr := apperror.ToHTTP(fmt.Errorf("wrapped: %w", err))

		assert.Equal(t, http.StatusBadRequest, httpErr.Status)
		assert.Equal(t, apperror.CodeInvalidInput, httpErr.Code)
		assert.Equal(t, []string{"x"}, httpErr.Details)
	})

	t.Run("unknown error becomes internal", func(t *testing.T) {
		httpErr := apperror.ToHTTP(errors.New("db exploded"))

		assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
		assert.Equal(t, apperror.CodeInternalError, httpErr.Code)
		assert.Equal(t, "Internal server error", httpErr.Message)
	})
}

func TestAppError_IsSurvivesWithDetails(t *testing.T) {
	withDetails := apperror.ErrNotFound.WithDetails(map[string]string{"id": "1"})

	assert.True(t, errors.Is(withDetails, apperror.ErrNotFound))
	assert.False(t, errors.Is(withDetails, apperror.ErrForbidden))
	assert.Nil(t, apperror.ErrNotFound.Details)
}

func TestMapValidationError(t *testing.T) {
	type payload struct {
		EmployeeID string `validate:"required"`
		Score      int    `validate:"min=1"`
	}

	v := validator.New()
	err := v.Struct(payload{Score: 0})

	mapped := apperror.MapValidationError(err)

	var appErr *apperror.AppError
	assert.True(t, errors.As(mapped, &appErr))
	assert.Equal(t, "Employeeid is required", appErr.Message)

	violations, ok := appErr.Details.([]apperror.FieldViolation)
	assert.True(t, ok)
	assert.Len(t, violations, 2)
	assert.Equal(t, "must be at least 1", violations[1].Reason)
}

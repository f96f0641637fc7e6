package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code int
		kind Kind
		msg  string
	}{
		{"not found", NewNotFoundError("Batch"), http.StatusNotFound, KindNotFound, "Batch not found"},
		{"invalid argument", NewInvalidArgumentError("Amount must be positive"), http.StatusBadRequest, KindInvalidArgument, "Amount must be positive"},
		{"invalid state", NewInvalidStateError("Batch is completed"), http.StatusBadRequest, KindInvalidState, "Batch is completed"},
		{"conflict", NewConflictError("Phone in use"), http.StatusConflict, KindConflict, "Phone in use"},
		{"bad request", NewBadRequestError("Bad input"), http.StatusBadRequest, KindInvalidArgument, "Bad input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.Equal(t, tt.msg, tt.err.Error())
		})
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError([]FieldError{{Field: "price", Message: "must not be negative"}})

	assert.Equal(t, http.StatusBadRequest, err.Code)
	assert.Equal(t, KindInvalidArgument, err.Kind)
	assert.Len(t, err.Errors, 1)
}

func TestIsKind_Wrapped(t *testing.T) {
	err := fmt.Errorf("add discount: %w", NewInvalidStateError("Batch is completed"))

	assert.True(t, IsAppError(err))
	assert.True(t, IsKind(err, KindInvalidState))
	assert.False(t, IsKind(err, KindInvalidArgument))
	assert.False(t, IsKind(errors.New("boom"), KindInternal))
}

func TestGetAppError(t *testing.T) {
	notFound := NewNotFoundError("Customer")
	assert.Same(t, notFound, GetAppError(fmt.Errorf("load: %w", notFound)))

	internal := GetAppError(errors.New("connection reset"))
	assert.Equal(t, http.StatusInternalServerError, internal.Code)
	assert.Equal(t, KindInternal, internal.Kind)
	assert.Equal(t, "Internal server error", internal.Message)
}

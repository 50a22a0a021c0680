package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "message only",
			err:  NotFound("product not found"),
			want: "product not found",
		},
		{
			name: "message with cause",
			err:  Wrap(errors.New("connection refused"), ErrCodeUnavailable, "upstream call failed"),
			want: "upstream call failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := Wrapf(cause, ErrCodeUnavailable, "request %s", "/Category")

	require.Error(t, err)
	assert.True(t, errors.Is(err, cause))
	assert.True(t, IsUnavailable(err))
	assert.Equal(t, "request /Category: boom", err.Error())
}

func TestWrap_NilReturnsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Wrap(nil, ErrCodeInternal, "ignored"))
	assert.Nil(t, Wrapf(nil, ErrCodeInternal, "ignored %d", 1))
}

func TestCodePredicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"not found", NotFoundf("product %d", 42), IsNotFound, true},
		{"unauthorized", Unauthorized("login required"), IsUnauthorized, true},
		{"validation", Validation("email is required"), IsValidation, true},
		{"unavailable", Unavailable("api down"), IsUnavailable, true},
		{"internal", Internalf("oops %d", 1), IsInternal, true},
		{"wrapped keeps code", fmt.Errorf("outer: %w", Unauthorized("nope")), IsUnauthorized, true},
		{"plain error has no code", errors.New("plain"), IsNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestGetCodeAndField(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ErrCodeValidation, GetCode(ValidationField("email", "email is required")))
	assert.Equal(t, "email", GetField(ValidationField("email", "email is required")))
	assert.Equal(t, ErrorCode(""), GetCode(errors.New("plain")))
	assert.Equal(t, "", GetField(errors.New("plain")))
}

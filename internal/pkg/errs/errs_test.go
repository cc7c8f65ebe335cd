package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"guildchat/internal/pkg/logx"
)

func TestMain(m *testing.M) {
	logx.Silence()
	m.Run()
}

func TestNewErrorStatusByClass(t *testing.T) {
	tests := []struct {
		code   int
		status int
	}{
		{ErrValidationFailed, http.StatusBadRequest},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrNotServerOwner, http.StatusForbidden},
		{ErrUserNotFound, http.StatusNotFound},
		{ErrEmailAlreadyExists, http.StatusConflict},
		{ErrAlreadyFriends, http.StatusConflict},
		{ErrUnknown, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		err := NewError(tc.code)
		if err.Code != tc.code {
			t.Errorf("NewError(%d).Code = %d", tc.code, err.Code)
		}
		if err.Status != tc.status {
			t.Errorf("NewError(%d).Status = %d, want %d", tc.code, err.Status, tc.status)
		}
	}
}

func TestNewErrorUnknownCode(t *testing.T) {
	err := NewError(424242)
	if err.Code != ErrUnknown {
		t.Errorf("unknown code mapped to %d, want %d", err.Code, ErrUnknown)
	}
}

func TestNewErrorFormatsDetails(t *testing.T) {
	err := NewError(ErrValidationFailed, "email")
	if err.Message != "Invalid field: email." {
		t.Errorf("Message = %q", err.Message)
	}

	// templates are not mutated by formatting
	if again := NewError(ErrValidationFailed); again.Message != "Invalid field: %s." {
		t.Errorf("template mutated: %q", again.Message)
	}
}

func TestFromAndIsCode(t *testing.T) {
	wrapped := fmt.Errorf("respond: %w", NewError(ErrFriendRequestNotFound))

	if got := From(wrapped); got.Code != ErrFriendRequestNotFound {
		t.Errorf("From(wrapped).Code = %d", got.Code)
	}
	if !IsCode(wrapped, ErrFriendRequestNotFound) {
		t.Error("IsCode(wrapped) = false")
	}
	if IsCode(errors.New("disk full"), ErrFriendRequestNotFound) {
		t.Error("IsCode(plain error) = true")
	}
	if got := From(errors.New("disk full")); got.Code != ErrUnknown {
		t.Errorf("From(plain).Code = %d, want %d", got.Code, ErrUnknown)
	}
	if From(nil) != nil {
		t.Error("From(nil) should be nil")
	}
}

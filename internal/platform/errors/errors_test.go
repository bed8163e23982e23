package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorMessageIncludesCause(t *testing.T) {
	err := Wrap(CodeAvatarSynthesisFailed, "write avatar", stderrors.New("disk full"))
	if got := err.Error(); got != "write avatar: disk full" {
		t.Fatalf("Error() = %q, want %q", got, "write avatar: disk full")
	}
	if got := New(CodeRoomFull, "room is full").Error(); got != "room is full" {
		t.Fatalf("Error() = %q, want %q", got, "room is full")
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("join: %w", New(CodeRoomFull, "room 7 is full"))
	if !stderrors.Is(err, &Error{Code: CodeRoomFull}) {
		t.Fatal("expected errors.Is to match wrapped code")
	}
	if stderrors.Is(err, &Error{Code: CodeRoomNotFound}) {
		t.Fatal("expected errors.Is to reject other code")
	}
	if !HasCode(err, CodeRoomFull) {
		t.Fatal("expected HasCode to match")
	}
}

func TestUnwrapReachesCause(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(CodeAvatarSynthesisFailed, "render", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("CodeOf(plain) = %q, want %q", got, CodeUnknown)
	}
	if got := CodeOf(fmt.Errorf("x: %w", New(CodeNicknameTaken, "taken"))); got != CodeNicknameTaken {
		t.Fatalf("CodeOf(wrapped) = %q, want %q", got, CodeNicknameTaken)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeAvatarInvalidSize, http.StatusBadRequest},
		{CodeMessageTooLong, http.StatusBadRequest},
		{CodeUserNotFound, http.StatusNotFound},
		{CodeRoomPasswordMismatch, http.StatusForbidden},
		{CodeNicknameTaken, http.StatusConflict},
		{CodeAvatarSynthesisFailed, http.StatusInternalServerError},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.code.HTTPStatus(); got != tt.want {
			t.Fatalf("%s.HTTPStatus() = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestLocalize(t *testing.T) {
	err := WithMetadata(CodeNicknameTaken, "nickname taken", map[string]string{"Nickname": "Fox"})
	if got := Localize(err, "en-US"); got != "Nickname Fox is already taken" {
		t.Fatalf("Localize(en) = %q", got)
	}
	if got := Localize(err, "ru-RU,ru;q=0.9"); got != "Ник Fox уже занят" {
		t.Fatalf("Localize(ru) = %q", got)
	}
	if got := Localize(stderrors.New("plain"), ""); got != "Something went wrong. Please try again" {
		t.Fatalf("Localize(plain) = %q", got)
	}
}

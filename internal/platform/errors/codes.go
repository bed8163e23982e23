// Package errors provides structured error handling with i18n support.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Generic errors
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"

	// Avatar errors
	CodeAvatarInvalidSize     Code = "AVATAR_INVALID_SIZE"
	CodeAvatarSynthesisFailed Code = "AVATAR_SYNTHESIS_FAILED"

	// User errors
	CodeUserNotFound          Code = "USER_NOT_FOUND"
	CodeUserAlreadyRegistered Code = "USER_ALREADY_REGISTERED"
	CodeNicknameInvalid       Code = "NICKNAME_INVALID"
	CodeNicknameTaken         Code = "NICKNAME_TAKEN"
	CodeNicknameThemeUnknown  Code = "NICKNAME_THEME_UNKNOWN"

	// Room errors
	CodeRoomNameInvalid      Code = "ROOM_NAME_INVALID"
	CodeRoomCapacityInvalid  Code = "ROOM_CAPACITY_INVALID"
	CodeRoomNotFound         Code = "ROOM_NOT_FOUND"
	CodeRoomFull             Code = "ROOM_FULL"
	CodeRoomPasswordMismatch Code = "ROOM_PASSWORD_MISMATCH"
	CodeRoomAlreadyMember    Code = "ROOM_ALREADY_MEMBER"
	CodeRoomNotMember        Code = "ROOM_NOT_MEMBER"

	// Message errors
	CodeMessageEmpty   Code = "MESSAGE_EMPTY"
	CodeMessageTooLong Code = "MESSAGE_TOO_LONG"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeInvalidArgument,
		CodeAvatarInvalidSize,
		CodeNicknameInvalid,
		CodeNicknameThemeUnknown,
		CodeRoomNameInvalid,
		CodeRoomCapacityInvalid,
		CodeMessageEmpty,
		CodeMessageTooLong:
		return http.StatusBadRequest

	// Not found
	case CodeNotFound,
		CodeUserNotFound,
		CodeRoomNotFound:
		return http.StatusNotFound

	// Forbidden - caller lacks access to the room
	case CodeRoomPasswordMismatch,
		CodeRoomNotMember:
		return http.StatusForbidden

	// Conflict - state doesn't allow operation
	case CodeUserAlreadyRegistered,
		CodeNicknameTaken,
		CodeRoomFull,
		CodeRoomAlreadyMember:
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}

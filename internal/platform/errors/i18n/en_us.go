package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnknown               = "UNKNOWN"
	CodeInvalidArgument       = "INVALID_ARGUMENT"
	CodeNotFound              = "NOT_FOUND"
	CodeAvatarInvalidSize     = "AVATAR_INVALID_SIZE"
	CodeAvatarSynthesisFailed = "AVATAR_SYNTHESIS_FAILED"
	CodeUserNotFound          = "USER_NOT_FOUND"
	CodeUserAlreadyRegistered = "USER_ALREADY_REGISTERED"
	CodeNicknameInvalid       = "NICKNAME_INVALID"
	CodeNicknameTaken         = "NICKNAME_TAKEN"
	CodeNicknameThemeUnknown  = "NICKNAME_THEME_UNKNOWN"
	CodeRoomNameInvalid       = "ROOM_NAME_INVALID"
	CodeRoomCapacityInvalid   = "ROOM_CAPACITY_INVALID"
	CodeRoomNotFound          = "ROOM_NOT_FOUND"
	CodeRoomFull              = "ROOM_FULL"
	CodeRoomPasswordMismatch  = "ROOM_PASSWORD_MISMATCH"
	CodeRoomAlreadyMember     = "ROOM_ALREADY_MEMBER"
	CodeRoomNotMember         = "ROOM_NOT_MEMBER"
	CodeMessageEmpty          = "MESSAGE_EMPTY"
	CodeMessageTooLong        = "MESSAGE_TOO_LONG"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		CodeUnknown:         "Something went wrong. Please try again",
		CodeInvalidArgument: "Invalid request: {{.Reason}}",
		CodeNotFound:        "Not found",

		// Avatar errors
		CodeAvatarInvalidSize:     "Avatar size must be between 1 and {{.Max}} pixels",
		CodeAvatarSynthesisFailed: "The avatar could not be generated right now",

		// User errors
		CodeUserNotFound:          "Profile not found. Start by registering a nickname",
		CodeUserAlreadyRegistered: "You already have a profile",
		CodeNicknameInvalid:       "Nickname must be {{.Min}} to {{.Max}} characters of letters, digits, dashes or underscores",
		CodeNicknameTaken:         "Nickname {{.Nickname}} is already taken",
		CodeNicknameThemeUnknown:  "Unknown nickname theme {{.Theme}}",

		// Room errors
		CodeRoomNameInvalid:      "Room name must be 1 to {{.Max}} characters",
		CodeRoomCapacityInvalid:  "Room capacity must be between 2 and {{.Max}}",
		CodeRoomNotFound:         "Room not found",
		CodeRoomFull:             "Room is full",
		CodeRoomPasswordMismatch: "Wrong room password",
		CodeRoomAlreadyMember:    "You are already in this room",
		CodeRoomNotMember:        "You are not in this room",

		// Message errors
		CodeMessageEmpty:   "Message cannot be empty",
		CodeMessageTooLong: "Message must be at most {{.Max}} characters",
	},
}

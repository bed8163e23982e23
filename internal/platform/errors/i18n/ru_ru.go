package i18n

var ruRUCatalog = &Catalog{
	locale: "ru-RU",
	messages: map[Code]string{
		CodeUnknown:         "Произошла ошибка. Попробуй снова",
		CodeInvalidArgument: "Некорректный запрос: {{.Reason}}",
		CodeNotFound:        "Не найдено",

		CodeAvatarInvalidSize:     "Размер аватарки должен быть от 1 до {{.Max}} пикселей",
		CodeAvatarSynthesisFailed: "Не удалось создать аватарку",

		CodeUserNotFound:          "Профиль не найден. Начни с выбора ника",
		CodeUserAlreadyRegistered: "У тебя уже есть профиль",
		CodeNicknameInvalid:       "Ник должен содержать от {{.Min}} до {{.Max}} символов: буквы, цифры, дефисы, подчеркивания",
		CodeNicknameTaken:         "Ник {{.Nickname}} уже занят",
		CodeNicknameThemeUnknown:  "Неизвестная тематика ника {{.Theme}}",

		CodeRoomNameInvalid:      "Название комнаты должно содержать от 1 до {{.Max}} символов",
		CodeRoomCapacityInvalid:  "Вместимость комнаты должна быть от 2 до {{.Max}}",
		CodeRoomNotFound:         "Комната не найдена",
		CodeRoomFull:             "Комната заполнена",
		CodeRoomPasswordMismatch: "Неверный пароль комнаты",
		CodeRoomAlreadyMember:    "Ты уже в этой комнате",
		CodeRoomNotMember:        "Ты не состоишь в этой комнате",

		CodeMessageEmpty:   "Сообщение не может быть пустым",
		CodeMessageTooLong: "Сообщение должно быть не длиннее {{.Max}} символов",
	},
}

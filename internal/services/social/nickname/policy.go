package nickname

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"

	apperrors "github.com/louisbranch/nois/internal/platform/errors"
)

// Length bounds in runes.
const (
	MinLength = 3
	MaxLength = 20
)

// Nickname is a validated nickname and its uniqueness key.
type Nickname struct {
	// Display is the trimmed nickname as the user typed it.
	Display string
	// Key is the case-folded form used for uniqueness checks.
	Key string
}

// Canonicalize trims input, validates it against the nickname policy and
// derives its case-insensitive key.
func Canonicalize(input string) (Nickname, error) {
	display := strings.TrimSpace(input)
	length := utf8.RuneCountInString(display)
	if length < MinLength || length > MaxLength {
		return Nickname{}, invalid("nickname must be between 3 and 20 characters")
	}
	for _, r := range display {
		if !allowedRune(r) {
			return Nickname{}, invalid("nickname contains " + strconv.QuoteRune(r))
		}
	}
	return Nickname{
		Display: display,
		Key:     cases.Fold().String(display),
	}, nil
}

func allowedRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'
}

func invalid(message string) error {
	return apperrors.WithMetadata(apperrors.CodeNicknameInvalid, message, map[string]string{
		"Min": strconv.Itoa(MinLength),
		"Max": strconv.Itoa(MaxLength),
	})
}

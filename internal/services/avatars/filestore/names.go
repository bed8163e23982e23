package filestore

import (
	"encoding/hex"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/zeebo/blake3"
)

const (
	// Extension is appended to every avatar file name.
	Extension = ".png"

	// emptyStem replaces identities that sanitise to nothing.
	emptyStem = "avatar"

	contentHashChars = 8
	randomizedMarker = "r"
)

// Sanitize keeps letters, digits, '-' and '_' of identity for use in a file
// name.
func Sanitize(identity string) string {
	var builder strings.Builder
	builder.Grow(len(identity))
	for _, r := range identity {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			builder.WriteRune(r)
		}
	}
	if builder.Len() == 0 {
		return emptyStem
	}
	return builder.String()
}

// ContentHash returns the short hex digest naming a deterministic avatar.
func ContentHash(identity string, size int) string {
	sum := blake3.Sum256([]byte(identity + "_" + strconv.Itoa(size)))
	return hex.EncodeToString(sum[:])[:contentHashChars]
}

// DeterministicName names the cached avatar of (identity, size). The hash is
// taken over the unsanitised identity so identities that sanitise alike
// still get distinct files.
func DeterministicName(identity string, size int) string {
	return Sanitize(identity) + "_" + ContentHash(identity, size) + Extension
}

// RandomizedName names a one-off avatar generated at. Its suffix starts with
// a non-hex marker, so it can never equal a DeterministicName.
func RandomizedName(identity string, at time.Time) string {
	return Sanitize(identity) + "_" + randomizedMarker + strconv.FormatInt(at.UnixNano(), 10) + Extension
}

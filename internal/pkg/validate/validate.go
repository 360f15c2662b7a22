package validate

import (
	"strings"
	"unicode"
)

const maxUserIDLen = 128

// Match ids join two user ids with this separator.
const pairSeparator = '_'

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// UserID accepts opaque ids up to 128 bytes without whitespace, control
// characters or underscores.
func UserID(value string) bool {
	if value == "" || len(value) > maxUserIDLen {
		return false
	}
	for _, r := range value {
		if r == pairSeparator || unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}

package protocol

import (
	"errors"
	"strings"
)

// Separator delimits fields in a wire message. Field values must not contain it.
const Separator = "|"

const separatorRune = '|'

// ErrMalformed is returned when a message does not have the field layout
// expected for its channel.
var ErrMalformed = errors.New("malformed message")

// Encode joins fields into a single wire message.
func Encode(fields []string) string {
	return strings.Join(fields, Separator)
}

// Decode splits a wire message into its fields. Empty tokens are skipped, so
// runs of separators collapse and an empty field cannot be represented.
func Decode(msg string) []string {
	return strings.FieldsFunc(msg, func(r rune) bool {
		return r == separatorRune
	})
}

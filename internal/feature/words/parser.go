package words

import (
	"errors"
	"strings"
)

// ErrMissingWord signals that a word command was issued without an argument.
var ErrMissingWord = errors.New("word argument is required")

// ParseWordArg extracts the single word argument from a command's argument
// block. Surrounding whitespace is dropped; multi-word input keeps only the
// first token.
func ParseWordArg(raw string) (string, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return "", ErrMissingWord
	}

	return fields[0], nil
}

package dice

import "regexp"

var (
	// unsupportedChars matches everything the lexer cannot use. Cyrillic is
	// limited to а-я/А-Я; recognizers emit "д" for the spoken "d".
	unsupportedChars = regexp.MustCompile(`[^a-zA-Zа-яА-Я0-9+-]`)
	letterRun        = regexp.MustCompile(`[a-zA-Zа-яА-Я]+`)
)

// Normalize strips recognizer noise from raw so that only digits, '+', '-' and
// the dice marker 'd' remain. Every run of letters collapses to a single 'd',
// so "три d8", "д8" and "dice 8" all reduce to "d8".
//
// Postcondition: the result contains only characters from {0-9, d, +, -}.
func Normalize(raw string) string {
	s := unsupportedChars.ReplaceAllString(raw, "")
	return letterRun.ReplaceAllString(s, "d")
}

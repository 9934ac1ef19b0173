package extract

import (
	"strings"
	"unicode/utf8"
)

// plainText passes content through, replacing invalid UTF-8 sequences so
// downstream indexing never sees broken runes.
func plainText(content []byte) (string, error) {
	if utf8.Valid(content) {
		return string(content), nil
	}
	return strings.ToValidUTF8(string(content), "�"), nil
}

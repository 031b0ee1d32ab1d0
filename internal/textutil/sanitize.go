package textutil

import (
	"strings"
	"unicode"
)

// fileNameReplacer maps path separators and shell-hostile characters.
var fileNameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName keeps a title readable as a file name. Separators become
// underscores, control characters and shell metacharacters are dropped, and
// leading or trailing dots and spaces are trimmed. It returns fallback when
// nothing usable remains.
func SanitizeFileName(name, fallback string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.Trim(fileNameReplacer.Replace(name), ". \t")
	if name == "" {
		return fallback
	}
	return name
}

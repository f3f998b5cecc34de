package conversion

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"docconv/internal/config"

	"golang.org/x/text/unicode/norm"
)

const (
	// fallbackStem replaces a name that sanitizes to nothing.
	fallbackStem = "document"

	maxExtLength = 16
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	unsafeChars   = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

	windowsDeviceNames = map[string]bool{
		"CON": true, "PRN": true, "AUX": true, "NUL": true,
		"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
		"COM6": true, "COM7": true, "COM8": true, "COM9": true,
		"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
		"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
	}
)

// SanitizeFilename reduces an untrusted upload name to a leaf that is safe to
// join under original/. The result is never empty, never "." or "..", and
// never contains a path separator.
//
//	"../../etc/passwd"                 -> "passwd"
//	`C:\Users\x\Rapport final.docx` -> "Rapport_final.docx"
//	"Résumé.odt"                       -> "Resume.odt"
func SanitizeFilename(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	ext := filepath.Ext(name)
	stem := cleanPart(strings.TrimSuffix(name, ext))
	ext = cleanPart(ext)

	if stem == "" {
		stem = fallbackStem
	}
	if windowsDeviceNames[strings.ToUpper(stem)] {
		stem = "_" + stem
	}
	if len(ext) > maxExtLength {
		ext = strings.Trim(ext[:maxExtLength], "._")
	}
	if ext != "" {
		ext = "." + ext
	}

	if limit := config.MaxFilenameLength - len(ext); len(stem) > limit {
		stem = strings.TrimRight(stem[:limit], "._")
	}
	return stem + ext
}

// Stem is the sanitized name without its final extension.
func Stem(sanitized string) string {
	stem := strings.TrimSuffix(sanitized, filepath.Ext(sanitized))
	if stem == "" {
		return fallbackStem
	}
	return stem
}

// cleanPart folds to ASCII, joins whitespace with underscores and drops
// anything outside [A-Za-z0-9_.-]. Leading and trailing dots and underscores
// are stripped so "..", ".hidden" and "_" cannot survive.
func cleanPart(s string) string {
	s = foldASCII(s)
	s = whitespaceRun.ReplaceAllString(strings.TrimSpace(s), "_")
	s = unsafeChars.ReplaceAllString(s, "")
	return strings.Trim(s, "._")
}

// foldASCII decomposes compatibility characters (NFKD) and drops what is
// left outside ASCII, so accented letters keep their base letter.
func foldASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, norm.NFKD.String(s))
}

package validate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	reQ    = regexp.MustCompile(`^[A-Za-z0-9 ._/'\\-]{1,50}$`)
	reSKU  = regexp.MustCompile(`^[A-Za-z0-9_./-]{0,32}$`)
	reUnit = regexp.MustCompile(`^[A-Za-z. ]{1,12}$`)
	reDate = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)
)

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQ.MatchString(s)
}

// Name validates a displayable name with a reasonable max length. Empty is
// allowed for item names; callers decide.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return "", false
	}
	return s, true
}

func SKU(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reSKU.MatchString(s)
}

func Category(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && len(s) <= 30
}

func Unit(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reUnit.MatchString(s)
}

func Date(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reDate.MatchString(s)
}

// Int parses a whole number. Signs are allowed; the ledger decides what a
// negative means.
func Int(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n > 1_000_000 || n < -1_000_000 {
		return 0, false
	}
	return n, true
}

// ID validates a numeric resource id from the path.
func ID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n, err == nil && n > 0
}

const maxNotes = 200

// Notes trims free text and caps it at maxNotes bytes without splitting a
// character.
func Notes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxNotes {
		return s
	}
	cut := maxNotes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.TrimSpace(s[:cut])
}

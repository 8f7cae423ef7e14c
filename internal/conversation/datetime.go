package conversation

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Dates travel through the system as DD-MM-YYYY tokens; the model is
// prompted to emit exactly that shape and free-form user input is rewritten
// to it before the completion call.

var (
	slashDateRE = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)
	clockRE     = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?$`)
	canonDateRE = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)
)

// NormalizeWrittenDate rewrites any D/M/YYYY-shaped substring to the
// canonical DD-MM-YYYY token and leaves everything else verbatim. The model
// extracts dates more reliably when the separator is consistent.
func NormalizeWrittenDate(text string) string {
	return slashDateRE.ReplaceAllStringFunc(text, func(m string) string {
		parts := slashDateRE.FindStringSubmatch(m)
		day, _ := strconv.Atoi(parts[1])
		month, _ := strconv.Atoi(parts[2])
		return fmt.Sprintf("%02d-%02d-%s", day, month, parts[3])
	})
}

// ParseCanonicalDate parses a DD-MM-YYYY token. It reports false unless the
// token splits into exactly three numeric day/month/year components that
// form a real calendar date.
func ParseCanonicalDate(token string) (time.Time, bool) {
	m := canonDateRE.FindStringSubmatch(token)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.Parse("2-1-2006", fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3]))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseCanonicalTime accepts only HH:MM or HH:MM:SS 24-hour tokens. Callers
// fall back to a policy default when it reports false.
func ParseCanonicalTime(token string) (string, bool) {
	if !clockRE.MatchString(token) {
		return "", false
	}
	return token, true
}

// Today renders the reference date injected into every completion request so
// the model resolves relative expressions ("tomorrow", "next Friday")
// consistently. Compute it once per turn, never cache it across turns.
func Today(now time.Time) string {
	return now.Format("02-01-2006")
}

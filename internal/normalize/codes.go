package normalize

import (
	"regexp"
	"strings"
)

var nonCodeChars = regexp.MustCompile(`[^A-Za-z0-9.\-]`)

// Code trims whitespace, uppercases, and strips characters that cannot
// appear in ICD-10 or LOINC codes. Returns "" if nothing survives.
func Code(v string) string {
	s := strings.TrimSpace(v)
	if s == "" {
		return ""
	}
	s = strings.ToUpper(s)
	return nonCodeChars.ReplaceAllString(s, "")
}

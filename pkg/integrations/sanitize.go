package integrations

import (
	"strings"

	"sdr_agent/pkg/models"
)

var soqlStripper = strings.NewReplacer(
	"'", "",
	`"`, "",
	";", "",
	`\`, "",
)

// SanitizeSOQL removes characters significant to query syntax before a
// value is interpolated into a SOQL string. Stripping (rather than
// escaping) keeps the operation idempotent:
// SanitizeSOQL(SanitizeSOQL(x)) == SanitizeSOQL(x).
func SanitizeSOQL(value string) string {
	return soqlStripper.Replace(value)
}

// SanitizeEmailForQuery sanitizes an email and re-validates that the
// result is still a syntactically valid address, closing the injection
// vector without letting a mangled address through.
func SanitizeEmailForQuery(email string) (string, error) {
	sanitized := SanitizeSOQL(email)
	if err := models.ValidateEmail(sanitized); err != nil {
		return "", err
	}
	return sanitized, nil
}

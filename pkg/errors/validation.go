package errors

import (
	"regexp"
	"strings"
)

// loginPattern follows GitHub's username rules: alphanumerics and single
// hyphens, no leading or trailing hyphen.
var loginPattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9]|-[A-Za-z0-9])*$`)

// maxLoginLength is GitHub's upper bound for user and organization logins.
const maxLoginLength = 39

// ValidateLogin validates a GitHub login before it is used in a query,
// a cache key or a URL path.
func ValidateLogin(login string) error {
	login = strings.TrimSpace(login)
	if login == "" {
		return New(ErrCodeInvalidLogin, "login cannot be empty")
	}
	if len(login) > maxLoginLength {
		return New(ErrCodeInvalidLogin, "login too long (max %d characters)", maxLoginLength)
	}
	if !loginPattern.MatchString(login) {
		return New(ErrCodeInvalidLogin, "login contains invalid characters: %q", login)
	}
	return nil
}

// ValidateFormat checks that format is one of the allowed output formats.
func ValidateFormat(format string, allowed []string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (allowed: %s)", format, strings.Join(allowed, ", "))
}

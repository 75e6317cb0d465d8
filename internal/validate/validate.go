// Package validate checks user input before it is sent to the backend, using
// the rules from the config package.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/todoclient/internal/client/config"
)

var (
	ErrInvalidEmail = errors.New("please enter a valid email address")
	ErrRequired     = errors.New("value is required")
	ErrTooLong      = errors.New("value is too long")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// PasswordResult lists every rule a password failed. Valid is true when
// Problems is empty.
type PasswordResult struct {
	Valid    bool
	Problems []string
}

// Error joins the problems into one message; nil when the password is valid.
func (r PasswordResult) Error() error {
	if r.Valid {
		return nil
	}
	return errors.New(strings.Join(r.Problems, "; "))
}

// Password checks p against rules and reports every failed rule.
func Password(p string, rules config.PasswordRules) PasswordResult {
	var problems []string

	if utf8.RuneCountInString(p) < rules.MinLength {
		problems = append(problems, fmt.Sprintf("Password must be at least %d characters long", rules.MinLength))
	}
	if rules.RequireUppercase && !strings.ContainsFunc(p, unicode.IsUpper) {
		problems = append(problems, "Password must contain at least one uppercase letter")
	}
	if rules.RequireLowercase && !strings.ContainsFunc(p, unicode.IsLower) {
		problems = append(problems, "Password must contain at least one lowercase letter")
	}
	if rules.RequireNumbers && !strings.ContainsFunc(p, unicode.IsDigit) {
		problems = append(problems, "Password must contain at least one number")
	}
	if rules.RequireSpecial && !strings.ContainsAny(p, rules.SpecialChars) {
		problems = append(problems, fmt.Sprintf("Password must contain at least one special character (%s)", rules.SpecialChars))
	}

	return PasswordResult{Valid: len(problems) == 0, Problems: problems}
}

func Email(s string) error {
	if !emailPattern.MatchString(s) {
		return ErrInvalidEmail
	}
	return nil
}

// Text checks that s is non-blank (when required) and at most max runes long.
func Text(field, s string, required bool, max int) error {
	if required && strings.TrimSpace(s) == "" {
		return fmt.Errorf("%s: %w", field, ErrRequired)
	}
	if n := utf8.RuneCountInString(s); n > max {
		return fmt.Errorf("%s: %w (%d > %d)", field, ErrTooLong, n, max)
	}
	return nil
}

// ListName validates a list name.
func ListName(name string) error {
	return Text("name", name, true, config.ListNameMaxLength)
}

// TaskTitle validates a task title.
func TaskTitle(title string) error {
	return Text("title", title, true, config.TaskTitleMaxLength)
}

// TaskDescription validates an optional task description.
func TaskDescription(desc string) error {
	return Text("description", desc, false, config.TaskDescriptionMaxLength)
}

// ListDescription validates an optional list description.
func ListDescription(desc string) error {
	return Text("description", desc, false, config.ListDescriptionMaxLength)
}

package password

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// specialChars defines which characters satisfy the special-character rule.
const specialChars = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// keyboardPatterns are lowercase fragments that cost a strength penalty when
// they appear anywhere in the candidate.
var keyboardPatterns = []string{
	"qwerty", "qwertz", "azerty", "asdf", "asdfgh", "zxcv", "zxcvbn",
	"qazwsx", "1q2w3e", "poiuyt", "lkjhgf", "mnbvcx",
}

// UserInfo carries the account fields a password must not contain. Any field
// may be empty.
type UserInfo struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
}

// Result reports the outcome of a strength check. Feedback lists hard-gate
// violations; Warnings are advisory. Valid is true iff Feedback is empty,
// independent of Score.
type Result struct {
	Valid    bool     `json:"valid"`
	Score    int      `json:"score"`
	Feedback []string `json:"feedback,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Validator applies the password policy. The zero value is unusable; use
// NewValidator.
type Validator struct {
	MinLength int
	MaxLength int
	common    map[string]struct{}
}

func NewValidator() *Validator {
	v := &Validator{
		MinLength: 8,
		MaxLength: 128,
		common:    make(map[string]struct{}, len(commonPasswords)),
	}
	for _, p := range commonPasswords {
		v.common[p] = struct{}{}
	}
	return v
}

// Validate scores the candidate and collects every policy violation. info
// may be nil when no account context exists yet.
func (v *Validator) Validate(candidate string, info *UserInfo) Result {
	result := Result{}

	length := utf8.RuneCountInString(candidate)
	if candidate == "" {
		result.Feedback = append(result.Feedback, "Password is required")
	} else if length < v.MinLength {
		result.Feedback = append(result.Feedback, fmt.Sprintf("Password must be at least %d characters", v.MinLength))
	}
	if length > v.MaxLength {
		result.Feedback = append(result.Feedback, fmt.Sprintf("Password must be at most %d characters", v.MaxLength))
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range candidate {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(specialChars, r):
			hasSpecial = true
		}
	}
	if !hasLower {
		result.Feedback = append(result.Feedback, "Password must contain at least one lowercase letter")
	}
	if !hasUpper {
		result.Feedback = append(result.Feedback, "Password must contain at least one uppercase letter")
	}
	if !hasDigit {
		result.Feedback = append(result.Feedback, "Password must contain at least one digit")
	}
	if !hasSpecial {
		result.Feedback = append(result.Feedback, "Password must contain at least one special character")
	}

	lower := strings.ToLower(candidate)
	if _, ok := v.common[lower]; ok {
		result.Feedback = append(result.Feedback, "Password is too common")
	}
	if part := containedUserInfo(lower, info); part != "" {
		result.Feedback = append(result.Feedback, fmt.Sprintf("Password must not contain your %s", part))
	}

	score := 0
	if length >= v.MinLength && length <= v.MaxLength {
		score += 20
	}
	classCount := 0
	for _, present := range []bool{hasLower, hasUpper, hasDigit, hasSpecial} {
		if present {
			score += 15
			classCount++
		}
	}
	if length >= 12 {
		score += 5
	}
	if length >= 16 {
		score += 5
	}
	score += 2 * classCount

	if hasRepeatRun(candidate) {
		score -= 5
		result.Warnings = append(result.Warnings, "Avoid repeating the same character")
	}
	if hasSequentialRun(lower) {
		score -= 5
		result.Warnings = append(result.Warnings, "Avoid sequential characters like abc or 123")
	}
	if pattern := matchKeyboardPattern(lower); pattern != "" {
		score -= 5
		result.Warnings = append(result.Warnings, fmt.Sprintf("Avoid keyboard patterns like %q", pattern))
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	result.Score = score
	result.Valid = len(result.Feedback) == 0

	return result
}

// containedUserInfo returns the name of the first account field found inside
// the candidate, or empty. Fields shorter than three characters are skipped
// so initials do not reject unrelated passwords.
func containedUserInfo(lowerCandidate string, info *UserInfo) string {
	if info == nil {
		return ""
	}

	localPart := info.Email
	if at := strings.Index(localPart, "@"); at >= 0 {
		localPart = localPart[:at]
	}

	fields := []struct {
		name  string
		value string
	}{
		{"username", info.Username},
		{"email", localPart},
		{"first name", info.FirstName},
		{"last name", info.LastName},
	}
	for _, f := range fields {
		value := strings.ToLower(strings.TrimSpace(f.value))
		if utf8.RuneCountInString(value) < 3 {
			continue
		}
		if strings.Contains(lowerCandidate, value) {
			return f.name
		}
	}
	return ""
}

// hasRepeatRun reports whether any character repeats three or more times in
// a row.
func hasRepeatRun(s string) bool {
	runes := []rune(s)
	run := 1
	for i := 1; i < len(runes); i++ {
		if runes[i] == runes[i-1] {
			run++
			if run >= 3 {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

// hasSequentialRun reports whether the string contains three consecutive
// ascending or descending letters or digits ("abc", "321").
func hasSequentialRun(lower string) bool {
	runes := []rune(lower)
	for i := 0; i+2 < len(runes); i++ {
		a, b, c := runes[i], runes[i+1], runes[i+2]
		sameClass := (isLowerAlpha(a) && isLowerAlpha(b) && isLowerAlpha(c)) ||
			(isASCIIDigit(a) && isASCIIDigit(b) && isASCIIDigit(c))
		if !sameClass {
			continue
		}
		if (b == a+1 && c == b+1) || (b == a-1 && c == b-1) {
			return true
		}
	}
	return false
}

func isLowerAlpha(r rune) bool { return r >= 'a' && r <= 'z' }
func isASCIIDigit(r rune) bool { return r >= '0' && r <= '9' }

func matchKeyboardPattern(lower string) string {
	for _, pattern := range keyboardPatterns {
		if strings.Contains(lower, pattern) {
			return pattern
		}
	}
	return ""
}

// Package validation holds the pure field normalizers shared by every
// lifecycle service. Each function either returns the normalized value or a
// typed input error from pkg/errors; nothing here touches the store.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	apperrors "github.com/noah-isme/sims-api/pkg/errors"
)

const (
	nameMinLen        = 2
	nameMaxLen        = 100
	descriptionMinLen = 3
	descriptionMaxLen = 500
	addressMinLen     = 5
	addressMaxLen     = 255
	passwordMinLen    = 8
	passwordMaxLen    = 12

	// LifetimeValidity is the literal accepted instead of a validity year.
	LifetimeValidity = "Lifetime"
)

var (
	emailPattern   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern   = regexp.MustCompile(`^\+\d{12,18}$`)
	codePattern    = regexp.MustCompile(`^[A-Z0-9-]{2,10}$`)
	yearPattern    = regexp.MustCompile(`^\d{4}$`)
	sessionPattern = regexp.MustCompile(`^(\d{4})/(\d{4})$`)
)

// Name trims, validates and title-cases a human-readable name.
func Name(field, raw string) (string, error) {
	if raw == "" {
		return "", apperrors.Validation(apperrors.KindEmpty, field, raw, fmt.Sprintf("%s is required", field))
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", apperrors.Validation(apperrors.KindBlank, field, raw, fmt.Sprintf("%s cannot be blank", field))
	}
	if len(trimmed) < nameMinLen {
		return "", apperrors.Validation(apperrors.KindTooShort, field, trimmed, fmt.Sprintf("%s must be at least %d characters", field, nameMinLen))
	}
	if len(trimmed) > nameMaxLen {
		return "", apperrors.Validation(apperrors.KindTooLong, field, trimmed, fmt.Sprintf("%s must be at most %d characters", field, nameMaxLen))
	}
	for _, r := range trimmed {
		if unicode.IsDigit(r) {
			return "", apperrors.Validation(apperrors.KindInvalidCharacter, field, trimmed, fmt.Sprintf("%s cannot contain digits", field))
		}
	}
	return TitleCase(trimmed), nil
}

// Description trims and capitalizes a free-form description.
func Description(field, raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", apperrors.Validation(apperrors.KindBlank, field, raw, fmt.Sprintf("%s cannot be blank", field))
	}
	if len(trimmed) < descriptionMinLen {
		return "", apperrors.Validation(apperrors.KindTooShort, field, trimmed, fmt.Sprintf("%s must be at least %d characters", field, descriptionMinLen))
	}
	if len(trimmed) > descriptionMaxLen {
		return "", apperrors.Validation(apperrors.KindTooLong, field, trimmed, fmt.Sprintf("%s must be at most %d characters", field, descriptionMaxLen))
	}
	return Capitalize(trimmed), nil
}

// Address trims and capitalizes a postal address.
func Address(field, raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", apperrors.Validation(apperrors.KindBlank, field, raw, fmt.Sprintf("%s cannot be blank", field))
	}
	if len(trimmed) < addressMinLen {
		return "", apperrors.Validation(apperrors.KindTooShort, field, trimmed, fmt.Sprintf("%s must be at least %d characters", field, addressMinLen))
	}
	if len(trimmed) > addressMaxLen {
		return "", apperrors.Validation(apperrors.KindTooLong, field, trimmed, fmt.Sprintf("%s must be at most %d characters", field, addressMaxLen))
	}
	return Capitalize(trimmed), nil
}

// Code normalizes a short identifier code to upper case.
func Code(field, raw string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))
	if trimmed == "" {
		return "", apperrors.Validation(apperrors.KindBlank, field, raw, fmt.Sprintf("%s cannot be blank", field))
	}
	if !codePattern.MatchString(trimmed) {
		return "", apperrors.Validation(apperrors.KindInvalidCode, field, raw, fmt.Sprintf("%s must be 2-10 letters, digits or dashes", field))
	}
	return trimmed, nil
}

// Email validates and lower-cases an email address.
func Email(field, raw string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return "", apperrors.Validation(apperrors.KindBlank, field, raw, fmt.Sprintf("%s cannot be blank", field))
	}
	if !emailPattern.MatchString(trimmed) {
		return "", apperrors.Validation(apperrors.KindInvalidEmail, field, raw, "email address is not valid")
	}
	return trimmed, nil
}

// Phone strips separators and validates the international form: a leading +
// followed by 12-18 digits (country code plus subscriber number).
func Phone(field, raw string) (string, error) {
	stripped := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(raw))
	if stripped == "" {
		return "", apperrors.Validation(apperrors.KindBlank, field, raw, fmt.Sprintf("%s cannot be blank", field))
	}
	if !phonePattern.MatchString(stripped) {
		return "", apperrors.Validation(apperrors.KindInvalidPhone, field, raw, "phone number must be an international number like +2348012345678")
	}
	return stripped, nil
}

// Order validates a 1-based ordering index.
func Order(field string, raw int) (int, error) {
	if raw < 1 {
		return 0, apperrors.Validation(apperrors.KindInvalidOrder, field, strconv.Itoa(raw), fmt.Sprintf("%s must be a positive ordering index", field))
	}
	return raw, nil
}

// SessionStartYear accepts the current year or the next one.
func SessionStartYear(field string, raw int) (int, error) {
	current := time.Now().UTC().Year()
	if raw != current && raw != current+1 {
		return 0, apperrors.Validation(apperrors.KindInvalidSessionYear, field, strconv.Itoa(raw), fmt.Sprintf("%s must be %d or %d", field, current, current+1))
	}
	return raw, nil
}

// Session validates an academic session of consecutive years, "2025/2026".
func Session(field, raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	match := sessionPattern.FindStringSubmatch(trimmed)
	if match == nil {
		return "", apperrors.Validation(apperrors.KindInvalidSessionYear, field, raw, fmt.Sprintf("%s must look like 2025/2026", field))
	}
	first, _ := strconv.Atoi(match[1])
	second, _ := strconv.Atoi(match[2])
	if second != first+1 {
		return "", apperrors.Validation(apperrors.KindInvalidSessionYear, field, raw, fmt.Sprintf("%s must span consecutive years", field))
	}
	return trimmed, nil
}

// Score validates a percentage grade score.
func Score(field string, raw float64) (float64, error) {
	if raw < 0 || raw > 100 {
		return 0, apperrors.Validation(apperrors.KindInvalidOrder, field, strconv.FormatFloat(raw, 'f', -1, 64), fmt.Sprintf("%s must be between 0 and 100", field))
	}
	return raw, nil
}

// Year validates a four digit calendar year.
func Year(field string, raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if !yearPattern.MatchString(trimmed) {
		return 0, apperrors.Validation(apperrors.KindInvalidYear, field, raw, fmt.Sprintf("%s must be a four digit year", field))
	}
	year, _ := strconv.Atoi(trimmed)
	return year, nil
}

// ValidUntil accepts the literal "Lifetime" or a four digit year not before
// the current one.
func ValidUntil(field, raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == LifetimeValidity {
		return trimmed, nil
	}
	year, err := Year(field, trimmed)
	if err != nil {
		return "", apperrors.Validation(apperrors.KindInvalidValidityYear, field, raw, fmt.Sprintf("%s must be %q or a four digit year", field, LifetimeValidity))
	}
	if year < time.Now().UTC().Year() {
		return "", apperrors.Validation(apperrors.KindInvalidValidityYear, field, raw, fmt.Sprintf("%s cannot be in the past", field))
	}
	return trimmed, nil
}

// PastDate requires a date strictly before now (birth dates, joining dates).
func PastDate(field string, raw time.Time) (time.Time, error) {
	if raw.IsZero() {
		return time.Time{}, apperrors.Validation(apperrors.KindEmpty, field, "", fmt.Sprintf("%s is required", field))
	}
	if raw.After(time.Now().UTC()) {
		return time.Time{}, apperrors.Validation(apperrors.KindFutureDate, field, raw.Format(time.RFC3339), fmt.Sprintf("%s cannot be in the future", field))
	}
	return raw.UTC(), nil
}

// FutureDate requires a date strictly after now (expiry dates).
func FutureDate(field string, raw time.Time) (time.Time, error) {
	if raw.IsZero() {
		return time.Time{}, apperrors.Validation(apperrors.KindEmpty, field, "", fmt.Sprintf("%s is required", field))
	}
	if raw.Before(time.Now().UTC()) {
		return time.Time{}, apperrors.Validation(apperrors.KindPastDate, field, raw.Format(time.RFC3339), fmt.Sprintf("%s cannot be in the past", field))
	}
	return raw.UTC(), nil
}

// Password enforces 8-12 characters with at least one upper, one lower, one
// digit and one non-alphanumeric character.
func Password(field, raw string) (string, error) {
	if len(raw) < passwordMinLen || len(raw) > passwordMaxLen {
		return "", apperrors.Validation(apperrors.KindPasswordFormat, field, "", fmt.Sprintf("password must be %d-%d characters", passwordMinLen, passwordMaxLen))
	}
	var upper, lower, digit, special bool
	for _, r := range raw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return "", apperrors.Validation(apperrors.KindPasswordFormat, field, "", "password must mix upper case, lower case, digits and symbols")
	}
	return raw, nil
}

// TitleCase upper-cases the first rune of every word and lower-cases the rest.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = Capitalize(strings.ToLower(w))
	}
	return strings.Join(words, " ")
}

// Capitalize upper-cases the first rune only.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

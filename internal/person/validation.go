package person

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Column names used as FieldErrors keys.
const (
	FieldFullName    = "full_name"
	FieldEmail       = "email"
	FieldPhoneNumber = "phone_number"
	FieldDateOfBirth = "date_of_birth"
)

// Messages shown next to a failing field.
const (
	msgNameRequired = "Full name is required"
	msgInvalidEmail = "Please enter a valid email address"
	msgInvalidPhone = "Phone number must contain only numbers"
	msgInvalidDate  = "Date must be in YYYY-MM-DD format"
)

var (
	emailRegex = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)
	phoneRegex = regexp.MustCompile(`^[0-9]+$`)
	dateRegex  = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
)

// FieldErrors maps a column name to the message explaining why it was rejected.
type FieldErrors map[string]string

// Err returns a *ValidationError when any field failed, nil otherwise.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return &ValidationError{Fields: fe}
}

// IsValidEmail reports whether email has the local@domain.tld shape with no
// whitespace anywhere. Whitespace is any Unicode space (NBSP, em space,
// vertical tab, ...) plus the byte order mark. Empty input is valid because
// the field is optional.
func IsValidEmail(email string) bool {
	if email == "" {
		return true
	}
	if strings.IndexFunc(email, isSpace) >= 0 {
		return false
	}
	return emailRegex.MatchString(email)
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\ufeff'
}

// IsValidPhone reports whether phone consists solely of decimal digits.
// Empty input is valid.
func IsValidPhone(phone string) bool {
	if phone == "" {
		return true
	}
	return phoneRegex.MatchString(phone)
}

// IsValidDateOfBirth reports whether date is a real calendar date written as
// YYYY-MM-DD. The components are rebuilt into a time.Time and must come back
// unchanged, which rejects values like 2023-02-30 or 2023-13-01.
// Empty input is valid.
func IsValidDateOfBirth(date string) bool {
	if date == "" {
		return true
	}
	m := dateRegex.FindStringSubmatch(date)
	if m == nil {
		return false
	}

	// The regex guarantees digits, so Atoi cannot fail.
	year, _ := strconv.Atoi(m[1])  //nolint:errcheck // digits only
	month, _ := strconv.Atoi(m[2]) //nolint:errcheck // digits only
	day, _ := strconv.Atoi(m[3])   //nolint:errcheck // digits only

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}

// ValidateRequiredName checks that name is non-empty after trimming whitespace.
func ValidateRequiredName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	return nil
}

// Validate runs every field check on f and collects the failures.
// An empty result means f may be written.
func Validate(f Fields) FieldErrors {
	errs := FieldErrors{}

	if ValidateRequiredName(f.FullName) != nil {
		errs[FieldFullName] = msgNameRequired
	}
	if !IsValidEmail(Value(f.Email)) {
		errs[FieldEmail] = msgInvalidEmail
	}
	if !IsValidPhone(Value(f.PhoneNumber)) {
		errs[FieldPhoneNumber] = msgInvalidPhone
	}
	if !IsValidDateOfBirth(Value(f.DateOfBirth)) {
		errs[FieldDateOfBirth] = msgInvalidDate
	}

	return errs
}

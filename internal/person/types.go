package person

import "time"

// Person is one collected individual's record.
//
// ID is assigned by the store on creation and never changes. Every other
// field lives in the embedded Fields and is replaced as a whole on update.
type Person struct {
	ID int64 `json:"id"`
	Fields
}

// Fields holds the caller-supplied values of a Person.
//
// FullName is required. The remaining fields are optional: nil means
// "not provided" and is stored as NULL.
type Fields struct {
	FullName     string  `json:"full_name"`
	Address      *string `json:"address"`
	PhoneNumber  *string `json:"phone_number"`
	Email        *string `json:"email"`
	CityOfOrigin *string `json:"city_of_origin"`
	DateOfBirth  *string `json:"date_of_birth"`
	Religion     *string `json:"religion"`
}

// Optional returns a pointer to s, or nil when s is empty.
func Optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Value returns the string behind an optional field, or "" when absent.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Normalize returns a copy of f with empty optional strings turned into nil,
// so "absent" and "empty" are a single state.
func (f Fields) Normalize() Fields {
	out := f
	for _, p := range []**string{
		&out.Address, &out.PhoneNumber, &out.Email,
		&out.CityOfOrigin, &out.DateOfBirth, &out.Religion,
	} {
		*p = Optional(Value(*p))
	}
	return out
}

// EventType names a change to the people table.
type EventType string

// Change event types published after a successful write.
const (
	EventCreated EventType = "person.created"
	EventUpdated EventType = "person.updated"
	EventDeleted EventType = "person.deleted"
)

// Event describes a committed change. Person is nil for deletions.
type Event struct {
	Type      EventType `json:"type"`
	ID        int64     `json:"id"`
	Person    *Person   `json:"person,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

package student

import (
	"time"
)

// Student represents a row of the students table.
type Student struct {
	ID             int64 // SERIAL in DB, assigned on insert
	FirstName      string
	LastName       string
	Email          string
	EnrollmentDate time.Time // DATE in DB
}

// FullName returns "First Last", skipping empty parts.
func (s *Student) FullName() string {
	switch {
	case s.LastName == "":
		return s.FirstName
	case s.FirstName == "":
		return s.LastName
	}
	return s.FirstName + " " + s.LastName
}

package entity

import (
	"time"
)

// TimestampLayout matches JavaScript's Date.prototype.toISOString for UTC
// times: millisecond precision, always three fractional digits.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// User is a registered employee record as persisted in the users file.
//
// Password holds whatever the store was given: plaintext for records created
// without PASSWORD_HASHING, a bcrypt hash otherwise. CreatedAt is kept as the
// stored text so hand-edited or legacy values survive unchanged.
type User struct {
	Name        string `json:"name"`
	EmployeeID  string `json:"employeeId"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
	Role        Role   `json:"role"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// Profile is the non-secret view of a User.
type Profile struct {
	Name        string `json:"name"`
	EmployeeID  string `json:"employeeId"`
	PhoneNumber string `json:"phoneNumber"`
	Role        Role   `json:"role"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

func (u User) Profile() Profile {
	return Profile{
		Name:        u.Name,
		EmployeeID:  u.EmployeeID,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
	}
}

package entity

// Role represents an authorization role.
// Roles are compared verbatim: "hr" does not satisfy a gate for "HR".
type Role string

const (
	RoleEmployee Role = "employee"
	RoleHR       Role = "HR"
)

func (r Role) String() string { return string(r) }

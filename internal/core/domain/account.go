package domain

import "time"

// Role is one of the two fixed account roles.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// ParseRole maps caller input to a Role. Empty input yields RoleEmployee.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return RoleEmployee, nil
	}
	r := Role(s)
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// Account is a stored identity with credentials, role, and profile fields.
// PasswordHash never leaves the core: it is excluded from JSON and from
// PublicProfile.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Department   string
	Position     string
	Salary       *float64
	JoinDate     time.Time
}

// PublicProfile is the redacted view of an Account returned to callers.
type PublicProfile struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	Department string    `json:"department,omitempty"`
	Position   string    `json:"position,omitempty"`
	Salary     *float64  `json:"salary,omitempty"`
	JoinDate   time.Time `json:"joinDate"`
}

// Profile returns the public view of a.
func (a *Account) Profile() PublicProfile {
	return PublicProfile{
		ID:         a.ID,
		Name:       a.Name,
		Email:      a.Email,
		Role:       a.Role,
		Department: a.Department,
		Position:   a.Position,
		Salary:     a.Salary,
		JoinDate:   a.JoinDate,
	}
}

// DashboardSummary aggregates account counts by role.
type DashboardSummary struct {
	TotalUsers     int64 `json:"totalUsers"`
	TotalEmployees int64 `json:"totalEmployees"`
	TotalAdmins    int64 `json:"totalAdmins"`
}

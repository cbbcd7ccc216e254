package domain

// Identity is the verified subject of a token, attached to the request
// context by the auth gate.
type Identity struct {
	SubjectID string
	Role      Role
}

// IsAdmin reports whether the identity holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

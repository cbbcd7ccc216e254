package ports

import "github.com/staffdesk/personnel-directory/internal/core/domain"

// PasswordHasher produces salted one-way hashes and verifies plaintexts
// against them. Check never panics on malformed hashes; it returns false.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Check(password, hash string) bool
}

// TokenService issues and verifies signed identity assertions.
type TokenService interface {
	Issue(subjectID string, role domain.Role) (string, error)
	// Verify returns the identity bound to token, or an error wrapping
	// domain.ErrInvalidToken.
	Verify(token string) (domain.Identity, error)
}

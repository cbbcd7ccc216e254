package ports

import (
	"context"

	"github.com/staffdesk/personnel-directory/internal/core/domain"
)

// RegisterInput carries the fields accepted by registration.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Role       string // empty = employee
	Department string
	Position   string
	Salary     *float64

	// Caller is the verified identity of the requester, nil for anonymous
	// registration. Only admin callers may create admin accounts.
	Caller *domain.Identity
}

// AuthResult is returned by Register and Authenticate.
type AuthResult struct {
	Token string
	User  domain.PublicProfile
}

// AccountService holds the account use cases.
type AccountService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Authenticate(ctx context.Context, email, password string) (*AuthResult, error)
	ListAccounts(ctx context.Context, caller domain.Identity) ([]domain.PublicProfile, error)
	DeleteAccount(ctx context.Context, id string) error
	DashboardSummary(ctx context.Context) (*domain.DashboardSummary, error)
}

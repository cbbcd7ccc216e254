package ports

import (
	"context"

	"github.com/staffdesk/personnel-directory/internal/core/domain"
)

// AccountRepository is the credential store. Email uniqueness is enforced by
// the storage layer: Create returns domain.ErrDuplicateEmail when the email is
// already taken, including under concurrent inserts.
type AccountRepository interface {
	// Create persists a new account and returns it with ID assigned.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
	// Delete removes the account with id. A missing id is not an error.
	Delete(ctx context.Context, id string) error
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
	Count(ctx context.Context) (int64, error)
}

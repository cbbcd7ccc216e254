package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/staffdesk/personnel-directory/internal/core/domain"
	"github.com/staffdesk/personnel-directory/internal/core/ports"
)

const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultEmployeeEmail = "employee@example.com"
)

// SeedAccount describes an account created by Bootstrap when its email is
// not yet present.
type SeedAccount struct {
	Name       string
	Email      string
	Password   string
	Role       domain.Role
	Department string
	Position   string
	Salary     *float64
}

// DefaultSeedAccounts returns the reserved admin and employee accounts.
func DefaultSeedAccounts(adminPassword, employeePassword string) []SeedAccount {
	salary := 50000.0
	return []SeedAccount{
		{
			Name:     "Default Admin",
			Email:    DefaultAdminEmail,
			Password: adminPassword,
			Role:     domain.RoleAdmin,
		},
		{
			Name:       "Default Employee",
			Email:      DefaultEmployeeEmail,
			Password:   employeePassword,
			Role:       domain.RoleEmployee,
			Department: "Sales",
			Position:   "Sales Executive",
			Salary:     &salary,
		},
	}
}

// Bootstrap seeds reserved accounts. Running it repeatedly never creates
// duplicates and never modifies an existing account.
type Bootstrap struct {
	repo   ports.AccountRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
}

func NewBootstrap(repo ports.AccountRepository, hasher ports.PasswordHasher, log zerolog.Logger) *Bootstrap {
	return &Bootstrap{repo: repo, hasher: hasher, log: log}
}

// Run creates every seed whose email is absent and reports how many were
// created.
func (b *Bootstrap) Run(ctx context.Context, seeds []SeedAccount) (int, error) {
	created := 0
	for _, seed := range seeds {
		if !seed.Role.Valid() {
			return created, fmt.Errorf("bootstrap %s: %w", seed.Email, domain.ErrInvalidRole)
		}

		_, err := b.repo.FindByEmail(ctx, seed.Email)
		if err == nil {
			b.log.Debug().Str("email", seed.Email).Msg("seed account already present")
			continue
		}
		if !errors.Is(err, domain.ErrAccountNotFound) {
			return created, fmt.Errorf("bootstrap %s: %w", seed.Email, err)
		}

		hash, err := b.hasher.Hash(seed.Password)
		if err != nil {
			return created, fmt.Errorf("bootstrap %s: hash password: %w", seed.Email, err)
		}

		acc, err := b.repo.Create(ctx, &domain.Account{
			Name:         seed.Name,
			Email:        seed.Email,
			PasswordHash: hash,
			Role:         seed.Role,
			Department:   seed.Department,
			Position:     seed.Position,
			Salary:       seed.Salary,
			JoinDate:     time.Now().UTC(),
		})
		if err != nil {
			// Another instance seeded it between the lookup and the insert.
			if errors.Is(err, domain.ErrDuplicateEmail) {
				continue
			}
			return created, fmt.Errorf("bootstrap %s: %w", seed.Email, err)
		}

		created++
		b.log.Info().
			Str("account_id", acc.ID).
			Str("email", acc.Email).
			Str("role", string(acc.Role)).
			Msg("default account created")
	}
	return created, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/staffdesk/personnel-directory/internal/core/domain"
	"github.com/staffdesk/personnel-directory/internal/core/ports"
)

// AccountOptions tunes AccountService behaviour.
type AccountOptions struct {
	// RedactSalaryForEmployees hides the salary field from ListAccounts
	// results when the caller is not an admin.
	RedactSalaryForEmployees bool
}

// AccountService implements registration, authentication and account
// management on top of the credential store.
type AccountService struct {
	repo   ports.AccountRepository
	hasher ports.PasswordHasher
	tokens ports.TokenService
	log    zerolog.Logger
	opts   AccountOptions

	// decoy is a hash checked when the email is unknown so that both
	// failure paths of Authenticate pay the same hashing cost.
	decoyOnce sync.Once
	decoy     string

	now func() time.Time
}

func NewAccountService(
	repo ports.AccountRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenService,
	log zerolog.Logger,
	opts AccountOptions,
) *AccountService {
	return &AccountService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		log:    log,
		opts:   opts,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a new account and returns a token for it. Admin accounts
// can only be created by an admin caller.
func (s *AccountService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", domain.ErrInvalidInput)
	}
	if len(in.Password) > domain.MaxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", domain.ErrInvalidInput, domain.MaxPasswordBytes)
	}
	if in.Salary != nil && *in.Salary < 0 {
		return nil, fmt.Errorf("%w: salary must not be negative", domain.ErrInvalidInput)
	}

	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	if role == domain.RoleAdmin && (in.Caller == nil || !in.Caller.IsAdmin()) {
		return nil, domain.ErrForbidden
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, &domain.Account{
		Name:         name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		Department:   in.Department,
		Position:     in.Position,
		Salary:       in.Salary,
		JoinDate:     s.now(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	token, err := s.tokens.Issue(created.ID, created.Role)
	if err != nil {
		return nil, fmt.Errorf("register: issue token: %w", err)
	}

	s.log.Info().
		Str("account_id", created.ID).
		Str("role", string(created.Role)).
		Msg("account registered")

	return &ports.AuthResult{Token: token, User: created.Profile()}, nil
}

// Authenticate verifies the credentials and returns a fresh token. Unknown
// email and wrong password both yield domain.ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.hasher.Check(password, s.decoyHash())
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !s.hasher.Check(password, account.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(account.ID, account.Role)
	if err != nil {
		return nil, fmt.Errorf("authenticate: issue token: %w", err)
	}

	return &ports.AuthResult{Token: token, User: account.Profile()}, nil
}

// ListAccounts returns every account without its password hash.
func (s *AccountService) ListAccounts(ctx context.Context, caller domain.Identity) ([]domain.PublicProfile, error) {
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	redact := s.opts.RedactSalaryForEmployees && !caller.IsAdmin()
	out := make([]domain.PublicProfile, 0, len(accounts))
	for _, a := range accounts {
		p := a.Profile()
		if redact {
			p.Salary = nil
		}
		out = append(out, p)
	}
	return out, nil
}

// DeleteAccount removes the account. Deleting an unknown id succeeds.
func (s *AccountService) DeleteAccount(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	s.log.Info().Str("account_id", id).Msg("account deleted")
	return nil
}

// DashboardSummary counts accounts in total and per role.
func (s *AccountService) DashboardSummary(ctx context.Context) (*domain.DashboardSummary, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: count accounts: %w", err)
	}
	employees, err := s.repo.CountByRole(ctx, domain.RoleEmployee)
	if err != nil {
		return nil, fmt.Errorf("dashboard: count employees: %w", err)
	}
	admins, err := s.repo.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("dashboard: count admins: %w", err)
	}

	return &domain.DashboardSummary{
		TotalUsers:     total,
		TotalEmployees: employees,
		TotalAdmins:    admins,
	}, nil
}

func (s *AccountService) decoyHash() string {
	s.decoyOnce.Do(func() {
		h, err := s.hasher.Hash("decoy-password")
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to build decoy hash")
			return
		}
		s.decoy = h
	})
	return s.decoy
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/staffdesk/personnel-directory/internal/core/domain"
	"github.com/staffdesk/personnel-directory/internal/core/ports"
)

func newAccountSvc(repo *stubAccountRepo, opts AccountOptions) (*AccountService, *stubHasher) {
	h := &stubHasher{}
	return NewAccountService(repo, h, stubTokens{}, discardLogger, opts), h
}

func registerInput(name, email string) ports.RegisterInput {
	return ports.RegisterInput{Name: name, Email: email, Password: "pass123"}
}

var adminCaller = &domain.Identity{SubjectID: "root", Role: domain.RoleAdmin}

func TestAccountService_Register_Success(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newAccountSvc(repo, AccountOptions{})

	res, err := svc.Register(context.Background(), registerInput("Alice", "alice@example.com"))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.User.ID == "" {
		t.Fatalf("expected id to be assigned")
	}
	if res.User.Role != domain.RoleEmployee {
		t.Fatalf("expected default role employee, got %s", res.User.Role)
	}
	if res.User.JoinDate.IsZero() {
		t.Fatalf("expected join date to be set")
	}

	id, err := stubTokens{}.Verify(res.Token)
	if err != nil {
		t.Fatalf("token not verifiable: %v", err)
	}
	if id.SubjectID != res.User.ID {
		t.Fatalf("token subject %q does not match id %q", id.SubjectID, res.User.ID)
	}

	stored, _ := repo.FindByEmail(context.Background(), "alice@example.com")
	if stored.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
}

func TestAccountService_Register_UniqueIDs(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newAccountSvc(repo, AccountOptions{})

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		res, err := svc.Register(context.Background(), registerInput("User", fmt.Sprintf("u%d@example.com", i)))
		if err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
		if seen[res.User.ID] {
			t.Fatalf("duplicate id %s", res.User.ID)
		}
		seen[res.User.ID] = true
	}
}

func TestAccountService_Register_Duplicate(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newAccountSvc(repo, AccountOptions{})

	if _, err := svc.Register(context.Background(), registerInput("Bob", "bob@example.com")); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(context.Background(), registerInput("Bob 2", "bob@example.com"))
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if n := repo.countEmail("bob@example.com"); n != 1 {
		t.Fatalf("expected exactly one account, got %d", n)
	}
}

func TestAccountService_Register_ConcurrentDuplicate(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newAccountSvc(repo, AccountOptions{})

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(context.Background(), registerInput("Race", "race@example.com"))
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrDuplicateEmail):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("expected exactly one successful registration, got %d", ok)
	}
	if c := repo.countEmail("race@example.com"); c != 1 {
		t.Fatalf("expected one stored account, got %d", c)
	}
}

func TestAccountService_Register_Validation(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newAccountSvc(repo, AccountOptions{})

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Email: "x@example.com", Password: "p"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing name, got %v", err)
	}

	in := registerInput("Carl", "carl@example.com")
	in.Role = "manager"
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}

	neg := -1.0
	in = registerInput("Carl", "carl@example.com")
	in.Salary = &neg
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative salary, got %v", err)
	}

	if repo.creates != 0 {
		t.Fatalf("expected no store writes, got %d", repo.creates)
	}
}

func TestAccountService_Register_PasswordTooLong(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newAccountSvc(repo, AccountOptions{})

	// 40 two-byte runes: under 72 characters, over 72 bytes.
	in := registerInput("Dana", "dana@example.com")
	in.Password = strings.Repeat("é", 40)
	_, err := svc.Register(context.Background(), in)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if repo.creates != 0 {
		t.Fatalf("expected no store writes, got %d", repo.creates)
	}

	in.Password = strings.Repeat("x", domain.MaxPasswordBytes)
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("password at the bound rejected: %v", err)
	}
}

func TestAccountService_Register_AdminRoleRequiresAdminCaller(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newAccountSvc(repo, AccountOptions{})

	in := registerInput("Eve", "eve@example.com")
	in.Role = string(domain.RoleAdmin)
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("anonymous admin registration: expected ErrForbidden, got %v", err)
	}

	in.Caller = &domain.Identity{SubjectID: "e1", Role: domain.RoleEmployee}
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("employee creating admin: expected ErrForbidden, got %v", err)
	}

	in.Caller = adminCaller
	res, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("admin creating admin: %v", err)
	}
	if res.User.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %s", res.User.Role)
	}
}

func TestAccountService_Authenticate_Success(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newAccountSvc(repo, AccountOptions{})

	in := registerInput("Carol", "carol@example.com")
	in.Role = string(domain.RoleAdmin)
	in.Caller = adminCaller
	reg, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	res, err := svc.Authenticate(context.Background(), "carol@example.com", "pass123")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	id, err := stubTokens{}.Verify(res.Token)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if id.Role != domain.RoleAdmin || id.SubjectID != reg.User.ID {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestAccountService_Authenticate_FailuresIndistinguishable(t *testing.T) {
	repo := newStubAccountRepo()
	svc, h := newAccountSvc(repo, AccountOptions{})

	_, _ = svc.Register(context.Background(), registerInput("Dave", "dave@example.com"))

	_, wrongPass := svc.Authenticate(context.Background(), "dave@example.com", "badpass")
	_, unknown := svc.Authenticate(context.Background(), "ghost@example.com", "pass123")

	if wrongPass != domain.ErrInvalidCredentials {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongPass)
	}
	if unknown != domain.ErrInvalidCredentials {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", unknown)
	}
	if wrongPass.Error() != unknown.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPass, unknown)
	}
	if h.checks != 2 {
		t.Fatalf("expected a hash check on both paths, got %d", h.checks)
	}
}

func TestAccountService_Authenticate_StoreError(t *testing.T) {
	repo := newStubAccountRepo()
	repo.findErr = errors.New("mongo unavailable")
	svc, _ := newAccountSvc(repo, AccountOptions{})

	_, err := svc.Authenticate(context.Background(), "a@example.com", "pw")
	if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestAccountService_ListAccounts_Redaction(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newAccountSvc(repo, AccountOptions{RedactSalaryForEmployees: true})

	salary := 42000.0
	in := registerInput("Frank", "frank@example.com")
	in.Salary = &salary
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("register: %v", err)
	}

	asAdmin, err := svc.ListAccounts(context.Background(), *adminCaller)
	if err != nil {
		t.Fatalf("list as admin: %v", err)
	}
	if len(asAdmin) != 1 || asAdmin[0].Salary == nil || *asAdmin[0].Salary != salary {
		t.Fatalf("admin should see salary: %+v", asAdmin)
	}

	asEmployee, err := svc.ListAccounts(context.Background(), domain.Identity{SubjectID: "x", Role: domain.RoleEmployee})
	if err != nil {
		t.Fatalf("list as employee: %v", err)
	}
	if len(asEmployee) != 1 || asEmployee[0].Salary != nil {
		t.Fatalf("employee should not see salary: %+v", asEmployee)
	}
}

func TestAccountService_ListAccounts_NoRedaction(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newAccountSvc(repo, AccountOptions{})

	salary := 1.0
	in := registerInput("Gina", "gina@example.com")
	in.Salary = &salary
	_, _ = svc.Register(context.Background(), in)

	list, _ := svc.ListAccounts(context.Background(), domain.Identity{Role: domain.RoleEmployee})
	if len(list) != 1 || list[0].Salary == nil {
		t.Fatalf("expected salary visible when redaction is off: %+v", list)
	}
}

func TestAccountService_DeleteAccount(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newAccountSvc(repo, AccountOptions{})

	res, _ := svc.Register(context.Background(), registerInput("Hank", "hank@example.com"))
	if err := svc.DeleteAccount(context.Background(), res.User.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n, _ := repo.Count(context.Background()); n != 0 {
		t.Fatalf("expected empty store, got %d", n)
	}
}

func TestAccountService_DeleteAccount_UnknownID(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newAccountSvc(repo, AccountOptions{})

	_, _ = svc.Register(context.Background(), registerInput("Ivy", "ivy@example.com"))
	if err := svc.DeleteAccount(context.Background(), "does-not-exist"); err != nil {
		t.Fatalf("expected success for unknown id, got %v", err)
	}
	if n, _ := repo.Count(context.Background()); n != 1 {
		t.Fatalf("store altered: %d accounts", n)
	}
}

func TestAccountService_DashboardSummary(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newAccountSvc(repo, AccountOptions{})

	_, _ = svc.Register(context.Background(), registerInput("E1", "e1@example.com"))
	_, _ = svc.Register(context.Background(), registerInput("E2", "e2@example.com"))
	in := registerInput("A1", "a1@example.com")
	in.Role = string(domain.RoleAdmin)
	in.Caller = adminCaller
	_, _ = svc.Register(context.Background(), in)

	sum, err := svc.DashboardSummary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.TotalUsers != 3 || sum.TotalEmployees != 2 || sum.TotalAdmins != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}

package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/staffdesk/personnel-directory/internal/core/domain"
	"github.com/staffdesk/personnel-directory/internal/core/ports"
)

type stubAccountService struct {
	registerFn  func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	authFn      func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	listFn      func(ctx context.Context, caller domain.Identity) ([]domain.PublicProfile, error)
	deleteFn    func(ctx context.Context, id string) error
	dashboardFn func(ctx context.Context) (*domain.DashboardSummary, error)
}

func (s *stubAccountService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAccountService) Authenticate(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.authFn(ctx, email, password)
}

func (s *stubAccountService) ListAccounts(ctx context.Context, caller domain.Identity) ([]domain.PublicProfile, error) {
	return s.listFn(ctx, caller)
}

func (s *stubAccountService) DeleteAccount(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *stubAccountService) DashboardSummary(ctx context.Context) (*domain.DashboardSummary, error) {
	return s.dashboardFn(ctx)
}

func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

package handler

import "github.com/staffdesk/personnel-directory/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Request / Response types ---

type registerRequest struct {
	Name       string   `json:"name"       validate:"required"`
	Email      string   `json:"email"      validate:"required,email"`
	Password   string   `json:"password"   validate:"required,min=6,max=72"`
	Role       string   `json:"role"       validate:"omitempty,oneof=admin employee"`
	Department string   `json:"department"`
	Position   string   `json:"position"`
	Salary     *float64 `json:"salary"     validate:"omitempty,gte=0"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string               `json:"token"`
	User  domain.PublicProfile `json:"user"`
}

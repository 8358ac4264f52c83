package dto

import (
	"time"

	"github.com/nxsys/task-tracker/internal/domain"
)

// LoginRequest payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest payload for POST /auth/register.
type RegisterRequest struct {
	Email          string   `json:"email" validate:"required,email"`
	Password       string   `json:"password" validate:"required,min=6"`
	Name           string   `json:"name" validate:"required,max=255"`
	SeniorityLevel int      `json:"seniority_level" validate:"required,min=1,max=5"`
	Categories     []string `json:"categories"`
}

// UpdateSeniorityRequest payload for PUT /users/:id.
type UpdateSeniorityRequest struct {
	SeniorityLevel int `json:"seniority_level" validate:"required"`
}

// ReplaceCategoriesRequest payload for PUT /users/:id/categories.
type ReplaceCategoriesRequest struct {
	Categories []string `json:"categories" validate:"required"`
}

// UserResponse is the public view of a user. The password hash never leaves the service.
type UserResponse struct {
	ID             int64             `json:"id"`
	Email          string            `json:"email"`
	Name           string            `json:"name"`
	SeniorityLevel int               `json:"seniority_level"`
	CreatedAt      time.Time         `json:"created_at"`
	Categories     []domain.Category `json:"categories,omitempty"`
}

// LoginResponse carries the session issued by POST /auth/login.
type LoginResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		SeniorityLevel: u.SeniorityLevel,
		CreatedAt:      u.CreatedAt,
		Categories:     u.Categories,
	}
}

// NewUserList maps a slice of users.
func NewUserList(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

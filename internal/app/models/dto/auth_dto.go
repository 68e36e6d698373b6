package dto

import (
	"github.com/yigit/lecturealert/internal/app/models"
	"github.com/yigit/lecturealert/internal/app/session"
	"github.com/yigit/lecturealert/internal/app/shell"
)

// SignInRequest is the body of POST /auth/sign-in
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpRequest is the body of POST /auth/sign-up
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

// UserResponse is the signed-in user as shown in the shell header
type UserResponse struct {
	ID       string      `json:"id"`
	Email    string      `json:"email"`
	FullName string      `json:"fullName"`
	Role     models.Role `json:"role"`
	Badge    shell.Badge `json:"badge"`
}

// SessionResponse is the provider state
type SessionResponse struct {
	Status     session.Status `json:"status"`
	User       *UserResponse  `json:"user"`
	Generation uint64         `json:"generation"`
}

// NewUserResponse maps an identity, nil stays nil
func NewUserResponse(identity *models.Identity) *UserResponse {
	if identity == nil {
		return nil
	}
	return &UserResponse{
		ID:       identity.ID,
		Email:    identity.Email,
		FullName: identity.FullName,
		Role:     identity.Role,
		Badge:    shell.RoleBadge(identity.Role),
	}
}

// NewSessionResponse maps a provider state
func NewSessionResponse(state session.State) SessionResponse {
	return SessionResponse{
		Status:     state.Status,
		User:       NewUserResponse(state.Identity),
		Generation: state.Generation,
	}
}

// SessionEvent is pushed on the live stream after an identity change
type SessionEvent struct {
	Kind       session.EventKind `json:"kind"`
	User       *UserResponse     `json:"user"`
	Generation uint64            `json:"generation"`
}

// NewSessionEvent maps a provider event
func NewSessionEvent(ev session.Event) SessionEvent {
	return SessionEvent{
		Kind:       ev.Kind,
		User:       NewUserResponse(ev.Identity),
		Generation: ev.Generation,
	}
}

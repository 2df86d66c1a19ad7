package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/sksmith/go-retail-ledger/core/user"
)

type CreateUserRequestDto struct {
	*user.CreateUserRequest
	Password string `json:"password,omitempty"`
}

func (p *CreateUserRequestDto) Bind(_ *http.Request) error {
	if p.CreateUserRequest == nil || p.Username == "" || p.Password == "" {
		return errors.New("missing required field(s)")
	}

	p.CreateUserRequest.PlainTextPassword = p.Password

	return nil
}

// UserResponse never carries the password hash.
type UserResponse struct {
	Username string    `json:"username"`
	FullName string    `json:"fullName,omitempty"`
	IsAdmin  bool      `json:"isAdmin"`
	Created  time.Time `json:"created"`
}

func NewUserResponse(u user.User) *UserResponse {
	return &UserResponse{
		Username: u.Username,
		FullName: u.FullName,
		IsAdmin:  u.IsAdmin,
		Created:  u.Created,
	}
}

func (rd *UserResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

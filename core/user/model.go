package user

import "time"

type CreateUserRequest struct {
	Username          string `json:"username,omitempty"`
	FullName          string `json:"fullName,omitempty"`
	IsAdmin           bool   `json:"isAdmin,omitempty"`
	PlainTextPassword string `json:"-"`
}

type User struct {
	Username       string
	FullName       string
	HashedPassword string
	IsAdmin        bool
	Created        time.Time
}

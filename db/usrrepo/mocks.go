package usrrepo

import (
	"context"

	"github.com/sksmith/go-retail-ledger/core"
	"github.com/sksmith/go-retail-ledger/core/user"
	"github.com/sksmith/go-retail-ledger/test"
)

type MockRepo struct {
	CreateFunc func(ctx context.Context, user *user.User, tx ...core.UpdateOptions) error
	GetFunc    func(ctx context.Context, username string, tx ...core.QueryOptions) (user.User, error)
	DeleteFunc func(ctx context.Context, username string, tx ...core.UpdateOptions) error

	*test.CallWatcher
}

func NewMockRepo() *MockRepo {
	return &MockRepo{
		CreateFunc: func(ctx context.Context, user *user.User, tx ...core.UpdateOptions) error { return nil },
		GetFunc: func(ctx context.Context, username string, tx ...core.QueryOptions) (user.User, error) {
			return user.User{}, nil
		},
		DeleteFunc:  func(ctx context.Context, username string, tx ...core.UpdateOptions) error { return nil },
		CallWatcher: test.NewCallWatcher(),
	}
}

func (r *MockRepo) Create(ctx context.Context, u *user.User, tx ...core.UpdateOptions) error {
	r.AddCall(ctx, u, tx)
	return r.CreateFunc(ctx, u, tx...)
}

func (r *MockRepo) Get(ctx context.Context, username string, tx ...core.QueryOptions) (user.User, error) {
	r.AddCall(ctx, username, tx)
	return r.GetFunc(ctx, username, tx...)
}

func (r *MockRepo) Delete(ctx context.Context, username string, tx ...core.UpdateOptions) error {
	r.AddCall(ctx, username, tx)
	return r.DeleteFunc(ctx, username, tx...)
}

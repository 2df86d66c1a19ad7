package orderrepo

import (
	"context"

	"github.com/sksmith/go-retail-ledger/core"
	"github.com/sksmith/go-retail-ledger/core/order"
	"github.com/sksmith/go-retail-ledger/db"
	"github.com/sksmith/go-retail-ledger/test"
)

type MockRepo struct {
	GetOrderFunc     func(ctx context.Context, id uint64, options ...core.QueryOptions) (order.Order, error)
	GetOrdersFunc    func(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]order.Order, error)
	SaveOrderFunc    func(ctx context.Context, o *order.Order, options ...core.UpdateOptions) error
	UpdateOrderFunc  func(ctx context.Context, o *order.Order, options ...core.UpdateOptions) error
	ReplaceItemsFunc func(ctx context.Context, orderID uint64, items []order.OrderItem, options ...core.UpdateOptions) error
	DeleteOrderFunc  func(ctx context.Context, id uint64, options ...core.UpdateOptions) error

	GetSaleByOrderFunc    func(ctx context.Context, orderID uint64, options ...core.QueryOptions) (order.Sale, error)
	GetSalesFunc          func(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]order.Sale, error)
	SaveSaleFunc          func(ctx context.Context, s *order.Sale, options ...core.UpdateOptions) error
	UpdateSaleFunc        func(ctx context.Context, s *order.Sale, options ...core.UpdateOptions) error
	DeleteSaleByOrderFunc func(ctx context.Context, orderID uint64, options ...core.UpdateOptions) error

	BeginTransactionFunc func(ctx context.Context) (core.Transaction, error)

	*test.CallWatcher
}

func NewMockRepo() *MockRepo {
	return &MockRepo{
		GetOrderFunc: func(ctx context.Context, id uint64, options ...core.QueryOptions) (order.Order, error) {
			return order.Order{}, nil
		},
		GetOrdersFunc: func(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]order.Order, error) {
			return nil, nil
		},
		SaveOrderFunc: func(ctx context.Context, o *order.Order, options ...core.UpdateOptions) error {
			o.ID = 1
			return nil
		},
		UpdateOrderFunc: func(ctx context.Context, o *order.Order, options ...core.UpdateOptions) error {
			return nil
		},
		ReplaceItemsFunc: func(ctx context.Context, orderID uint64, items []order.OrderItem, options ...core.UpdateOptions) error {
			return nil
		},
		DeleteOrderFunc: func(ctx context.Context, id uint64, options ...core.UpdateOptions) error {
			return nil
		},
		GetSaleByOrderFunc: func(ctx context.Context, orderID uint64, options ...core.QueryOptions) (order.Sale, error) {
			return order.Sale{}, nil
		},
		GetSalesFunc: func(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]order.Sale, error) {
			return nil, nil
		},
		SaveSaleFunc: func(ctx context.Context, s *order.Sale, options ...core.UpdateOptions) error {
			s.ID = 1
			return nil
		},
		UpdateSaleFunc: func(ctx context.Context, s *order.Sale, options ...core.UpdateOptions) error {
			return nil
		},
		DeleteSaleByOrderFunc: func(ctx context.Context, orderID uint64, options ...core.UpdateOptions) error {
			return nil
		},
		BeginTransactionFunc: func(ctx context.Context) (core.Transaction, error) {
			return db.NewMockTransaction(), nil
		},
		CallWatcher: test.NewCallWatcher(),
	}
}

func (r *MockRepo) GetOrder(ctx context.Context, id uint64, options ...core.QueryOptions) (order.Order, error) {
	r.AddCall(ctx, id, options)
	return r.GetOrderFunc(ctx, id, options...)
}

func (r *MockRepo) GetOrders(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]order.Order, error) {
	r.AddCall(ctx, limit, offset, options)
	return r.GetOrdersFunc(ctx, limit, offset, options...)
}

func (r *MockRepo) SaveOrder(ctx context.Context, o *order.Order, options ...core.UpdateOptions) error {
	r.AddCall(ctx, o, options)
	return r.SaveOrderFunc(ctx, o, options...)
}

func (r *MockRepo) UpdateOrder(ctx context.Context, o *order.Order, options ...core.UpdateOptions) error {
	r.AddCall(ctx, o, options)
	return r.UpdateOrderFunc(ctx, o, options...)
}

func (r *MockRepo) ReplaceItems(ctx context.Context, orderID uint64, items []order.OrderItem, options ...core.UpdateOptions) error {
	r.AddCall(ctx, orderID, items, options)
	return r.ReplaceItemsFunc(ctx, orderID, items, options...)
}

func (r *MockRepo) DeleteOrder(ctx context.Context, id uint64, options ...core.UpdateOptions) error {
	r.AddCall(ctx, id, options)
	return r.DeleteOrderFunc(ctx, id, options...)
}

func (r *MockRepo) GetSaleByOrder(ctx context.Context, orderID uint64, options ...core.QueryOptions) (order.Sale, error) {
	r.AddCall(ctx, orderID, options)
	return r.GetSaleByOrderFunc(ctx, orderID, options...)
}

func (r *MockRepo) GetSales(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]order.Sale, error) {
	r.AddCall(ctx, limit, offset, options)
	return r.GetSalesFunc(ctx, limit, offset, options...)
}

func (r *MockRepo) SaveSale(ctx context.Context, s *order.Sale, options ...core.UpdateOptions) error {
	r.AddCall(ctx, s, options)
	return r.SaveSaleFunc(ctx, s, options...)
}

func (r *MockRepo) UpdateSale(ctx context.Context, s *order.Sale, options ...core.UpdateOptions) error {
	r.AddCall(ctx, s, options)
	return r.UpdateSaleFunc(ctx, s, options...)
}

func (r *MockRepo) DeleteSaleByOrder(ctx context.Context, orderID uint64, options ...core.UpdateOptions) error {
	r.AddCall(ctx, orderID, options)
	return r.DeleteSaleByOrderFunc(ctx, orderID, options...)
}

func (r *MockRepo) BeginTransaction(ctx context.Context) (core.Transaction, error) {
	r.AddCall(ctx)
	return r.BeginTransactionFunc(ctx)
}

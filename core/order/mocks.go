package order

import (
	"context"

	"github.com/sksmith/go-retail-ledger/core"
	"github.com/sksmith/go-retail-ledger/core/catalog"
)

type MockOrderService struct {
	CreateOrderFunc    func(ctx context.Context, req OrderRequest) (Order, Sale, error)
	UpdateOrderFunc    func(ctx context.Context, id uint64, req OrderRequest) (Order, error)
	CancelOrderFunc    func(ctx context.Context, id uint64) (Order, error)
	CompleteOrderFunc  func(ctx context.Context, id uint64) (Order, error)
	DeleteOrderFunc    func(ctx context.Context, id uint64) error
	GetOrderFunc       func(ctx context.Context, id uint64) (Order, error)
	GetOrdersFunc      func(ctx context.Context, limit, offset int) ([]Order, error)
	ConfirmPaymentFunc func(ctx context.Context, req PaymentRequest) (Sale, error)
	GetSalesFunc       func(ctx context.Context, limit, offset int) ([]Sale, error)
}

func NewMockOrderService() MockOrderService {
	return MockOrderService{
		CreateOrderFunc: func(ctx context.Context, req OrderRequest) (Order, Sale, error) {
			return Order{}, Sale{}, nil
		},
		UpdateOrderFunc: func(ctx context.Context, id uint64, req OrderRequest) (Order, error) {
			return Order{}, nil
		},
		CancelOrderFunc: func(ctx context.Context, id uint64) (Order, error) {
			return Order{}, nil
		},
		CompleteOrderFunc: func(ctx context.Context, id uint64) (Order, error) {
			return Order{}, nil
		},
		DeleteOrderFunc: func(ctx context.Context, id uint64) error {
			return nil
		},
		GetOrderFunc: func(ctx context.Context, id uint64) (Order, error) {
			return Order{}, nil
		},
		GetOrdersFunc: func(ctx context.Context, limit, offset int) ([]Order, error) {
			return nil, nil
		},
		ConfirmPaymentFunc: func(ctx context.Context, req PaymentRequest) (Sale, error) {
			return Sale{}, nil
		},
		GetSalesFunc: func(ctx context.Context, limit, offset int) ([]Sale, error) {
			return nil, nil
		},
	}
}

func (m *MockOrderService) CreateOrder(ctx context.Context, req OrderRequest) (Order, Sale, error) {
	return m.CreateOrderFunc(ctx, req)
}

func (m *MockOrderService) UpdateOrder(ctx context.Context, id uint64, req OrderRequest) (Order, error) {
	return m.UpdateOrderFunc(ctx, id, req)
}

func (m *MockOrderService) CancelOrder(ctx context.Context, id uint64) (Order, error) {
	return m.CancelOrderFunc(ctx, id)
}

func (m *MockOrderService) CompleteOrder(ctx context.Context, id uint64) (Order, error) {
	return m.CompleteOrderFunc(ctx, id)
}

func (m *MockOrderService) DeleteOrder(ctx context.Context, id uint64) error {
	return m.DeleteOrderFunc(ctx, id)
}

func (m *MockOrderService) GetOrder(ctx context.Context, id uint64) (Order, error) {
	return m.GetOrderFunc(ctx, id)
}

func (m *MockOrderService) GetOrders(ctx context.Context, limit, offset int) ([]Order, error) {
	return m.GetOrdersFunc(ctx, limit, offset)
}

func (m *MockOrderService) ConfirmPayment(ctx context.Context, req PaymentRequest) (Sale, error) {
	return m.ConfirmPaymentFunc(ctx, req)
}

func (m *MockOrderService) GetSales(ctx context.Context, limit, offset int) ([]Sale, error) {
	return m.GetSalesFunc(ctx, limit, offset)
}

type MockStockService struct {
	ReserveFunc func(ctx context.Context, productID uint64, quantity int64, orderID uint64, options core.UpdateOptions) (catalog.Product, error)
	ReleaseFunc func(ctx context.Context, productID uint64, quantity int64, orderID uint64, options core.UpdateOptions) (catalog.Product, error)
}

func NewMockStockService() MockStockService {
	return MockStockService{
		ReserveFunc: func(ctx context.Context, productID uint64, quantity int64, orderID uint64, options core.UpdateOptions) (catalog.Product, error) {
			return catalog.Product{ID: productID}, nil
		},
		ReleaseFunc: func(ctx context.Context, productID uint64, quantity int64, orderID uint64, options core.UpdateOptions) (catalog.Product, error) {
			return catalog.Product{ID: productID}, nil
		},
	}
}

func (m *MockStockService) Reserve(ctx context.Context, productID uint64, quantity int64, orderID uint64, options core.UpdateOptions) (catalog.Product, error) {
	return m.ReserveFunc(ctx, productID, quantity, orderID, options)
}

func (m *MockStockService) Release(ctx context.Context, productID uint64, quantity int64, orderID uint64, options core.UpdateOptions) (catalog.Product, error) {
	return m.ReleaseFunc(ctx, productID, quantity, orderID, options)
}

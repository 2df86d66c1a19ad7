package queue

import (
	"context"

	"github.com/sksmith/go-retail-ledger/core/catalog"
	"github.com/sksmith/go-retail-ledger/core/order"
	"github.com/sksmith/go-retail-ledger/test"
)

type MockQueue struct {
	PublishStockLevelFunc func(ctx context.Context, level catalog.StockLevel) error
	PublishSaleFunc       func(ctx context.Context, sale order.Sale) error
	*test.CallWatcher
}

func NewMockQueue() *MockQueue {
	return &MockQueue{
		PublishStockLevelFunc: func(ctx context.Context, level catalog.StockLevel) error {
			return nil
		},
		PublishSaleFunc: func(ctx context.Context, sale order.Sale) error {
			return nil
		},
		CallWatcher: test.NewCallWatcher(),
	}
}

func (m *MockQueue) PublishStockLevel(ctx context.Context, level catalog.StockLevel) error {
	m.AddCall(ctx, level)
	return m.PublishStockLevelFunc(ctx, level)
}

func (m *MockQueue) PublishSale(ctx context.Context, sale order.Sale) error {
	m.AddCall(ctx, sale)
	return m.PublishSaleFunc(ctx, sale)
}

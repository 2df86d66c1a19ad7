package stock

import (
	"context"

	"github.com/sksmith/go-retail-ledger/core"
	"github.com/sksmith/go-retail-ledger/core/catalog"
)

type MockStockService struct {
	ApplyMovementFunc   func(ctx context.Context, req MovementRequest) (StockMovement, error)
	ReviseMovementFunc  func(ctx context.Context, id uint64, req MovementRequest) (StockMovement, error)
	RetractMovementFunc func(ctx context.Context, id uint64) error
	GetMovementFunc     func(ctx context.Context, id uint64) (StockMovement, error)
	GetMovementsFunc    func(ctx context.Context, productID uint64, limit, offset int) ([]StockMovement, error)
	CreateUnitsFunc     func(ctx context.Context, productID uint64, count int64) ([]InventoryUnit, error)
	GetUnitsFunc        func(ctx context.Context, productID uint64, limit, offset int) ([]InventoryUnit, error)
	MarkUnitsFunc       func(ctx context.Context, ids []uint64, status UnitStatus) error
	ReserveFunc         func(ctx context.Context, productID uint64, quantity int64, orderID uint64, options core.UpdateOptions) (catalog.Product, error)
	ReleaseFunc         func(ctx context.Context, productID uint64, quantity int64, orderID uint64, options core.UpdateOptions) (catalog.Product, error)
}

func NewMockStockService() MockStockService {
	return MockStockService{
		ApplyMovementFunc: func(ctx context.Context, req MovementRequest) (StockMovement, error) {
			return StockMovement{}, nil
		},
		ReviseMovementFunc: func(ctx context.Context, id uint64, req MovementRequest) (StockMovement, error) {
			return StockMovement{}, nil
		},
		RetractMovementFunc: func(ctx context.Context, id uint64) error {
			return nil
		},
		GetMovementFunc: func(ctx context.Context, id uint64) (StockMovement, error) {
			return StockMovement{}, nil
		},
		GetMovementsFunc: func(ctx context.Context, productID uint64, limit, offset int) ([]StockMovement, error) {
			return nil, nil
		},
		CreateUnitsFunc: func(ctx context.Context, productID uint64, count int64) ([]InventoryUnit, error) {
			return nil, nil
		},
		GetUnitsFunc: func(ctx context.Context, productID uint64, limit, offset int) ([]InventoryUnit, error) {
			return nil, nil
		},
		MarkUnitsFunc: func(ctx context.Context, ids []uint64, status UnitStatus) error {
			return nil
		},
		ReserveFunc: func(ctx context.Context, productID uint64, quantity int64, orderID uint64, options core.UpdateOptions) (catalog.Product, error) {
			return catalog.Product{ID: productID}, nil
		},
		ReleaseFunc: func(ctx context.Context, productID uint64, quantity int64, orderID uint64, options core.UpdateOptions) (catalog.Product, error) {
			return catalog.Product{ID: productID}, nil
		},
	}
}

func (m *MockStockService) ApplyMovement(ctx context.Context, req MovementRequest) (StockMovement, error) {
	return m.ApplyMovementFunc(ctx, req)
}

func (m *MockStockService) ReviseMovement(ctx context.Context, id uint64, req MovementRequest) (StockMovement, error) {
	return m.ReviseMovementFunc(ctx, id, req)
}

func (m *MockStockService) RetractMovement(ctx context.Context, id uint64) error {
	return m.RetractMovementFunc(ctx, id)
}

func (m *MockStockService) GetMovement(ctx context.Context, id uint64) (StockMovement, error) {
	return m.GetMovementFunc(ctx, id)
}

func (m *MockStockService) GetMovements(ctx context.Context, productID uint64, limit, offset int) ([]StockMovement, error) {
	return m.GetMovementsFunc(ctx, productID, limit, offset)
}

func (m *MockStockService) CreateUnits(ctx context.Context, productID uint64, count int64) ([]InventoryUnit, error) {
	return m.CreateUnitsFunc(ctx, productID, count)
}

func (m *MockStockService) GetUnits(ctx context.Context, productID uint64, limit, offset int) ([]InventoryUnit, error) {
	return m.GetUnitsFunc(ctx, productID, limit, offset)
}

func (m *MockStockService) MarkUnits(ctx context.Context, ids []uint64, status UnitStatus) error {
	return m.MarkUnitsFunc(ctx, ids, status)
}

func (m *MockStockService) Reserve(ctx context.Context, productID uint64, quantity int64, orderID uint64, options core.UpdateOptions) (catalog.Product, error) {
	return m.ReserveFunc(ctx, productID, quantity, orderID, options)
}

func (m *MockStockService) Release(ctx context.Context, productID uint64, quantity int64, orderID uint64, options core.UpdateOptions) (catalog.Product, error) {
	return m.ReleaseFunc(ctx, productID, quantity, orderID, options)
}

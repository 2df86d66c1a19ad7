package stockrepo

import (
	"context"

	"github.com/sksmith/go-retail-ledger/core"
	"github.com/sksmith/go-retail-ledger/core/catalog"
	"github.com/sksmith/go-retail-ledger/core/stock"
	"github.com/sksmith/go-retail-ledger/db"
	"github.com/sksmith/go-retail-ledger/test"
)

type MockRepo struct {
	GetMovementFunc    func(ctx context.Context, id uint64, options ...core.QueryOptions) (stock.StockMovement, error)
	GetMovementsFunc   func(ctx context.Context, productID uint64, limit, offset int, options ...core.QueryOptions) ([]stock.StockMovement, error)
	SaveMovementFunc   func(ctx context.Context, movement *stock.StockMovement, options ...core.UpdateOptions) error
	UpdateMovementFunc func(ctx context.Context, movement *stock.StockMovement, options ...core.UpdateOptions) error
	DeleteMovementFunc func(ctx context.Context, id uint64, options ...core.UpdateOptions) error

	GetUnitsFunc                func(ctx context.Context, productID uint64, limit, offset int, options ...core.QueryOptions) ([]stock.InventoryUnit, error)
	GetUnitsByIDsFunc           func(ctx context.Context, ids []uint64, options ...core.QueryOptions) ([]stock.InventoryUnit, error)
	GetAvailableUnitsFunc       func(ctx context.Context, productID uint64, count int64, options ...core.QueryOptions) ([]stock.InventoryUnit, error)
	GetUnitsByEntryMovementFunc func(ctx context.Context, movementID uint64, options ...core.QueryOptions) ([]stock.InventoryUnit, error)
	GetUnitsByExitMovementFunc  func(ctx context.Context, movementID uint64, options ...core.QueryOptions) ([]stock.InventoryUnit, error)
	GetUnitsByOrderFunc         func(ctx context.Context, orderID, productID uint64, options ...core.QueryOptions) ([]stock.InventoryUnit, error)
	CreateUnitsFunc             func(ctx context.Context, units []stock.InventoryUnit, options ...core.UpdateOptions) error
	MarkUnitsFunc               func(ctx context.Context, ids []uint64, status stock.UnitStatus, exitMovementID, orderID uint64, options ...core.UpdateOptions) error
	DeleteUnitsFunc             func(ctx context.Context, ids []uint64, options ...core.UpdateOptions) error

	GetProductFunc  func(ctx context.Context, id uint64, options ...core.QueryOptions) (catalog.Product, error)
	SaveProductFunc func(ctx context.Context, product *catalog.Product, options ...core.UpdateOptions) error

	BeginTransactionFunc func(ctx context.Context) (core.Transaction, error)

	*test.CallWatcher
}

func NewMockRepo() *MockRepo {
	return &MockRepo{
		GetMovementFunc: func(ctx context.Context, id uint64, options ...core.QueryOptions) (stock.StockMovement, error) {
			return stock.StockMovement{}, nil
		},
		GetMovementsFunc: func(ctx context.Context, productID uint64, limit, offset int, options ...core.QueryOptions) ([]stock.StockMovement, error) {
			return nil, nil
		},
		SaveMovementFunc: func(ctx context.Context, movement *stock.StockMovement, options ...core.UpdateOptions) error {
			movement.ID = 1
			return nil
		},
		UpdateMovementFunc: func(ctx context.Context, movement *stock.StockMovement, options ...core.UpdateOptions) error {
			return nil
		},
		DeleteMovementFunc: func(ctx context.Context, id uint64, options ...core.UpdateOptions) error {
			return nil
		},
		GetUnitsFunc: func(ctx context.Context, productID uint64, limit, offset int, options ...core.QueryOptions) ([]stock.InventoryUnit, error) {
			return nil, nil
		},
		GetUnitsByIDsFunc: func(ctx context.Context, ids []uint64, options ...core.QueryOptions) ([]stock.InventoryUnit, error) {
			return nil, nil
		},
		GetAvailableUnitsFunc: func(ctx context.Context, productID uint64, count int64, options ...core.QueryOptions) ([]stock.InventoryUnit, error) {
			return nil, nil
		},
		GetUnitsByEntryMovementFunc: func(ctx context.Context, movementID uint64, options ...core.QueryOptions) ([]stock.InventoryUnit, error) {
			return nil, nil
		},
		GetUnitsByExitMovementFunc: func(ctx context.Context, movementID uint64, options ...core.QueryOptions) ([]stock.InventoryUnit, error) {
			return nil, nil
		},
		GetUnitsByOrderFunc: func(ctx context.Context, orderID, productID uint64, options ...core.QueryOptions) ([]stock.InventoryUnit, error) {
			return nil, nil
		},
		CreateUnitsFunc: func(ctx context.Context, units []stock.InventoryUnit, options ...core.UpdateOptions) error {
			return nil
		},
		MarkUnitsFunc: func(ctx context.Context, ids []uint64, status stock.UnitStatus, exitMovementID, orderID uint64, options ...core.UpdateOptions) error {
			return nil
		},
		DeleteUnitsFunc: func(ctx context.Context, ids []uint64, options ...core.UpdateOptions) error {
			return nil
		},
		GetProductFunc: func(ctx context.Context, id uint64, options ...core.QueryOptions) (catalog.Product, error) {
			return catalog.Product{}, nil
		},
		SaveProductFunc: func(ctx context.Context, product *catalog.Product, options ...core.UpdateOptions) error {
			return nil
		},
		BeginTransactionFunc: func(ctx context.Context) (core.Transaction, error) {
			return db.NewMockTransaction(), nil
		},
		CallWatcher: test.NewCallWatcher(),
	}
}

func (r *MockRepo) GetMovement(ctx context.Context, id uint64, options ...core.QueryOptions) (stock.StockMovement, error) {
	r.AddCall(ctx, id, options)
	return r.GetMovementFunc(ctx, id, options...)
}

func (r *MockRepo) GetMovements(ctx context.Context, productID uint64, limit, offset int, options ...core.QueryOptions) ([]stock.StockMovement, error) {
	r.AddCall(ctx, productID, limit, offset, options)
	return r.GetMovementsFunc(ctx, productID, limit, offset, options...)
}

func (r *MockRepo) SaveMovement(ctx context.Context, movement *stock.StockMovement, options ...core.UpdateOptions) error {
	r.AddCall(ctx, movement, options)
	return r.SaveMovementFunc(ctx, movement, options...)
}

func (r *MockRepo) UpdateMovement(ctx context.Context, movement *stock.StockMovement, options ...core.UpdateOptions) error {
	r.AddCall(ctx, movement, options)
	return r.UpdateMovementFunc(ctx, movement, options...)
}

func (r *MockRepo) DeleteMovement(ctx context.Context, id uint64, options ...core.UpdateOptions) error {
	r.AddCall(ctx, id, options)
	return r.DeleteMovementFunc(ctx, id, options...)
}

func (r *MockRepo) GetUnits(ctx context.Context, productID uint64, limit, offset int, options ...core.QueryOptions) ([]stock.InventoryUnit, error) {
	r.AddCall(ctx, productID, limit, offset, options)
	return r.GetUnitsFunc(ctx, productID, limit, offset, options...)
}

func (r *MockRepo) GetUnitsByIDs(ctx context.Context, ids []uint64, options ...core.QueryOptions) ([]stock.InventoryUnit, error) {
	r.AddCall(ctx, ids, options)
	return r.GetUnitsByIDsFunc(ctx, ids, options...)
}

func (r *MockRepo) GetAvailableUnits(ctx context.Context, productID uint64, count int64, options ...core.QueryOptions) ([]stock.InventoryUnit, error) {
	r.AddCall(ctx, productID, count, options)
	return r.GetAvailableUnitsFunc(ctx, productID, count, options...)
}

func (r *MockRepo) GetUnitsByEntryMovement(ctx context.Context, movementID uint64, options ...core.QueryOptions) ([]stock.InventoryUnit, error) {
	r.AddCall(ctx, movementID, options)
	return r.GetUnitsByEntryMovementFunc(ctx, movementID, options...)
}

func (r *MockRepo) GetUnitsByExitMovement(ctx context.Context, movementID uint64, options ...core.QueryOptions) ([]stock.InventoryUnit, error) {
	r.AddCall(ctx, movementID, options)
	return r.GetUnitsByExitMovementFunc(ctx, movementID, options...)
}

func (r *MockRepo) GetUnitsByOrder(ctx context.Context, orderID, productID uint64, options ...core.QueryOptions) ([]stock.InventoryUnit, error) {
	r.AddCall(ctx, orderID, productID, options)
	return r.GetUnitsByOrderFunc(ctx, orderID, productID, options...)
}

func (r *MockRepo) CreateUnits(ctx context.Context, units []stock.InventoryUnit, options ...core.UpdateOptions) error {
	r.AddCall(ctx, units, options)
	return r.CreateUnitsFunc(ctx, units, options...)
}

func (r *MockRepo) MarkUnits(ctx context.Context, ids []uint64, status stock.UnitStatus, exitMovementID, orderID uint64, options ...core.UpdateOptions) error {
	r.AddCall(ctx, ids, status, exitMovementID, orderID, options)
	return r.MarkUnitsFunc(ctx, ids, status, exitMovementID, orderID, options...)
}

func (r *MockRepo) DeleteUnits(ctx context.Context, ids []uint64, options ...core.UpdateOptions) error {
	r.AddCall(ctx, ids, options)
	return r.DeleteUnitsFunc(ctx, ids, options...)
}

func (r *MockRepo) GetProduct(ctx context.Context, id uint64, options ...core.QueryOptions) (catalog.Product, error) {
	r.AddCall(ctx, id, options)
	return r.GetProductFunc(ctx, id, options...)
}

func (r *MockRepo) SaveProduct(ctx context.Context, product *catalog.Product, options ...core.UpdateOptions) error {
	r.AddCall(ctx, product, options)
	return r.SaveProductFunc(ctx, product, options...)
}

func (r *MockRepo) BeginTransaction(ctx context.Context) (core.Transaction, error) {
	r.AddCall(ctx)
	return r.BeginTransactionFunc(ctx)
}

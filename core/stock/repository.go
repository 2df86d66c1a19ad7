package stock

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/sksmith/go-retail-ledger/core"
	"github.com/sksmith/go-retail-ledger/core/catalog"
)

func rollback(ctx context.Context, tx core.Transaction, err error) {
	if tx == nil {
		return
	}
	e := tx.Rollback(ctx)
	if e != nil {
		log.Warn().Err(err).Msg("failed to rollback")
	}
}

type Repository interface {
	MovementRepository
	UnitRepository
	ProductRepository
}

type MovementRepository interface {
	core.Transactional
	GetMovement(ctx context.Context, id uint64, options ...core.QueryOptions) (StockMovement, error)
	GetMovements(ctx context.Context, productID uint64, limit, offset int, options ...core.QueryOptions) ([]StockMovement, error)

	SaveMovement(ctx context.Context, movement *StockMovement, options ...core.UpdateOptions) error
	UpdateMovement(ctx context.Context, movement *StockMovement, options ...core.UpdateOptions) error
	DeleteMovement(ctx context.Context, id uint64, options ...core.UpdateOptions) error
}

type UnitRepository interface {
	core.Transactional
	GetUnits(ctx context.Context, productID uint64, limit, offset int, options ...core.QueryOptions) ([]InventoryUnit, error)
	GetUnitsByIDs(ctx context.Context, ids []uint64, options ...core.QueryOptions) ([]InventoryUnit, error)
	// GetAvailableUnits returns up to count sellable units for the product,
	// oldest first, ties broken by id.
	GetAvailableUnits(ctx context.Context, productID uint64, count int64, options ...core.QueryOptions) ([]InventoryUnit, error)
	GetUnitsByEntryMovement(ctx context.Context, movementID uint64, options ...core.QueryOptions) ([]InventoryUnit, error)
	GetUnitsByExitMovement(ctx context.Context, movementID uint64, options ...core.QueryOptions) ([]InventoryUnit, error)
	GetUnitsByOrder(ctx context.Context, orderID, productID uint64, options ...core.QueryOptions) ([]InventoryUnit, error)

	CreateUnits(ctx context.Context, units []InventoryUnit, options ...core.UpdateOptions) error
	// MarkUnits transitions the given units to status and stamps (or clears,
	// when zero) the exit movement and order references.
	MarkUnits(ctx context.Context, ids []uint64, status UnitStatus, exitMovementID, orderID uint64, options ...core.UpdateOptions) error
	DeleteUnits(ctx context.Context, ids []uint64, options ...core.UpdateOptions) error
}

type ProductRepository interface {
	core.Transactional
	GetProduct(ctx context.Context, id uint64, options ...core.QueryOptions) (catalog.Product, error)
	SaveProduct(ctx context.Context, product *catalog.Product, options ...core.UpdateOptions) error
}

type Queue interface {
	PublishStockLevel(ctx context.Context, level catalog.StockLevel) error
}

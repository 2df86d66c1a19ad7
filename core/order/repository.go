package order

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
	OrderRepository
	SaleRepository
}

type OrderRepository interface {
	core.Transactional
	// GetOrder loads the order including its line items.
	GetOrder(ctx context.Context, id uint64, options ...core.QueryOptions) (Order, error)
	GetOrders(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]Order, error)

	SaveOrder(ctx context.Context, order *Order, options ...core.UpdateOptions) error
	UpdateOrder(ctx context.Context, order *Order, options ...core.UpdateOptions) error
	// ReplaceItems swaps the order's line items for the given set.
	ReplaceItems(ctx context.Context, orderID uint64, items []OrderItem, options ...core.UpdateOptions) error
	DeleteOrder(ctx context.Context, id uint64, options ...core.UpdateOptions) error
}

type SaleRepository interface {
	core.Transactional
	GetSaleByOrder(ctx context.Context, orderID uint64, options ...core.QueryOptions) (Sale, error)
	GetSales(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]Sale, error)

	SaveSale(ctx context.Context, sale *Sale, options ...core.UpdateOptions) error
	UpdateSale(ctx context.Context, sale *Sale, options ...core.UpdateOptions) error
	DeleteSaleByOrder(ctx context.Context, orderID uint64, options ...core.UpdateOptions) error
}

// StockService is the slice of the stock ledger the order engine drives.
// Reserve and Release join the caller's transaction so an order and its
// quantity effects commit or vanish together.
type StockService interface {
	Reserve(ctx context.Context, productID uint64, quantity int64, orderID uint64, options core.UpdateOptions) (catalog.Product, error)
	Release(ctx context.Context, productID uint64, quantity int64, orderID uint64, options core.UpdateOptions) (catalog.Product, error)
}

type Queue interface {
	PublishSale(ctx context.Context, sale Sale) error
	PublishStockLevel(ctx context.Context, level catalog.StockLevel) error
}

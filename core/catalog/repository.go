package catalog

import (
	"context"

	"github.com/sksmith/go-retail-ledger/core"
)

type Repository interface {
	core.Transactional
	GetProduct(ctx context.Context, id uint64, options ...core.QueryOptions) (Product, error)
	GetProductByBarcode(ctx context.Context, barcode string, options ...core.QueryOptions) (Product, error)
	GetProducts(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]Product, error)
	SearchProducts(ctx context.Context, term string, limit int, options ...core.QueryOptions) ([]Product, error)

	SaveProduct(ctx context.Context, product *Product, options ...core.UpdateOptions) error
}

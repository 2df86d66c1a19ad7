package catalogrepo

import (
	"context"

	"github.com/sksmith/go-retail-ledger/core"
	"github.com/sksmith/go-retail-ledger/core/catalog"
	"github.com/sksmith/go-retail-ledger/db"
	"github.com/sksmith/go-retail-ledger/test"
)

type MockRepo struct {
	GetProductFunc          func(ctx context.Context, id uint64, options ...core.QueryOptions) (catalog.Product, error)
	GetProductByBarcodeFunc func(ctx context.Context, barcode string, options ...core.QueryOptions) (catalog.Product, error)
	GetProductsFunc         func(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]catalog.Product, error)
	SearchProductsFunc      func(ctx context.Context, term string, limit int, options ...core.QueryOptions) ([]catalog.Product, error)
	SaveProductFunc         func(ctx context.Context, product *catalog.Product, options ...core.UpdateOptions) error

	BeginTransactionFunc func(ctx context.Context) (core.Transaction, error)

	*test.CallWatcher
}

func NewMockRepo() *MockRepo {
	return &MockRepo{
		GetProductFunc: func(ctx context.Context, id uint64, options ...core.QueryOptions) (catalog.Product, error) {
			return catalog.Product{}, nil
		},
		GetProductByBarcodeFunc: func(ctx context.Context, barcode string, options ...core.QueryOptions) (catalog.Product, error) {
			return catalog.Product{}, nil
		},
		GetProductsFunc: func(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]catalog.Product, error) {
			return nil, nil
		},
		SearchProductsFunc: func(ctx context.Context, term string, limit int, options ...core.QueryOptions) ([]catalog.Product, error) {
			return nil, nil
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

func (r *MockRepo) GetProduct(ctx context.Context, id uint64, options ...core.QueryOptions) (catalog.Product, error) {
	r.AddCall(ctx, id, options)
	return r.GetProductFunc(ctx, id, options...)
}

func (r *MockRepo) GetProductByBarcode(ctx context.Context, barcode string, options ...core.QueryOptions) (catalog.Product, error) {
	r.AddCall(ctx, barcode, options)
	return r.GetProductByBarcodeFunc(ctx, barcode, options...)
}

func (r *MockRepo) GetProducts(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]catalog.Product, error) {
	r.AddCall(ctx, limit, offset, options)
	return r.GetProductsFunc(ctx, limit, offset, options...)
}

func (r *MockRepo) SearchProducts(ctx context.Context, term string, limit int, options ...core.QueryOptions) ([]catalog.Product, error) {
	r.AddCall(ctx, term, limit, options)
	return r.SearchProductsFunc(ctx, term, limit, options...)
}

func (r *MockRepo) SaveProduct(ctx context.Context, product *catalog.Product, options ...core.UpdateOptions) error {
	r.AddCall(ctx, product, options)
	return r.SaveProductFunc(ctx, product, options...)
}

func (r *MockRepo) BeginTransaction(ctx context.Context) (core.Transaction, error) {
	r.AddCall(ctx)
	return r.BeginTransactionFunc(ctx)
}

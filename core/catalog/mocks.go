package catalog

import "context"

type MockCatalogService struct {
	CreateProductFunc func(ctx context.Context, product Product) (Product, error)
	GetProductFunc    func(ctx context.Context, id uint64) (Product, error)
	GetProductsFunc   func(ctx context.Context, limit, offset int) ([]Product, error)
	ScanBarcodeFunc   func(ctx context.Context, code string) ([]Product, error)
}

func NewMockCatalogService() MockCatalogService {
	return MockCatalogService{
		CreateProductFunc: func(ctx context.Context, product Product) (Product, error) { return product, nil },
		GetProductFunc:    func(ctx context.Context, id uint64) (Product, error) { return Product{}, nil },
		GetProductsFunc:   func(ctx context.Context, limit, offset int) ([]Product, error) { return []Product{}, nil },
		ScanBarcodeFunc:   func(ctx context.Context, code string) ([]Product, error) { return []Product{}, nil },
	}
}

func (m *MockCatalogService) CreateProduct(ctx context.Context, product Product) (Product, error) {
	return m.CreateProductFunc(ctx, product)
}

func (m *MockCatalogService) GetProduct(ctx context.Context, id uint64) (Product, error) {
	return m.GetProductFunc(ctx, id)
}

func (m *MockCatalogService) GetProducts(ctx context.Context, limit, offset int) ([]Product, error) {
	return m.GetProductsFunc(ctx, limit, offset)
}

func (m *MockCatalogService) ScanBarcode(ctx context.Context, code string) ([]Product, error) {
	return m.ScanBarcodeFunc(ctx, code)
}

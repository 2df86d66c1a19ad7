package catalog_test

import (
	"context"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sksmith/go-retail-ledger/core"
	"github.com/sksmith/go-retail-ledger/core/catalog"
	"github.com/sksmith/go-retail-ledger/db/catalogrepo"
	"github.com/sksmith/go-retail-ledger/test"
)

func TestMain(m *testing.M) {
	test.ConfigLogging()
	os.Exit(m.Run())
}

func TestCreateProduct(t *testing.T) {
	tests := []struct {
		name string

		product catalog.Product

		getProductByBarcodeFunc func(ctx context.Context, barcode string, options ...core.QueryOptions) (catalog.Product, error)

		wantRepoCallCnt map[string]int
		wantStatus      catalog.ProductStatus
		wantQuantity    int64
		wantErr         error
		wantAnyErr      bool
	}{
		{
			name:    "new product is saved",
			product: catalog.Product{Name: "someproduct", Barcode: "somebarcode", Price: decimal.NewFromInt(10), Quantity: 3},

			wantRepoCallCnt: map[string]int{"SaveProduct": 1},
			wantStatus:      catalog.Available,
			wantQuantity:    3,
		},
		{
			name:    "zero quantity starts sold out",
			product: catalog.Product{Name: "someproduct", Barcode: "somebarcode"},

			wantRepoCallCnt: map[string]int{"SaveProduct": 1},
			wantStatus:      catalog.SoldOut,
		},
		{
			name:    "unique products ignore a seeded quantity",
			product: catalog.Product{Name: "someunique", Barcode: "somebarcode", IsUnique: true, Quantity: 5},

			wantRepoCallCnt: map[string]int{"SaveProduct": 1},
			wantStatus:      catalog.SoldOut,
			wantQuantity:    0,
		},
		{
			name:    "existing barcode returns the existing product",
			product: catalog.Product{Name: "someproduct", Barcode: "somebarcode"},

			getProductByBarcodeFunc: func(ctx context.Context, barcode string, options ...core.QueryOptions) (catalog.Product, error) {
				return catalog.Product{ID: 7, Name: "someproduct", Barcode: barcode, Quantity: 2, Status: catalog.Available}, nil
			},

			wantRepoCallCnt: map[string]int{"SaveProduct": 0},
			wantStatus:      catalog.Available,
			wantQuantity:    2,
		},
		{
			name:    "name is required",
			product: catalog.Product{Barcode: "somebarcode"},

			wantRepoCallCnt: map[string]int{"SaveProduct": 0},
			wantErr:         core.ErrValidation,
		},
		{
			name:    "price must not be negative",
			product: catalog.Product{Name: "someproduct", Price: decimal.NewFromInt(-1)},

			wantRepoCallCnt: map[string]int{"SaveProduct": 0},
			wantErr:         core.ErrValidation,
		},
		{
			name:    "unexpected lookup error",
			product: catalog.Product{Name: "someproduct", Barcode: "somebarcode"},

			getProductByBarcodeFunc: func(ctx context.Context, barcode string, options ...core.QueryOptions) (catalog.Product, error) {
				return catalog.Product{}, errors.New("some unexpected error")
			},

			wantRepoCallCnt: map[string]int{"SaveProduct": 0},
			wantAnyErr:      true,
		},
	}

	for _, tt := range tests {
		mockRepo := catalogrepo.NewMockRepo()
		mockRepo.GetProductByBarcodeFunc = func(ctx context.Context, barcode string, options ...core.QueryOptions) (catalog.Product, error) {
			return catalog.Product{}, core.ErrNotFound
		}
		if tt.getProductByBarcodeFunc != nil {
			mockRepo.GetProductByBarcodeFunc = tt.getProductByBarcodeFunc
		}

		service := catalog.NewService(mockRepo)

		t.Run(tt.name, func(t *testing.T) {
			product, err := service.CreateProduct(context.Background(), tt.product)
			if tt.wantAnyErr {
				if err == nil {
					t.Error("expected error, got none")
				}
			} else if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("got error=%v want=%v", err, tt.wantErr)
				}
			} else {
				if err != nil {
					t.Fatalf("did not want error, got=%v", err)
				}
				if product.Status != tt.wantStatus {
					t.Errorf("got status=%s want=%s", product.Status, tt.wantStatus)
				}
				if product.Quantity != tt.wantQuantity {
					t.Errorf("got quantity=%d want=%d", product.Quantity, tt.wantQuantity)
				}
				if product.Barcode == "" {
					t.Error("product has no barcode")
				}
			}

			for f, c := range tt.wantRepoCallCnt {
				mockRepo.VerifyCount(f, c, t)
			}
		})
	}
}

func TestCreateProductGeneratesBarcode(t *testing.T) {
	mockRepo := catalogrepo.NewMockRepo()
	mockRepo.GetProductByBarcodeFunc = func(ctx context.Context, barcode string, options ...core.QueryOptions) (catalog.Product, error) {
		return catalog.Product{}, core.ErrNotFound
	}

	service := catalog.NewService(mockRepo)

	product, err := service.CreateProduct(context.Background(), catalog.Product{Name: "someproduct"})
	if err != nil {
		t.Fatalf("did not want error, got=%v", err)
	}
	if len(product.Barcode) != 12 {
		t.Errorf("got barcode=%q want a generated 12 character code", product.Barcode)
	}
}

func TestCreateProductStampsTimestamps(t *testing.T) {
	mockRepo := catalogrepo.NewMockRepo()
	mockRepo.GetProductByBarcodeFunc = func(ctx context.Context, barcode string, options ...core.QueryOptions) (catalog.Product, error) {
		return catalog.Product{}, core.ErrNotFound
	}
	var saved *catalog.Product
	mockRepo.SaveProductFunc = func(ctx context.Context, product *catalog.Product, options ...core.UpdateOptions) error {
		saved = product
		return nil
	}

	service := catalog.NewService(mockRepo)

	if _, err := service.CreateProduct(context.Background(), catalog.Product{Name: "someproduct"}); err != nil {
		t.Fatalf("did not want error, got=%v", err)
	}
	if saved == nil {
		t.Fatal("product was not saved")
	}
	if saved.Created.IsZero() {
		t.Error("created timestamp was not set")
	}
	if !saved.Updated.Equal(saved.Created) {
		t.Errorf("got updated=%v want=%v", saved.Updated, saved.Created)
	}
}

func TestScanBarcode(t *testing.T) {
	tests := []struct {
		name string

		code string

		getProductByBarcodeFunc func(ctx context.Context, barcode string, options ...core.QueryOptions) (catalog.Product, error)
		searchProductsFunc      func(ctx context.Context, term string, limit int, options ...core.QueryOptions) ([]catalog.Product, error)

		wantRepoCallCnt map[string]int
		wantCount       int
		wantErr         error
	}{
		{
			name: "exact barcode match",
			code: "somebarcode",

			getProductByBarcodeFunc: func(ctx context.Context, barcode string, options ...core.QueryOptions) (catalog.Product, error) {
				return catalog.Product{ID: 1, Barcode: barcode}, nil
			},

			wantRepoCallCnt: map[string]int{"SearchProducts": 0},
			wantCount:       1,
		},
		{
			name: "falls back to fuzzy search",
			code: "cola",

			getProductByBarcodeFunc: func(ctx context.Context, barcode string, options ...core.QueryOptions) (catalog.Product, error) {
				return catalog.Product{}, core.ErrNotFound
			},
			searchProductsFunc: func(ctx context.Context, term string, limit int, options ...core.QueryOptions) ([]catalog.Product, error) {
				return []catalog.Product{{ID: 1}, {ID: 2}}, nil
			},

			wantRepoCallCnt: map[string]int{"SearchProducts": 1},
			wantCount:       2,
		},
		{
			name: "nothing matches",
			code: "nosuchthing",

			getProductByBarcodeFunc: func(ctx context.Context, barcode string, options ...core.QueryOptions) (catalog.Product, error) {
				return catalog.Product{}, core.ErrNotFound
			},

			wantRepoCallCnt: map[string]int{"SearchProducts": 1},
			wantErr:         core.ErrNotFound,
		},
		{
			name: "blank code",
			code: "   ",

			wantRepoCallCnt: map[string]int{"GetProductByBarcode": 0},
			wantErr:         core.ErrValidation,
		},
	}

	for _, tt := range tests {
		mockRepo := catalogrepo.NewMockRepo()
		if tt.getProductByBarcodeFunc != nil {
			mockRepo.GetProductByBarcodeFunc = tt.getProductByBarcodeFunc
		}
		if tt.searchProductsFunc != nil {
			mockRepo.SearchProductsFunc = tt.searchProductsFunc
		}

		service := catalog.NewService(mockRepo)

		t.Run(tt.name, func(t *testing.T) {
			products, err := service.ScanBarcode(context.Background(), tt.code)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("got error=%v want=%v", err, tt.wantErr)
				}
			} else {
				if err != nil {
					t.Fatalf("did not want error, got=%v", err)
				}
				if len(products) != tt.wantCount {
					t.Errorf("got %d products, want %d", len(products), tt.wantCount)
				}
			}

			for f, c := range tt.wantRepoCallCnt {
				mockRepo.VerifyCount(f, c, t)
			}
		})
	}
}

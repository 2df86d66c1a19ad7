package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/go-retail-ledger/core"
)

const scanResultLimit = 10

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

type Service interface {
	CreateProduct(ctx context.Context, product Product) (Product, error)
	GetProduct(ctx context.Context, id uint64) (Product, error)
	GetProducts(ctx context.Context, limit, offset int) ([]Product, error)
	ScanBarcode(ctx context.Context, code string) ([]Product, error)
}

type service struct {
	repo Repository
}

func (s *service) CreateProduct(ctx context.Context, product Product) (Product, error) {
	const funcName = "CreateProduct"

	if product.Name == "" {
		return Product{}, errors.WithMessage(core.ErrValidation, "product name is required")
	}
	if product.Price.IsNegative() {
		return Product{}, errors.WithMessage(core.ErrValidation, "product price must not be negative")
	}
	if product.Quantity < 0 {
		return Product{}, errors.WithMessage(core.ErrValidation, "product quantity must not be negative")
	}
	if product.IsUnique {
		// unit counts for unique products are driven by the stock ledger
		product.Quantity = 0
	}
	if product.Barcode == "" {
		product.Barcode = newBarcode()
	}

	if product.Barcode != "" {
		existing, err := s.repo.GetProductByBarcode(ctx, product.Barcode)
		if err != nil && !errors.Is(err, core.ErrNotFound) {
			return Product{}, errors.WithStack(err)
		}
		if existing.ID != 0 {
			log.Debug().
				Str("func", funcName).
				Str("barcode", product.Barcode).
				Msg("product already exists")
			return existing, nil
		}
	}

	log.Info().
		Str("func", funcName).
		Str("name", product.Name).
		Str("barcode", product.Barcode).
		Msg("creating product")

	product.RefreshStatus()
	product.Created = time.Now()
	product.Updated = product.Created
	if err := s.repo.SaveProduct(ctx, &product); err != nil {
		return Product{}, errors.WithStack(err)
	}

	return product, nil
}

func (s *service) GetProduct(ctx context.Context, id uint64) (Product, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return product, errors.WithStack(err)
	}
	return product, nil
}

func (s *service) GetProducts(ctx context.Context, limit, offset int) ([]Product, error) {
	return s.repo.GetProducts(ctx, limit, offset)
}

// ScanBarcode resolves a scanned code to product candidates for order entry.
// An exact barcode hit wins; otherwise it falls back to a fuzzy search across
// name and description so a smudged label still produces something usable.
func (s *service) ScanBarcode(ctx context.Context, code string) ([]Product, error) {
	const funcName = "ScanBarcode"

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errors.WithMessage(core.ErrValidation, "code is required")
	}

	log.Info().
		Str("func", funcName).
		Str("code", code).
		Msg("scanning barcode")

	product, err := s.repo.GetProductByBarcode(ctx, code)
	if err == nil {
		return []Product{product}, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, errors.WithStack(err)
	}

	candidates, err := s.repo.SearchProducts(ctx, code, scanResultLimit)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(candidates) == 0 {
		return nil, errors.WithStack(core.ErrNotFound)
	}
	return candidates, nil
}

func newBarcode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

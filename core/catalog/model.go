// Package catalog holds the canonical product records for the shop. Quantity
// and status on a product are owned by the stock ledger and the order engine;
// the catalog itself only ever touches the descriptive fields.
package catalog

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	Available ProductStatus = "available"
	SoldOut   ProductStatus = "sold_out"
)

// Product is an entity. For bulk products Quantity is the on-hand count; for
// unique products it mirrors the number of sellable inventory units.
type Product struct {
	ID          uint64          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Barcode     string          `json:"barcode"`
	Price       decimal.Decimal `json:"price"`
	IsUnique    bool            `json:"isUnique"`
	Quantity    int64           `json:"quantity"`
	Status      ProductStatus   `json:"status"`
	Created     time.Time       `json:"created"`
	Updated     time.Time       `json:"updated"`
}

// RefreshStatus derives the availability status from the quantity. Call it
// before saving any quantity change.
func (p *Product) RefreshStatus() {
	if p.Quantity > 0 {
		p.Status = Available
	} else {
		p.Status = SoldOut
	}
}

// StockLevel is a value object published whenever a product's on-hand
// quantity changes, regardless of which path changed it.
type StockLevel struct {
	ProductID uint64        `json:"productId"`
	Barcode   string        `json:"barcode"`
	Name      string        `json:"name"`
	Quantity  int64         `json:"quantity"`
	Status    ProductStatus `json:"status"`
}

func LevelFor(p Product) StockLevel {
	return StockLevel{
		ProductID: p.ID,
		Barcode:   p.Barcode,
		Name:      p.Name,
		Quantity:  p.Quantity,
		Status:    p.Status,
	}
}

func ParseProductStatus(v string) (ProductStatus, error) {
	switch v {
	case string(Available):
		return Available, nil
	case string(SoldOut):
		return SoldOut, nil
	default:
		return "", errors.New("invalid product status")
	}
}

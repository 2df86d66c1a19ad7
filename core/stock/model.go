// Package stock implements the stock ledger and the inventory unit registry.
// Every quantity delta in the system, whether from a warehouse movement or an
// order reservation, flows through this package so the product counts and the
// unit registry can never drift apart.
package stock

import (
	"time"

	"github.com/pkg/errors"
)

type MovementType string

const (
	Entry MovementType = "entry"
	Exit  MovementType = "exit"
)

func ParseMovementType(v string) (MovementType, error) {
	switch v {
	case string(Entry):
		return Entry, nil
	case string(Exit):
		return Exit, nil
	default:
		return "", errors.New("invalid movement type")
	}
}

type MovementReason string

const (
	ReasonSold     MovementReason = "sold"
	ReasonReturned MovementReason = "returned"
	ReasonDamaged  MovementReason = "damaged"
	ReasonOther    MovementReason = "other"
	ReasonNone     MovementReason = ""
)

func ParseMovementReason(v string) (MovementReason, error) {
	switch v {
	case string(ReasonSold):
		return ReasonSold, nil
	case string(ReasonReturned):
		return ReasonReturned, nil
	case string(ReasonDamaged):
		return ReasonDamaged, nil
	case string(ReasonOther):
		return ReasonOther, nil
	case string(ReasonNone):
		return ReasonNone, nil
	default:
		return "", errors.New("invalid movement reason")
	}
}

// StockMovement is an entity. A ledger record of stock entering or leaving
// the catalog outside of a sales order.
type StockMovement struct {
	ID        uint64         `json:"id"`
	Type      MovementType   `json:"type"`
	ProductID uint64         `json:"productId"`
	Quantity  int64          `json:"quantity"`
	Reason    MovementReason `json:"reason,omitempty"`
	Notes     string         `json:"notes,omitempty"`
	Created   time.Time      `json:"created"`
}

// MovementRequest is a value object. The caller's description of a movement
// to apply or to replace an existing one with.
type MovementRequest struct {
	Type      MovementType   `json:"type"`
	ProductID uint64         `json:"productId"`
	Quantity  int64          `json:"quantity"`
	Reason    MovementReason `json:"reason"`
	Notes     string         `json:"notes"`
}

type UnitStatus string

const (
	UnitPrinted  UnitStatus = "printed"
	UnitScanned  UnitStatus = "scanned"
	UnitSold     UnitStatus = "sold"
	UnitReturned UnitStatus = "returned"
	UnitDamaged  UnitStatus = "damaged"
	UnitRemoved  UnitStatus = "removed"
)

func ParseUnitStatus(v string) (UnitStatus, error) {
	switch v {
	case string(UnitPrinted):
		return UnitPrinted, nil
	case string(UnitScanned):
		return UnitScanned, nil
	case string(UnitSold):
		return UnitSold, nil
	case string(UnitReturned):
		return UnitReturned, nil
	case string(UnitDamaged):
		return UnitDamaged, nil
	case string(UnitRemoved):
		return UnitRemoved, nil
	default:
		return "", errors.New("invalid unit status")
	}
}

// Sellable reports whether a unit in this status counts toward a unique
// product's available quantity.
func (s UnitStatus) Sellable() bool {
	return s == UnitPrinted || s == UnitScanned
}

// StatusForReason maps an exit reason to the status its units end up in.
func StatusForReason(reason MovementReason) UnitStatus {
	switch reason {
	case ReasonSold:
		return UnitSold
	case ReasonReturned:
		return UnitReturned
	case ReasonDamaged:
		return UnitDamaged
	default:
		return UnitRemoved
	}
}

// InventoryUnit is an entity. One serialized physical instance of a unique
// product. The movement and order references record which operation created
// or consumed the unit so the effect can be reversed precisely.
type InventoryUnit struct {
	ID              uint64     `json:"id"`
	ProductID       uint64     `json:"productId"`
	Code            string     `json:"code"`
	Status          UnitStatus `json:"status"`
	EntryMovementID uint64     `json:"entryMovementId,omitempty"`
	ExitMovementID  uint64     `json:"exitMovementId,omitempty"`
	OrderID         uint64     `json:"orderId,omitempty"`
	Created         time.Time  `json:"created"`
}

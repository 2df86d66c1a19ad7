package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/sksmith/go-retail-ledger/core/stock"
)

type MovementResponse struct {
	stock.StockMovement
}

func NewMovementResponse(movement stock.StockMovement) *MovementResponse {
	return &MovementResponse{StockMovement: movement}
}

func (rd *MovementResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

func NewMovementListResponse(movements []stock.StockMovement) []render.Renderer {
	list := make([]render.Renderer, 0)
	for _, movement := range movements {
		list = append(list, NewMovementResponse(movement))
	}
	return list
}

type MovementRequestDto struct {
	Type      string `json:"type"`
	ProductID uint64 `json:"productId"`
	Quantity  int64  `json:"quantity"`
	Reason    string `json:"reason"`
	Notes     string `json:"notes"`

	movementType stock.MovementType
	reason       stock.MovementReason
}

func (p *MovementRequestDto) Bind(_ *http.Request) error {
	if p.ProductID == 0 {
		return errors.New("productId is required")
	}

	var err error
	p.movementType, err = stock.ParseMovementType(p.Type)
	if err != nil {
		return err
	}
	p.reason, err = stock.ParseMovementReason(p.Reason)
	if err != nil {
		return err
	}

	return nil
}

func (p *MovementRequestDto) MovementRequest() stock.MovementRequest {
	return stock.MovementRequest{
		Type:      p.movementType,
		ProductID: p.ProductID,
		Quantity:  p.Quantity,
		Reason:    p.reason,
		Notes:     p.Notes,
	}
}

type UnitResponse struct {
	stock.InventoryUnit
}

func NewUnitResponse(unit stock.InventoryUnit) *UnitResponse {
	return &UnitResponse{InventoryUnit: unit}
}

func (rd *UnitResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

func NewUnitListResponse(units []stock.InventoryUnit) []render.Renderer {
	list := make([]render.Renderer, 0)
	for _, unit := range units {
		list = append(list, NewUnitResponse(unit))
	}
	return list
}

type CreateUnitsRequest struct {
	ProductID uint64 `json:"productId"`
	Count     int64  `json:"count"`
}

func (p *CreateUnitsRequest) Bind(_ *http.Request) error {
	if p.ProductID == 0 {
		return errors.New("productId is required")
	}
	if p.Count < 1 {
		return errors.New("count must be greater than zero")
	}

	return nil
}

type MarkUnitsRequest struct {
	IDs    []uint64 `json:"ids"`
	Status string   `json:"status"`

	status stock.UnitStatus
}

func (p *MarkUnitsRequest) Bind(_ *http.Request) error {
	if len(p.IDs) == 0 {
		return errors.New("ids are required")
	}

	var err error
	p.status, err = stock.ParseUnitStatus(p.Status)
	if err != nil {
		return err
	}

	return nil
}

func (p *MarkUnitsRequest) UnitStatus() stock.UnitStatus {
	return p.status
}

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/sksmith/go-retail-ledger/core/order"
)

type OrderResponse struct {
	order.Order
}

func NewOrderResponse(o order.Order) *OrderResponse {
	return &OrderResponse{Order: o}
}

func (rd *OrderResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

func NewOrderListResponse(orders []order.Order) []render.Renderer {
	list := make([]render.Renderer, 0)
	for _, o := range orders {
		list = append(list, NewOrderResponse(o))
	}
	return list
}

type CreateOrderResponse struct {
	order.Order
	Sale order.Sale `json:"sale"`
}

func NewCreateOrderResponse(o order.Order, sale order.Sale) *CreateOrderResponse {
	return &CreateOrderResponse{Order: o, Sale: sale}
}

func (rd *CreateOrderResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

type OrderRequestDto struct {
	order.OrderRequest
}

func (p *OrderRequestDto) Bind(_ *http.Request) error {
	if p.Customer == "" && len(p.Items) == 0 {
		return errors.New("missing required field(s)")
	}

	return nil
}

type SaleResponse struct {
	order.Sale
}

func NewSaleResponse(sale order.Sale) *SaleResponse {
	return &SaleResponse{Sale: sale}
}

func (rd *SaleResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

func NewSaleListResponse(sales []order.Sale) []render.Renderer {
	list := make([]render.Renderer, 0)
	for _, sale := range sales {
		list = append(list, NewSaleResponse(sale))
	}
	return list
}

type PaymentRequestDto struct {
	order.PaymentRequest
}

func (p *PaymentRequestDto) Bind(_ *http.Request) error {
	if p.OrderID == 0 {
		return errors.New("orderId is required")
	}
	if !p.Amount.IsPositive() {
		return errors.New("amount must be a positive number")
	}

	return nil
}

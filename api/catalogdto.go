package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/sksmith/go-retail-ledger/core/catalog"
)

type ProductResponse struct {
	catalog.Product
}

func NewProductResponse(product catalog.Product) *ProductResponse {
	resp := &ProductResponse{Product: product}
	return resp
}

func (rd *ProductResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

func NewProductListResponse(products []catalog.Product) []render.Renderer {
	list := make([]render.Renderer, 0)
	for _, product := range products {
		list = append(list, NewProductResponse(product))
	}
	return list
}

type CreateProductRequest struct {
	catalog.Product
}

func (p *CreateProductRequest) Bind(_ *http.Request) error {
	if p.Name == "" {
		return errors.New("missing required field(s)")
	}

	return nil
}

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/go-retail-ledger/core"
	"github.com/sksmith/go-retail-ledger/core/catalog"
)

type CatalogService interface {
	CreateProduct(ctx context.Context, product catalog.Product) (catalog.Product, error)
	GetProduct(ctx context.Context, id uint64) (catalog.Product, error)
	GetProducts(ctx context.Context, limit, offset int) ([]catalog.Product, error)
	ScanBarcode(ctx context.Context, code string) ([]catalog.Product, error)
}

type CatalogApi struct {
	service CatalogService
}

func NewCatalogApi(service CatalogService) *CatalogApi {
	return &CatalogApi{service: service}
}

const (
	CtxKeyProduct CtxKey = "product"
)

func (a *CatalogApi) ConfigureRouter(r chi.Router) {
	r.With(Paginate).Get("/", a.List)
	r.Put("/", a.Create)
	r.Get("/scan/{code}", a.Scan)

	r.Route("/{id}", func(r chi.Router) {
		r.Use(a.ProductCtx)
		r.Get("/", a.Get)
	})
}

func (a *CatalogApi) List(w http.ResponseWriter, r *http.Request) {
	limit := r.Context().Value(CtxKeyLimit).(int)
	offset := r.Context().Value(CtxKeyOffset).(int)

	products, err := a.service.GetProducts(r.Context(), limit, offset)
	if err != nil {
		log.Err(err).Send()
		Render(w, r, ErrRender(err))
		return
	}

	RenderList(w, r, NewProductListResponse(products))
}

func (a *CatalogApi) Create(w http.ResponseWriter, r *http.Request) {
	data := &CreateProductRequest{}
	if err := render.Bind(r, data); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	created, err := a.service.CreateProduct(r.Context(), data.Product)
	if err != nil {
		log.Err(err).Send()
		Render(w, r, ErrRender(err))
		return
	}

	render.Status(r, http.StatusCreated)
	Render(w, r, NewProductResponse(created))
}

// Scan resolves a scanned barcode: an exact match returns a single product,
// otherwise a fuzzy search over names and barcodes.
func (a *CatalogApi) Scan(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		Render(w, r, ErrInvalidRequest(errors.New("code is required")))
		return
	}

	products, err := a.service.ScanBarcode(r.Context(), code)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			log.Err(err).Send()
		}
		Render(w, r, ErrRender(err))
		return
	}

	RenderList(w, r, NewProductListResponse(products))
}

func (a *CatalogApi) ProductCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			Render(w, r, ErrInvalidRequest(errors.New("id must be a number")))
			return
		}

		product, err := a.service.GetProduct(r.Context(), id)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				Render(w, r, ErrNotFound)
			} else {
				log.Error().Err(err).Uint64("id", id).Msg("error acquiring product")
				Render(w, r, ErrInternalServer)
			}
			return
		}

		ctx := context.WithValue(r.Context(), CtxKeyProduct, product)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *CatalogApi) Get(w http.ResponseWriter, r *http.Request) {
	product := r.Context().Value(CtxKeyProduct).(catalog.Product)

	render.Status(r, http.StatusOK)
	Render(w, r, NewProductResponse(product))
}

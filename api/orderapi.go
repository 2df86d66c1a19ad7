package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/go-retail-ledger/core/order"
)

type OrderService interface {
	CreateOrder(ctx context.Context, req order.OrderRequest) (order.Order, order.Sale, error)
	UpdateOrder(ctx context.Context, id uint64, req order.OrderRequest) (order.Order, error)
	CancelOrder(ctx context.Context, id uint64) (order.Order, error)
	CompleteOrder(ctx context.Context, id uint64) (order.Order, error)
	DeleteOrder(ctx context.Context, id uint64) error
	GetOrder(ctx context.Context, id uint64) (order.Order, error)
	GetOrders(ctx context.Context, limit, offset int) ([]order.Order, error)

	ConfirmPayment(ctx context.Context, req order.PaymentRequest) (order.Sale, error)
	GetSales(ctx context.Context, limit, offset int) ([]order.Sale, error)
}

type OrderApi struct {
	service OrderService
}

func NewOrderApi(service OrderService) *OrderApi {
	return &OrderApi{service: service}
}

func (a *OrderApi) ConfigureRouter(r chi.Router) {
	r.With(Paginate).Get("/", a.List)
	r.Post("/", a.Create)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", a.Get)
		r.Put("/", a.Update)
		r.Delete("/", a.Delete)
		r.Post("/cancel", a.Cancel)
		r.Post("/complete", a.Complete)
	})
}

// ConfigureSaleRouter mounts the settlement surface: listing sales and
// confirming payments against an order.
func (a *OrderApi) ConfigureSaleRouter(r chi.Router) {
	r.With(Paginate).Get("/", a.ListSales)
	r.Post("/payment", a.ConfirmPayment)
}

func (a *OrderApi) List(w http.ResponseWriter, r *http.Request) {
	limit := r.Context().Value(CtxKeyLimit).(int)
	offset := r.Context().Value(CtxKeyOffset).(int)

	orders, err := a.service.GetOrders(r.Context(), limit, offset)
	if err != nil {
		log.Err(err).Send()
		Render(w, r, ErrRender(err))
		return
	}

	RenderList(w, r, NewOrderListResponse(orders))
}

func (a *OrderApi) Create(w http.ResponseWriter, r *http.Request) {
	data := &OrderRequestDto{}
	if err := render.Bind(r, data); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	o, sale, err := a.service.CreateOrder(r.Context(), data.OrderRequest)
	if err != nil {
		log.Err(err).Send()
		Render(w, r, ErrRender(err))
		return
	}

	render.Status(r, http.StatusCreated)
	Render(w, r, NewCreateOrderResponse(o, sale))
}

func (a *OrderApi) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	o, err := a.service.GetOrder(r.Context(), id)
	if err != nil {
		Render(w, r, ErrRender(err))
		return
	}

	Render(w, r, NewOrderResponse(o))
}

func (a *OrderApi) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	data := &OrderRequestDto{}
	if err := render.Bind(r, data); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	o, err := a.service.UpdateOrder(r.Context(), id, data.OrderRequest)
	if err != nil {
		log.Err(err).Send()
		Render(w, r, ErrRender(err))
		return
	}

	Render(w, r, NewOrderResponse(o))
}

func (a *OrderApi) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	o, err := a.service.CancelOrder(r.Context(), id)
	if err != nil {
		log.Err(err).Send()
		Render(w, r, ErrRender(err))
		return
	}

	Render(w, r, NewOrderResponse(o))
}

func (a *OrderApi) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	o, err := a.service.CompleteOrder(r.Context(), id)
	if err != nil {
		log.Err(err).Send()
		Render(w, r, ErrRender(err))
		return
	}

	Render(w, r, NewOrderResponse(o))
}

func (a *OrderApi) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	if err := a.service.DeleteOrder(r.Context(), id); err != nil {
		log.Err(err).Send()
		Render(w, r, ErrRender(err))
		return
	}

	render.NoContent(w, r)
}

func (a *OrderApi) ListSales(w http.ResponseWriter, r *http.Request) {
	limit := r.Context().Value(CtxKeyLimit).(int)
	offset := r.Context().Value(CtxKeyOffset).(int)

	sales, err := a.service.GetSales(r.Context(), limit, offset)
	if err != nil {
		log.Err(err).Send()
		Render(w, r, ErrRender(err))
		return
	}

	RenderList(w, r, NewSaleListResponse(sales))
}

func (a *OrderApi) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	data := &PaymentRequestDto{}
	if err := render.Bind(r, data); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	sale, err := a.service.ConfirmPayment(r.Context(), data.PaymentRequest)
	if err != nil {
		log.Err(err).Send()
		Render(w, r, ErrRender(err))
		return
	}

	Render(w, r, NewSaleResponse(sale))
}

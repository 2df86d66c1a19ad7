package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/go-retail-ledger/core/catalog"
	"github.com/sksmith/go-retail-ledger/core/stock"
)

type StockService interface {
	ApplyMovement(ctx context.Context, req stock.MovementRequest) (stock.StockMovement, error)
	ReviseMovement(ctx context.Context, id uint64, req stock.MovementRequest) (stock.StockMovement, error)
	RetractMovement(ctx context.Context, id uint64) error
	GetMovement(ctx context.Context, id uint64) (stock.StockMovement, error)
	GetMovements(ctx context.Context, productID uint64, limit, offset int) ([]stock.StockMovement, error)

	CreateUnits(ctx context.Context, productID uint64, count int64) ([]stock.InventoryUnit, error)
	GetUnits(ctx context.Context, productID uint64, limit, offset int) ([]stock.InventoryUnit, error)
	MarkUnits(ctx context.Context, ids []uint64, status stock.UnitStatus) error
}

// LevelSource provides real-time stock level updates for websocket clients.
type LevelSource interface {
	SubscribeStockLevels(ch chan<- catalog.StockLevel) uuid.UUID
	UnsubscribeStockLevels(id uuid.UUID)
}

type StockApi struct {
	service StockService
	levels  LevelSource
}

func NewStockApi(service StockService, levels LevelSource) *StockApi {
	return &StockApi{service: service, levels: levels}
}

func (a *StockApi) ConfigureRouter(r chi.Router) {
	r.HandleFunc("/subscribe", a.Subscribe)

	r.Route("/movement", func(r chi.Router) {
		r.With(Paginate).Get("/", a.ListMovements)
		r.Post("/", a.ApplyMovement)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", a.GetMovement)
			r.Put("/", a.ReviseMovement)
			r.Delete("/", a.RetractMovement)
		})
	})

	r.Route("/unit", func(r chi.Router) {
		r.With(Paginate).Get("/", a.ListUnits)
		r.Post("/", a.CreateUnits)
		r.Post("/mark", a.MarkUnits)
	})
}

// Subscribe streams stock level updates to the client over a websocket
// connection.
func (a *StockApi) Subscribe(w http.ResponseWriter, r *http.Request) {
	log.Info().Msg("client requesting stock level subscription")

	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		log.Err(err).Msg("failed to establish stock level subscription connection")
		Render(w, r, ErrInternalServer)
		return
	}
	go func() {
		defer conn.Close()

		ch := make(chan catalog.StockLevel, 1)

		id := a.levels.SubscribeStockLevels(ch)
		defer func() {
			a.levels.UnsubscribeStockLevels(id)
		}()

		for level := range ch {
			body, err := json.Marshal(level)
			if err != nil {
				log.Err(err).Interface("clientId", id).Msg("failed to marshal stock level")
				continue
			}

			log.Debug().Interface("clientId", id).Interface("level", level).Msg("sending stock level to client")
			err = wsutil.WriteServerText(conn, body)
			if err != nil {
				log.Err(err).Interface("clientId", id).Msg("failed to write server message, disconnecting client")
				return
			}
		}
	}()
}

func (a *StockApi) ListMovements(w http.ResponseWriter, r *http.Request) {
	limit := r.Context().Value(CtxKeyLimit).(int)
	offset := r.Context().Value(CtxKeyOffset).(int)

	productID, err := optionalID(r.URL.Query().Get("product"))
	if err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	movements, err := a.service.GetMovements(r.Context(), productID, limit, offset)
	if err != nil {
		log.Err(err).Send()
		Render(w, r, ErrRender(err))
		return
	}

	RenderList(w, r, NewMovementListResponse(movements))
}

func (a *StockApi) ApplyMovement(w http.ResponseWriter, r *http.Request) {
	data := &MovementRequestDto{}
	if err := render.Bind(r, data); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	movement, err := a.service.ApplyMovement(r.Context(), data.MovementRequest())
	if err != nil {
		log.Err(err).Send()
		Render(w, r, ErrRender(err))
		return
	}

	render.Status(r, http.StatusCreated)
	Render(w, r, NewMovementResponse(movement))
}

func (a *StockApi) GetMovement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	movement, err := a.service.GetMovement(r.Context(), id)
	if err != nil {
		Render(w, r, ErrRender(err))
		return
	}

	Render(w, r, NewMovementResponse(movement))
}

func (a *StockApi) ReviseMovement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	data := &MovementRequestDto{}
	if err := render.Bind(r, data); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	movement, err := a.service.ReviseMovement(r.Context(), id, data.MovementRequest())
	if err != nil {
		log.Err(err).Send()
		Render(w, r, ErrRender(err))
		return
	}

	Render(w, r, NewMovementResponse(movement))
}

func (a *StockApi) RetractMovement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	if err := a.service.RetractMovement(r.Context(), id); err != nil {
		log.Err(err).Send()
		Render(w, r, ErrRender(err))
		return
	}

	render.NoContent(w, r)
}

func (a *StockApi) ListUnits(w http.ResponseWriter, r *http.Request) {
	limit := r.Context().Value(CtxKeyLimit).(int)
	offset := r.Context().Value(CtxKeyOffset).(int)

	productID, err := optionalID(r.URL.Query().Get("product"))
	if err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	units, err := a.service.GetUnits(r.Context(), productID, limit, offset)
	if err != nil {
		log.Err(err).Send()
		Render(w, r, ErrRender(err))
		return
	}

	RenderList(w, r, NewUnitListResponse(units))
}

func (a *StockApi) CreateUnits(w http.ResponseWriter, r *http.Request) {
	data := &CreateUnitsRequest{}
	if err := render.Bind(r, data); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	units, err := a.service.CreateUnits(r.Context(), data.ProductID, data.Count)
	if err != nil {
		log.Err(err).Send()
		Render(w, r, ErrRender(err))
		return
	}

	render.Status(r, http.StatusCreated)
	RenderList(w, r, NewUnitListResponse(units))
}

func (a *StockApi) MarkUnits(w http.ResponseWriter, r *http.Request) {
	data := &MarkUnitsRequest{}
	if err := render.Bind(r, data); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	if err := a.service.MarkUnits(r.Context(), data.IDs, data.UnitStatus()); err != nil {
		log.Err(err).Send()
		Render(w, r, ErrRender(err))
		return
	}

	render.NoContent(w, r)
}

func pathID(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errors.New("id must be a number")
	}
	return id, nil
}

func optionalID(v string) (uint64, error) {
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, errors.New("product must be a number")
	}
	return id, nil
}

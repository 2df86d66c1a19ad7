package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/go-retail-ledger/core/user"
)

type UserService interface {
	Create(ctx context.Context, user user.CreateUserRequest) (user.User, error)
	Get(ctx context.Context, username string) (user.User, error)
	Delete(ctx context.Context, username string) error
	Login(ctx context.Context, username, password string) (user.User, error)
}

type UserApi struct {
	service UserService
}

func NewUserApi(service UserService) *UserApi {
	return &UserApi{service: service}
}

func (a *UserApi) ConfigureRouter(r chi.Router) {
	r.With(AdminOnly).Post("/", a.Create)
	r.With(AdminOnly).Delete("/{username}", a.Delete)
}

func (a *UserApi) Create(w http.ResponseWriter, r *http.Request) {
	data := &CreateUserRequestDto{}
	if err := render.Bind(r, data); err != nil {
		log.Err(err).Send()
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	created, err := a.service.Create(r.Context(), *data.CreateUserRequest)
	if err != nil {
		log.Err(err).Send()
		Render(w, r, ErrRender(err))
		return
	}

	render.Status(r, http.StatusCreated)
	Render(w, r, NewUserResponse(created))
}

func (a *UserApi) Delete(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	if err := a.service.Delete(r.Context(), username); err != nil {
		log.Err(err).Send()
		Render(w, r, ErrRender(err))
		return
	}

	render.NoContent(w, r)
}

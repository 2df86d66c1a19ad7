package api

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/sksmith/go-retail-ledger/config"
)

type EnvApi struct {
	config *config.Config
}

func NewEnvApi(c *config.Config) *EnvApi {
	return &EnvApi{config: c}
}

func (a *EnvApi) ConfigureRouter(r chi.Router) {
	r.Get("/", a.GetEnv)
}

func (a *EnvApi) GetEnv(w http.ResponseWriter, r *http.Request) {
	Render(w, r, NewEnvResponse(*a.config))
}

package api

import (
	"context"
	"net/http"

	"github.com/gitpulse-io/gitpulse/config"
	"github.com/gitpulse-io/gitpulse/db/dao"
	"github.com/gitpulse-io/gitpulse/pkg/http/middlewares"
	"github.com/gitpulse-io/gitpulse/pkg/http/response"
	"github.com/gitpulse-io/gitpulse/pkg/types"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// API serves the webhook ingestion endpoint and the polling feed.
type API struct {
	cfg         *config.Config
	log         *zap.SugaredLogger
	events      dao.EventDAO
	ping        func(context.Context) error
	stats       func() map[string]interface{}
	middlewares []mux.MiddlewareFunc
}

type Options struct {
	Config      *config.Config
	Events      dao.EventDAO
	Ping        func(context.Context) error
	Stats       func() map[string]interface{}
	Middlewares []mux.MiddlewareFunc
}

func NewAPI(opts Options) *API {
	return &API{
		cfg:         opts.Config,
		log:         zap.S(),
		events:      opts.Events,
		ping:        opts.Ping,
		stats:       opts.Stats,
		middlewares: opts.Middlewares,
	}
}

// query returns the url query value if it exists.
func (api *API) query(r *http.Request, name string) string {
	return r.URL.Query().Get(name)
}

func (api *API) json(code int, w http.ResponseWriter, data interface{}) {
	response.JSON(w, code, data)
}

func (api *API) error(code int, w http.ResponseWriter, err error) {
	api.json(code, w, types.ErrorResponse{Message: err.Error()})
}

// Handler returns a http.Handler
func (api *API) Handler() http.Handler {
	r := mux.NewRouter()

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, 404, types.ErrorResponse{Message: "not found"})
	})

	for _, m := range api.middlewares {
		r.Use(m)
	}
	r.Use(middlewares.PanicRecovery)

	r.HandleFunc("/", api.Index).Methods("GET")
	r.HandleFunc("/health", api.Health).Methods("GET")

	r.HandleFunc("/webhook", api.Webhook).Methods("POST")
	r.HandleFunc("/webhook", api.WebhookInfo).Methods("GET")

	r.HandleFunc("/api/events", api.ListEvents).Methods("GET")

	return r
}

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gitpulse-io/gitpulse"
)

// Index serves the dashboard shell.
func (api *API) Index(w http.ResponseWriter, r *http.Request) {
	content, err := gitpulse.Web.ReadFile("web/index.html")
	if err != nil {
		api.json(500, w, map[string]string{"message": "internal error"})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(content)
}

// Health reports process and storage liveness.
func (api *API) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*3)
	defer cancel()

	status, database, code := "ok", "connected", 200
	if err := api.ping(ctx); err != nil {
		api.log.Warnf("[api] database ping failed: %v", err)
		status, database, code = "degraded", "disconnected", 503
	}

	data := map[string]interface{}{
		"status":   status,
		"service":  "gitpulse",
		"database": database,
	}
	if api.stats != nil {
		for k, v := range api.stats() {
			data[k] = v
		}
	}
	api.json(code, w, data)
}

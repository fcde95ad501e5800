package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gitpulse-io/gitpulse/db/entities"
	"github.com/gitpulse-io/gitpulse/db/query"
)

type EventsResponse struct {
	Success bool              `json:"success"`
	Events  []*entities.Event `json:"events"`
	Count   int               `json:"count"`
}

// ListEvents serves the incremental polling feed: events newest first,
// optionally filtered by an exclusive `since` cursor held by the client.
func (api *API) ListEvents(w http.ResponseWriter, r *http.Request) {
	var q query.EventQuery

	if since := api.query(r, "since"); since != "" {
		parsed, err := time.Parse(time.RFC3339, since)
		if err != nil {
			api.error(400, w, errors.New("invalid 'since' parameter: must be an ISO-8601 instant"))
			return
		}
		q.Since = &parsed
	}

	if limit := api.query(r, "limit"); limit != "" {
		parsed, err := strconv.Atoi(limit)
		if err != nil || parsed <= 0 {
			api.error(400, w, errors.New("invalid 'limit' parameter: must be a positive integer"))
			return
		}
		q.SetLimit(int64(parsed))
	}

	q.Author = api.query(r, "author")

	list, err := api.events.ListFeed(r.Context(), &q)
	if err != nil {
		api.log.Errorf("[api] failed to fetch events: %v", err)
		api.error(500, w, errors.New("failed to fetch events"))
		return
	}

	api.json(200, w, EventsResponse{
		Success: true,
		Events:  list,
		Count:   len(list),
	})
}

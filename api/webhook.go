package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gitpulse-io/gitpulse/constants"
	"github.com/gitpulse-io/gitpulse/normalizer"
	"github.com/gitpulse-io/gitpulse/pkg/signature"
	"github.com/gitpulse-io/gitpulse/pkg/types"
	"github.com/gitpulse-io/gitpulse/utils"
)

type WebhookResponse struct {
	Message string `json:"message"`
	EventID string `json:"event_id,omitempty"`
}

// Webhook ingests a GitHub webhook delivery. The raw body is read and
// verified before any parsing: the signature covers the exact transmitted
// bytes. Deliveries are at-least-once, so the insert tolerates duplicates and
// storage failures surface as 5xx to trigger redelivery.
func (api *API) Webhook(w http.ResponseWriter, r *http.Request) {
	delivery := r.Header.Get(constants.HeaderDelivery)

	body, err := io.ReadAll(io.LimitReader(r.Body, api.cfg.Webhook.MaxBodySize))
	if err != nil {
		api.error(400, w, errors.New("failed to read request body"))
		return
	}

	eventType := r.Header.Get(constants.HeaderEvent)
	if eventType == "" {
		api.error(400, w, errors.New("missing "+constants.HeaderEvent+" header"))
		return
	}

	if !api.cfg.Webhook.AllowUnsigned {
		err := signature.Verify(body, r.Header.Get(constants.HeaderSignature), api.cfg.Webhook.Secret)
		if err != nil {
			api.log.Warnf("[webhook] rejected delivery %s: %v", delivery, err)
			api.json(401, w, types.ErrorResponse{Message: "invalid signature"})
			return
		}
	}

	if !json.Valid(body) {
		api.error(400, w, errors.New("invalid JSON payload"))
		return
	}

	event, err := normalizer.Normalize(eventType, body)
	if err != nil {
		var ipe *normalizer.InvalidPayloadError
		if errors.As(err, &ipe) {
			api.log.Warnf("[webhook] delivery %s: %v", delivery, err)
			api.error(422, w, err)
			return
		}
		api.error(400, w, err)
		return
	}
	if event == nil {
		api.log.Debugf("[webhook] ignoring %q delivery %s", eventType, delivery)
		api.json(200, w, WebhookResponse{Message: "event ignored"})
		return
	}

	event.ID = utils.KSUID()

	ctx, cancel := context.WithTimeout(r.Context(), constants.StorageTimeout)
	defer cancel()

	inserted, err := api.events.InsertIgnoreConflict(ctx, event)
	if err != nil {
		api.log.Errorf("[webhook] failed to store event %s/%s: %v", event.RequestID, event.Action, err)
		api.error(500, w, errors.New("storage unavailable"))
		return
	}

	if !inserted {
		api.log.Infof("[webhook] duplicate delivery %s for event %s/%s", delivery, event.RequestID, event.Action)
		api.json(200, w, WebhookResponse{Message: "duplicate event ignored", EventID: event.RequestID})
		return
	}

	api.log.Infof("[webhook] stored %s event %s by %s", event.Action, event.RequestID, event.Author)
	api.json(200, w, WebhookResponse{Message: "event processed", EventID: event.RequestID})
}

// WebhookInfo describes the webhook endpoint.
func (api *API) WebhookInfo(w http.ResponseWriter, r *http.Request) {
	api.json(200, w, map[string]interface{}{
		"message": "GitHub webhook endpoint",
		"method":  "POST",
		"events":  []string{"push", "pull_request"},
		"status":  "active",
	})
}

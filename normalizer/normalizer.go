// Package normalizer maps GitHub webhook payloads onto canonical events.
//
// Normalize has three outcomes: a canonical event, a skip (nil event, nil
// error) for event types and sub-actions this system does not track, or an
// *InvalidPayloadError when a payload violates the expected shape for its
// declared type.
package normalizer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gitpulse-io/gitpulse/db/entities"
	"github.com/gitpulse-io/gitpulse/pkg/types"
	"github.com/gitpulse-io/gitpulse/utils"
	"github.com/tidwall/gjson"
)

const shortHashLen = 7

// InvalidPayloadError means a recognized event type carried a payload that is
// missing or malformed in a required field.
type InvalidPayloadError struct {
	EventType string
	Field     string
	Reason    string
}

func (e *InvalidPayloadError) Error() string {
	return fmt.Sprintf("invalid %s payload: %s (%s)", e.EventType, e.Field, e.Reason)
}

func invalid(eventType, field, reason string) *InvalidPayloadError {
	return &InvalidPayloadError{EventType: eventType, Field: field, Reason: reason}
}

// Normalize converts a webhook delivery into a canonical event. It is a pure
// function of (eventType, payload); the caller assigns the storage id.
func Normalize(eventType string, payload []byte) (*entities.Event, error) {
	switch eventType {
	case "push":
		return normalizePush(payload)
	case "pull_request":
		return normalizePullRequest(payload)
	default:
		return nil, nil
	}
}

func normalizePush(payload []byte) (*entities.Event, error) {
	// branch deletions and tag pushes deliver an empty commits array
	if gjson.GetBytes(payload, "commits.#").Int() == 0 {
		return nil, nil
	}

	var p PushPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, invalid("push", "payload", err.Error())
	}

	if p.Ref == "" {
		return nil, invalid("push", "ref", "missing")
	}
	branch := strings.TrimPrefix(p.Ref, "refs/heads/")

	// one event per push: identity and time come from the newest commit
	latest := p.Commits[len(p.Commits)-1]
	if len(latest.ID) < shortHashLen {
		return nil, invalid("push", "commits.id", "missing or too short")
	}

	author := utils.DefaultIfZero(p.Pusher.Name, latest.Author.Name)
	if author == "" {
		return nil, invalid("push", "pusher.name", "missing")
	}

	timestamp, err := time.Parse(time.RFC3339, latest.Timestamp)
	if err != nil {
		return nil, invalid("push", "commits.timestamp", err.Error())
	}

	return &entities.Event{
		RequestID: latest.ID[:shortHashLen],
		Author:    author,
		Action:    entities.ActionPush,
		ToBranch:  branch,
		Timestamp: types.NewTime(timestamp),
	}, nil
}

func normalizePullRequest(payload []byte) (*entities.Event, error) {
	var action entities.Action
	switch gjson.GetBytes(payload, "action").String() {
	case "opened":
		action = entities.ActionPullRequest
	case "closed":
		if !gjson.GetBytes(payload, "pull_request.merged").Bool() {
			// closed without merge
			return nil, nil
		}
		action = entities.ActionMerge
	default:
		// synchronize, reopened, labeled, ...
		return nil, nil
	}

	var p PullRequestPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, invalid("pull_request", "payload", err.Error())
	}
	pr := p.PullRequest

	if pr.Number <= 0 {
		return nil, invalid("pull_request", "pull_request.number", "missing")
	}
	if pr.User.Login == "" {
		return nil, invalid("pull_request", "pull_request.user.login", "missing")
	}
	if pr.Head.Ref == "" || pr.Base.Ref == "" {
		return nil, invalid("pull_request", "pull_request.head.ref/base.ref", "missing")
	}

	// a merge is timestamped by the merge, an opened PR by its creation;
	// the distinct action keeps both rows under one PR number
	raw := pr.CreatedAt
	field := "pull_request.created_at"
	if action == entities.ActionMerge {
		raw = pr.MergedAt
		field = "pull_request.merged_at"
	}
	timestamp, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, invalid("pull_request", field, err.Error())
	}

	return &entities.Event{
		RequestID:  strconv.Itoa(pr.Number),
		Author:     pr.User.Login,
		Action:     action,
		FromBranch: utils.Pointer(pr.Head.Ref),
		ToBranch:   pr.Base.Ref,
		Timestamp:  types.NewTime(timestamp),
	}, nil
}

package entities

import (
	"fmt"
	"slices"

	"github.com/gitpulse-io/gitpulse/pkg/types"
)

// Action is the normalized kind of a source action. The set is closed;
// unrecognized source events are rejected before they reach storage.
type Action string

const (
	ActionPush        Action = "PUSH"
	ActionPullRequest Action = "PULL_REQUEST"
	ActionMerge       Action = "MERGE"
)

var Actions = []Action{ActionPush, ActionPullRequest, ActionMerge}

// Event is the canonical record of one source action. It is created once by
// the normalizer and never mutated; (RequestID, Action) is the dedup
// identity, enforced by the events_request_id_action_key constraint.
type Event struct {
	ID         string     `json:"-" db:"id"`
	RequestID  string     `json:"request_id" db:"request_id"`
	Author     string     `json:"author" db:"author"`
	Action     Action     `json:"action" db:"action"`
	FromBranch *string    `json:"from_branch" db:"from_branch"`
	ToBranch   string     `json:"to_branch" db:"to_branch"`
	Timestamp  types.Time `json:"timestamp" db:"timestamp"`
	IngestedAt types.Time `json:"-" db:"ingested_at"`
}

func (e *Event) Validate() error {
	if e.RequestID == "" {
		return fmt.Errorf("request_id is required")
	}
	if e.Author == "" {
		return fmt.Errorf("author is required")
	}
	if !slices.Contains(Actions, e.Action) {
		return fmt.Errorf("invalid action: %s", e.Action)
	}
	if e.ToBranch == "" {
		return fmt.Errorf("to_branch is required")
	}
	if e.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	return nil
}

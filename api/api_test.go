package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gitpulse-io/gitpulse/config"
	"github.com/gitpulse-io/gitpulse/constants"
	"github.com/gitpulse-io/gitpulse/db/entities"
	"github.com/gitpulse-io/gitpulse/db/query"
	"github.com/gitpulse-io/gitpulse/pkg/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "s3cret"

// fakeEventStore enforces the (request_id, action) identity in memory the way
// the events table constraint does.
type fakeEventStore struct {
	mu     sync.Mutex
	events []*entities.Event
	err    error
}

func (s *fakeEventStore) InsertIgnoreConflict(ctx context.Context, event *entities.Event) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	for _, existing := range s.events {
		if existing.RequestID == event.RequestID && existing.Action == event.Action {
			return false, nil
		}
	}
	s.events = append(s.events, event)
	return true, nil
}

func (s *fakeEventStore) ListFeed(ctx context.Context, q *query.EventQuery) ([]*entities.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	list := make([]*entities.Event, 0)
	for _, event := range s.events {
		if q.Since != nil && !event.Timestamp.After(*q.Since) {
			continue
		}
		if q.Author != "" && event.Author != q.Author {
			continue
		}
		list = append(list, event)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Timestamp.Time.After(list[j].Timestamp.Time)
	})
	limit := q.Limit()
	if limit <= 0 {
		limit = constants.DefaultFeedLimit
	}
	if limit > constants.MaxFeedLimit {
		limit = constants.MaxFeedLimit
	}
	if int64(len(list)) > limit {
		list = list[:limit]
	}
	return list, nil
}

func newTestAPI(store *fakeEventStore) *API {
	cfg := config.New()
	cfg.Webhook.Secret = testSecret
	return NewAPI(Options{
		Config: cfg,
		Events: store,
		Ping:   func(ctx context.Context) error { return nil },
		Stats: func() map[string]interface{} {
			return map[string]interface{}{"database.total_connections": 1}
		},
	})
}

func post(handler http.Handler, eventType string, body string, sign bool) *httptest.ResponseRecorder {
	r := httptest.NewRequest("POST", "/webhook", bytes.NewReader([]byte(body)))
	if eventType != "" {
		r.Header.Set("X-GitHub-Event", eventType)
	}
	r.Header.Set("X-GitHub-Delivery", "72d3162e-cc78-11e3-81ab-4c9367dc0958")
	if sign {
		r.Header.Set("X-Hub-Signature-256", signature.Sign(testSecret, []byte(body)))
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w
}

const pushBody = `{
	"ref": "refs/heads/main",
	"pusher": {"name": "alice"},
	"commits": [
		{"id": "abc1234567890def", "timestamp": "2024-01-15T10:30:00Z", "author": {"name": "alice"}}
	]
}`

func TestWebhookPush(t *testing.T) {
	store := &fakeEventStore{}
	handler := newTestAPI(store).Handler()

	w := post(handler, "push", pushBody, true)
	assert.Equal(t, 200, w.Code)

	var resp WebhookResponse
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "event processed", resp.Message)
	assert.Equal(t, "abc1234", resp.EventID)

	require.Len(t, store.events, 1)
	event := store.events[0]
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "abc1234", event.RequestID)
	assert.Equal(t, "alice", event.Author)
	assert.Equal(t, entities.ActionPush, event.Action)
	assert.Nil(t, event.FromBranch)
	assert.Equal(t, "main", event.ToBranch)
	assert.Equal(t, "2024-01-15T10:30:00Z", event.Timestamp.Format(time.RFC3339))
}

func TestWebhookDuplicateDelivery(t *testing.T) {
	store := &fakeEventStore{}
	handler := newTestAPI(store).Handler()

	first := post(handler, "push", pushBody, true)
	second := post(handler, "push", pushBody, true)

	assert.Equal(t, 200, first.Code)
	assert.Equal(t, 200, second.Code)
	assert.Contains(t, second.Body.String(), "duplicate")
	assert.Len(t, store.events, 1)
}

func TestWebhookConcurrentDeliveries(t *testing.T) {
	store := &fakeEventStore{}
	handler := newTestAPI(store).Handler()

	var wg sync.WaitGroup
	codes := make([]int, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = post(handler, "push", pushBody, true).Code
		}(i)
	}
	wg.Wait()

	for _, code := range codes {
		assert.Equal(t, 200, code)
	}
	assert.Len(t, store.events, 1)
}

func TestWebhookMergeExample(t *testing.T) {
	store := &fakeEventStore{}
	handler := newTestAPI(store).Handler()

	body := `{
		"action": "closed",
		"pull_request": {
			"number": 42,
			"user": {"login": "bob"},
			"head": {"ref": "feature"},
			"base": {"ref": "main"},
			"merged": true,
			"created_at": "2024-01-15T10:00:00Z",
			"merged_at": "2024-01-15T10:35:00Z"
		}
	}`
	w := post(handler, "pull_request", body, true)
	assert.Equal(t, 200, w.Code)

	require.Len(t, store.events, 1)
	event := store.events[0]
	assert.Equal(t, "42", event.RequestID)
	assert.Equal(t, "bob", event.Author)
	assert.Equal(t, entities.ActionMerge, event.Action)
	require.NotNil(t, event.FromBranch)
	assert.Equal(t, "feature", *event.FromBranch)
	assert.Equal(t, "main", event.ToBranch)
	assert.Equal(t, "2024-01-15T10:35:00Z", event.Timestamp.Format(time.RFC3339))
}

func TestWebhookIdentitySeparation(t *testing.T) {
	store := &fakeEventStore{}
	handler := newTestAPI(store).Handler()

	opened := `{
		"action": "opened",
		"pull_request": {
			"number": 42,
			"user": {"login": "bob"},
			"head": {"ref": "feature"},
			"base": {"ref": "main"},
			"merged": false,
			"created_at": "2024-01-15T10:00:00Z"
		}
	}`
	merged := `{
		"action": "closed",
		"pull_request": {
			"number": 42,
			"user": {"login": "bob"},
			"head": {"ref": "feature"},
			"base": {"ref": "main"},
			"merged": true,
			"created_at": "2024-01-15T10:00:00Z",
			"merged_at": "2024-01-15T10:35:00Z"
		}
	}`
	assert.Equal(t, 200, post(handler, "pull_request", opened, true).Code)
	assert.Equal(t, 200, post(handler, "pull_request", merged, true).Code)

	// same PR number, distinct actions: both rows retained
	assert.Len(t, store.events, 2)
}

func TestWebhookUnauthorized(t *testing.T) {
	store := &fakeEventStore{}
	handler := newTestAPI(store).Handler()

	w := post(handler, "push", pushBody, false)
	assert.Equal(t, 401, w.Code)
	assert.Empty(t, store.events)

	r := httptest.NewRequest("POST", "/webhook", bytes.NewReader([]byte(pushBody)))
	r.Header.Set("X-GitHub-Event", "push")
	r.Header.Set("X-Hub-Signature-256", "sha256=0000000000000000000000000000000000000000000000000000000000000000")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	assert.Equal(t, 401, rec.Code)
	assert.Empty(t, store.events)
}

func TestWebhookAllowUnsigned(t *testing.T) {
	store := &fakeEventStore{}
	cfg := config.New()
	cfg.Webhook.AllowUnsigned = true
	handler := NewAPI(Options{
		Config: cfg,
		Events: store,
		Ping:   func(ctx context.Context) error { return nil },
	}).Handler()

	w := post(handler, "push", pushBody, false)
	assert.Equal(t, 200, w.Code)
	assert.Len(t, store.events, 1)
}

func TestWebhookSkip(t *testing.T) {
	store := &fakeEventStore{}
	handler := newTestAPI(store).Handler()

	tests := []struct {
		desc      string
		eventType string
		body      string
	}{
		{"push with no commits", "push", `{"ref": "refs/heads/main", "pusher": {"name": "alice"}, "commits": []}`},
		{"pull request synchronize", "pull_request", `{"action": "synchronize", "pull_request": {"number": 1}}`},
		{"unsupported event type", "star", `{}`},
	}
	for _, test := range tests {
		w := post(handler, test.eventType, test.body, true)
		assert.Equal(t, 200, w.Code, test.desc)
		assert.Contains(t, w.Body.String(), "ignored", test.desc)
	}
	assert.Empty(t, store.events)
}

func TestWebhookClientErrors(t *testing.T) {
	store := &fakeEventStore{}
	handler := newTestAPI(store).Handler()

	missingHeader := post(handler, "", pushBody, true)
	assert.Equal(t, 400, missingHeader.Code)

	invalidJSON := post(handler, "push", `{"ref": `, true)
	assert.Equal(t, 400, invalidJSON.Code)

	invalidShape := post(handler, "push", `{"ref": "refs/heads/main", "pusher": {"name": "a"}, "commits": [{"id": "ab"}]}`, true)
	assert.Equal(t, 422, invalidShape.Code)

	assert.Empty(t, store.events)
}

func TestWebhookBodyTooLarge(t *testing.T) {
	store := &fakeEventStore{}
	cfg := config.New()
	cfg.Webhook.AllowUnsigned = true
	cfg.Webhook.MaxBodySize = 16
	handler := NewAPI(Options{
		Config: cfg,
		Events: store,
		Ping:   func(ctx context.Context) error { return nil },
	}).Handler()

	// truncation at the cap leaves a JSON fragment
	w := post(handler, "push", pushBody, false)
	assert.Equal(t, 400, w.Code)
	assert.Empty(t, store.events)
}

func TestWebhookStorageUnavailable(t *testing.T) {
	store := &fakeEventStore{err: errors.New("connection refused")}
	handler := newTestAPI(store).Handler()

	w := post(handler, "push", pushBody, true)
	assert.Equal(t, 500, w.Code)
	assert.Contains(t, w.Body.String(), "storage unavailable")
}

func TestListEvents(t *testing.T) {
	store := &fakeEventStore{}
	handler := newTestAPI(store).Handler()

	post(handler, "push", pushBody, true)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/events", nil))
	assert.Equal(t, 200, w.Code)

	var resp EventsResponse
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "abc1234", resp.Events[0].RequestID)
}

func TestListEventsSince(t *testing.T) {
	store := &fakeEventStore{}
	handler := newTestAPI(store).Handler()

	post(handler, "push", pushBody, true)

	// cursor after the stored event's timestamp
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/events?since=2024-01-15T11:00:00Z", nil))
	assert.Equal(t, 200, w.Code)

	var resp EventsResponse
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)
	assert.NotNil(t, resp.Events)
}

func pushBodyAt(commitID, timestamp string) string {
	return fmt.Sprintf(`{
		"ref": "refs/heads/main",
		"pusher": {"name": "alice"},
		"commits": [
			{"id": "%s", "timestamp": "%s", "author": {"name": "alice"}}
		]
	}`, commitID, timestamp)
}

func TestListEventsOrdering(t *testing.T) {
	store := &fakeEventStore{}
	handler := newTestAPI(store).Handler()

	// ingest out of chronological order
	post(handler, "push", pushBodyAt("bbbbbbb222222", "2024-01-15T10:00:00Z"), true)
	post(handler, "push", pushBodyAt("ccccccc333333", "2024-01-15T11:00:00Z"), true)
	post(handler, "push", pushBodyAt("aaaaaaa111111", "2024-01-15T09:00:00Z"), true)
	require.Len(t, store.events, 3)

	// newest first
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/events", nil))
	require.Equal(t, 200, w.Code)

	var resp EventsResponse
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 3, resp.Count)
	assert.Equal(t, "ccccccc", resp.Events[0].RequestID)
	assert.Equal(t, "bbbbbbb", resp.Events[1].RequestID)
	assert.Equal(t, "aaaaaaa", resp.Events[2].RequestID)

	// limit keeps the newest
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/events?limit=2", nil))
	require.Equal(t, 200, w.Code)

	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "ccccccc", resp.Events[0].RequestID)
	assert.Equal(t, "bbbbbbb", resp.Events[1].RequestID)
}

func TestListEventsBadParams(t *testing.T) {
	handler := newTestAPI(&fakeEventStore{}).Handler()

	tests := []string{
		"/api/events?since=yesterday",
		"/api/events?limit=0",
		"/api/events?limit=-1",
		"/api/events?limit=many",
	}
	for _, target := range tests {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", target, nil))
		assert.Equal(t, 400, w.Code, target)
	}
}

func TestHealth(t *testing.T) {
	handler := newTestAPI(&fakeEventStore{}).Handler()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), `"database.total_connections":1`)
}

func TestHealthDegraded(t *testing.T) {
	store := &fakeEventStore{}
	cfg := config.New()
	cfg.Webhook.Secret = testSecret
	handler := NewAPI(Options{
		Config: cfg,
		Events: store,
		Ping:   func(ctx context.Context) error { return errors.New("dial timeout") },
	}).Handler()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, 503, w.Code)
}

func TestNotFound(t *testing.T) {
	handler := newTestAPI(&fakeEventStore{}).Handler()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/nope", nil))
	assert.Equal(t, 404, w.Code)
}

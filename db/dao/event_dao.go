package dao

import (
	"context"
	"errors"

	"github.com/gitpulse-io/gitpulse/constants"
	"github.com/gitpulse-io/gitpulse/db/entities"
	"github.com/gitpulse-io/gitpulse/db/query"
	"github.com/jmoiron/sqlx"
)

// EventDAO persists canonical events. Insertion is idempotent on the
// (request_id, action) identity: redeliveries collapse onto one stored row
// without erroring, relying on the events table constraint rather than
// in-process locking so correctness holds across replicas.
type EventDAO interface {
	InsertIgnoreConflict(ctx context.Context, event *entities.Event) (inserted bool, err error)
	ListFeed(ctx context.Context, q *query.EventQuery) ([]*entities.Event, error)
}

type eventDao struct {
	*DAO[entities.Event]
}

func NewEventDao(db *sqlx.DB) EventDAO {
	return &eventDao{
		DAO: NewDAO[entities.Event]("events", db),
	}
}

func (dao *eventDao) InsertIgnoreConflict(ctx context.Context, event *entities.Event) (inserted bool, err error) {
	columns, values := columnValues(event)
	statement, args := psql.Insert(dao.table).Columns(columns...).Values(values...).
		Suffix("ON CONFLICT (request_id, action) DO NOTHING RETURNING id").
		MustSql()
	dao.debugSQL(statement, args)

	var id string
	err = dao.DB(ctx).QueryRowxContext(ctx, statement, args...).Scan(&id)
	if err != nil {
		if errors.Is(err, ErrNoRows) {
			// the conflict clause swallowed the insert: duplicate delivery
			return false, nil
		}
		return false, convertError(err)
	}
	return true, nil
}

// normalizeFeedQuery applies the feed's paging rules: a non-positive limit
// falls back to the default page size, oversized limits are clamped, and
// results come back newest first.
func normalizeFeedQuery(q *query.EventQuery) {
	limit := q.Limit()
	if limit <= 0 {
		limit = constants.DefaultFeedLimit
	}
	if limit > constants.MaxFeedLimit {
		limit = constants.MaxFeedLimit
	}
	q.SetLimit(limit)
	q.Order("timestamp", query.DESC)
}

// ListFeed returns events newest first for the polling feed.
func (dao *eventDao) ListFeed(ctx context.Context, q *query.EventQuery) ([]*entities.Event, error) {
	normalizeFeedQuery(q)
	return dao.List(ctx, q)
}

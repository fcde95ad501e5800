package query

import (
	"time"

	sq "github.com/Masterminds/squirrel"
)

// EventQuery filters the events feed. Since is exclusive: only events that
// occurred strictly after it are returned.
type EventQuery struct {
	Query

	Since  *time.Time
	Author string
}

func (q *EventQuery) Where() []sq.Sqlizer {
	var where []sq.Sqlizer
	if q.Since != nil {
		where = append(where, sq.Gt{"timestamp": *q.Since})
	}
	if q.Author != "" {
		where = append(where, sq.Eq{"author": q.Author})
	}
	return where
}

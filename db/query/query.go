package query

import (
	sq "github.com/Masterminds/squirrel"
)

type Queryer interface {
	Limit() int64
	Where() []sq.Sqlizer
	Orders() []*Order
}

type Query struct {
	limit  int64
	orders []*Order
}

func (q *Query) SetLimit(limit int64) {
	q.limit = limit
}

func (q *Query) Limit() int64 {
	return q.limit
}

func (q *Query) Where() []sq.Sqlizer {
	return nil
}

func (q *Query) Orders() []*Order {
	return q.orders
}

func (q *Query) Order(column string, sort Sort) {
	q.orders = append(q.orders, &Order{column, sort})
}

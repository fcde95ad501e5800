package dao

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/gitpulse-io/gitpulse/db/query"
	"github.com/gitpulse-io/gitpulse/utils"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

var (
	ErrNoRows              = sql.ErrNoRows
	ErrConstraintViolation = errors.New("constraint violation")
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Queryable is an interface to be used interchangeably for sqlx.DB and sqlx.Tx
type Queryable interface {
	sqlx.ExtContext
	GetContext(context.Context, interface{}, string, ...interface{}) error
	SelectContext(context.Context, interface{}, string, ...interface{}) error
}

type DAO[T any] struct {
	log   *zap.SugaredLogger
	db    *sqlx.DB
	table string
}

func NewDAO[T any](table string, db *sqlx.DB) *DAO[T] {
	dao := DAO[T]{
		log:   zap.S(),
		db:    db,
		table: table,
	}
	return &dao
}

func (dao *DAO[T]) debugSQL(sql string, args []interface{}) {
	dao.log.Debugf("[dao] execute: %s %v", sql, args)
}

func (dao *DAO[T]) DB(ctx context.Context) Queryable {
	return dao.db
}

func (dao *DAO[T]) UnsafeDB(ctx context.Context) Queryable {
	return dao.db.Unsafe()
}

func (dao *DAO[T]) selectQuery(q query.Queryer) (statement string, args []interface{}) {
	builder := psql.Select("*").From(dao.table)
	for _, clause := range q.Where() {
		builder = builder.Where(clause)
	}
	if q.Limit() != 0 {
		builder = builder.Limit(uint64(q.Limit()))
	}
	for _, order := range q.Orders() {
		builder = builder.OrderBy(order.Column + " " + order.Sort)
	}
	return builder.MustSql()
}

func (dao *DAO[T]) List(ctx context.Context, q query.Queryer) (list []*T, err error) {
	statement, args := dao.selectQuery(q)
	dao.debugSQL(statement, args)
	list = make([]*T, 0)
	err = dao.UnsafeDB(ctx).SelectContext(ctx, &list, statement, args...)
	return
}

func travel(entity interface{}, fn func(field reflect.StructField, value reflect.Value)) {
	t := reflect.TypeOf(entity)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	v := reflect.ValueOf(entity)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		value := v.Field(i)
		if field.Anonymous {
			travel(value.Interface(), fn)
		} else {
			fn(field, value)
		}
	}
}

// columnValues derives insert columns and values from db struct tags.
// ingested_at is left to the column default.
func columnValues(entity interface{}) (columns []string, values []interface{}) {
	travel(entity, func(f reflect.StructField, v reflect.Value) {
		column := utils.DefaultIfZero(f.Tag.Get("db"), strings.ToLower(f.Name))
		switch column {
		case "ingested_at": // ignore
		default:
			columns = append(columns, column)
			values = append(values, v.Interface())
		}
	})
	return
}

// convertError maps backend unique-violation failures to
// ErrConstraintViolation so callers can treat conflicts as an outcome, not a
// fault.
func convertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrConstraintViolation
	}
	return err
}

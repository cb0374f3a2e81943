package database

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("erp-api/database")

type txKey struct{}

// TxManager runs functions inside a database transaction carried on the context
type TxManager struct {
	db *gorm.DB
}

// NewTxManager creates a transaction manager for db
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// RunInTransaction executes fn within a transaction. The transaction commits
// when fn returns nil and rolls back otherwise. A call made while a
// transaction is already active on ctx joins that transaction.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "transaction")
	defer span.End()

	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		span.SetAttributes(attribute.Bool("tx.nested", true))
		return record(span, fn(ctx))
	}

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	return record(span, err)
}

func record(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// Conn returns the transaction active on ctx, or db bound to ctx when there is none
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

// InTransaction reports whether ctx carries an active transaction
func InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*gorm.DB)
	return ok
}

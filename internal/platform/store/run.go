package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type isoKey struct{}

// WithIsolation asks the next Tx started with ctx to use the given isolation level
func WithIsolation(ctx context.Context, level pgx.TxIsoLevel) context.Context {
	return context.WithValue(ctx, isoKey{}, level)
}

// WithSerializable is WithIsolation at SERIALIZABLE
func WithSerializable(ctx context.Context) context.Context {
	return WithIsolation(ctx, pgx.Serializable)
}

// Isolation returns the level carried by ctx, empty means the server default
func Isolation(ctx context.Context) pgx.TxIsoLevel {
	v, _ := ctx.Value(isoKey{}).(pgx.TxIsoLevel)
	return v
}

// RunSerializable runs fn in one SERIALIZABLE transaction, fn gets the marked ctx
func RunSerializable(ctx context.Context, tx TxRunner, fn func(ctx context.Context, q RowQuerier) error) error {
	ctx = WithSerializable(ctx)
	return tx.Tx(ctx, func(q RowQuerier) error {
		return fn(ctx, q)
	})
}

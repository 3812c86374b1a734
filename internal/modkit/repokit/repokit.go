// Package repokit binds domain repositories to whichever querier a call runs on
// so one repo value serves both pooled reads and serializable transactions
package repokit

import "devquest/internal/platform/store"

type (
	// Queryer is the read and write surface a repo is bound to
	Queryer = store.RowQuerier

	// TxRunner opens transactions
	TxRunner = store.TxRunner
)

// Binder builds a repo bound to q
type Binder[T any] interface {
	Bind(q Queryer) T
}

// BindFunc adapts a constructor into a Binder
type BindFunc[T any] func(Queryer) T

// Bind calls f
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

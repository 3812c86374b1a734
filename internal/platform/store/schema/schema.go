// Package schema carries the postgres DDL the services expect
package schema

import (
	"context"
	_ "embed"
	"fmt"

	"devquest/internal/platform/store"
)

//go:embed schema.sql
var ddl string

// SQL returns the embedded DDL
func SQL() string { return ddl }

// Apply runs the DDL in one transaction, it is idempotent
func Apply(ctx context.Context, tx store.TxRunner) error {
	err := tx.Tx(ctx, func(q store.RowQuerier) error {
		_, err := q.Exec(ctx, ddl)
		return err
	})
	if err != nil {
		return fmt.Errorf("schema: apply: %w", err)
	}
	return nil
}

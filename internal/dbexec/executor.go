// Package dbexec runs rendered mutation plans against the database. A plan
// executes inside one transaction; any failed verification probe rolls the
// whole plan back.
package dbexec

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"graphql-datalayer/internal/sqlgen"
)

// ErrProbeFailed marks a transaction abort caused by a verification probe.
var ErrProbeFailed = errors.New("verification probe failed")

// TxBeginner abstracts the database handle so tests can swap in mocks.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Executor runs statement plans transactionally.
type Executor struct {
	db TxBeginner
}

// New creates an executor over a database handle.
func New(db TxBeginner) *Executor {
	return &Executor{db: db}
}

// Run executes the plan in one transaction. It commits when every write
// succeeds and every probe holds, and rolls back on the first failure.
func (e *Executor) Run(ctx context.Context, plan []sqlgen.Statement) error {
	if e.db == nil {
		return sql.ErrConnDone
	}
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	for i, stmt := range plan {
		if err := runStatement(ctx, tx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("statement %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func runStatement(ctx context.Context, tx *sql.Tx, stmt sqlgen.Statement) error {
	switch stmt.Kind {
	case sqlgen.KindWrite:
		_, err := tx.ExecContext(ctx, stmt.SQL, stmt.Args...)
		return err
	case sqlgen.KindProbeExists:
		found, err := probe(ctx, tx, stmt)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: expected a matching row for %q", ErrProbeFailed, stmt.SQL)
		}
		return nil
	case sqlgen.KindProbeAbsent:
		found, err := probe(ctx, tx, stmt)
		if err != nil {
			return err
		}
		if found {
			return fmt.Errorf("%w: found a conflicting row for %q", ErrProbeFailed, stmt.SQL)
		}
		return nil
	default:
		return fmt.Errorf("unknown statement kind %d", stmt.Kind)
	}
}

func probe(ctx context.Context, tx *sql.Tx, stmt sqlgen.Statement) (bool, error) {
	rows, err := tx.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	found := rows.Next()
	return found, rows.Err()
}

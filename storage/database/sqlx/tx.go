package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/vinckarunia/raha-member-app/core"
)

// withinTx runs fn inside a transaction. When exec is already a transaction fn joins it.
func withinTx(ctx context.Context, db core.DB, exec core.DBExecutor, fn func(core.DBExecutor) error) error {
	if _, inTx := exec.(core.DBTransactor); inTx {
		return fn(exec)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrapf(err, "rolling back transaction: %v", rbErr)
		}
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

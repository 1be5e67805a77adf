// Package reconcile merges affiliate API payloads into local records.
//
// Every externally-keyed entity kind follows the same contract: find-or-create
// by the network's id, then overwrite every mapped field from the normalized
// payload. Running the pair twice with an equivalent payload leaves storage
// unchanged; running it with a different payload updates the record in place.
// The sync path never deletes.
package reconcile

import (
	"database/sql"
	"errors"
	"strings"
)

// ErrMissingExternalID marks a payload that carries no usable external id and
// therefore cannot be reconciled. The sync loop logs and skips such items.
var ErrMissingExternalID = errors.New("payload is missing its external id")

type Upserter struct {
	db *sql.DB
}

func NewUpserter(db *sql.DB) *Upserter {
	return &Upserter{db: db}
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so the find-or-create and
// merge steps can run inside one transaction per sync item.
type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

func isUniqueConstraintErr(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

// withTx scopes one sync item to its own transaction so a failure partway
// through a batch never exposes a half-updated entity.
func (u *Upserter) withTx(fn func(tx dbtx) error) error {
	tx, err := u.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

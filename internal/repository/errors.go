package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a record does not exist. Repositories map
// pgx.ErrNoRows to it so callers never depend on driver errors.
var ErrNotFound = errors.New("record not found")

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

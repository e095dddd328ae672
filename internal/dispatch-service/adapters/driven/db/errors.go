package db

import (
	"errors"

	"github.com/jackc/pgx/v5"

	"ride-dispatch/internal/dispatch-service/core/myerrors"
)

// notFoundOr maps the empty-result case to a typed NotFound and everything
// else to a dependency failure.
func notFoundOr(err error, msg string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return myerrors.NotFound(msg)
	}
	return myerrors.DependencyFailure("storage error", err)
}

func dependency(err error) error {
	return myerrors.DependencyFailure("storage error", err)
}

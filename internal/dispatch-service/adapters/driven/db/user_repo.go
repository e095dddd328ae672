package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"ride-dispatch/internal/dispatch-service/core/domain/model"
	"ride-dispatch/internal/dispatch-service/core/myerrors"
	"ride-dispatch/internal/dispatch-service/core/ports"
)

type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) ports.IUserRepo {
	return &UserRepo{db: db}
}

const userColumns = `
	id, name, email, phone, star, priority, is_active, is_deleted,
	total_request, decline_request, date_created, date_updated`

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.Star, &u.Priority,
		&u.IsActive, &u.IsDeleted, &u.TotalRequest, &u.DeclineRequest,
		&u.DateCreated, &u.DateUpdated,
	)
	return u, err
}

func (r *UserRepo) FindActive(ctx context.Context, id uuid.UUID) (model.User, error) {
	q := `SELECT` + userColumns + `
	FROM users
	WHERE id = $1 AND is_deleted = false`

	u, err := scanUser(r.db.pool.QueryRow(ctx, q, id))
	if err != nil {
		return model.User{}, notFoundOr(err, "user not exists")
	}
	return u, nil
}

func (r *UserRepo) IsInRole(ctx context.Context, id uuid.UUID, role model.Role) (bool, error) {
	q := `SELECT EXISTS(SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2)`

	var ok bool
	if err := r.db.pool.QueryRow(ctx, q, id, string(role)).Scan(&ok); err != nil {
		return false, dependency(err)
	}
	return ok, nil
}

func (r *UserRepo) FindDriverStatus(ctx context.Context, driverID uuid.UUID) (model.DriverStatus, error) {
	q := `
	SELECT id, driver_id, is_online, is_free, date_updated
	FROM driver_statuses
	WHERE driver_id = $1`

	var s model.DriverStatus
	err := r.db.pool.QueryRow(ctx, q, driverID).
		Scan(&s.ID, &s.DriverID, &s.IsOnline, &s.IsFree, &s.DateUpdated)
	if err != nil {
		return model.DriverStatus{}, notFoundOr(err, "driver status not exists")
	}
	return s, nil
}

// ApplyDriverMiss commits the whole penalty in one transaction: the status
// row goes offline and unfree, the priority and counters are written, and
// the account is deactivated when the penalty demands it. The priority
// write is conditioned on the value the caller computed the penalty from,
// so two concurrent misses never collapse into one decrement.
func (r *UserRepo) ApplyDriverMiss(ctx context.Context, driverID uuid.UUID, fromPriority float64, penalty model.DriverPenalty) (model.User, model.DriverStatus, error) {
	tx, err := r.db.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return model.User{}, model.DriverStatus{}, dependency(err)
	}
	defer tx.Rollback(ctx)

	var status model.DriverStatus
	q1 := `
	UPDATE driver_statuses
	SET is_online = false, is_free = false, date_updated = now()
	WHERE driver_id = $1
	RETURNING id, driver_id, is_online, is_free, date_updated`
	err = tx.QueryRow(ctx, q1, driverID).
		Scan(&status.ID, &status.DriverID, &status.IsOnline, &status.IsFree, &status.DateUpdated)
	if err != nil {
		return model.User{}, model.DriverStatus{}, notFoundOr(err, "driver status not exists")
	}

	q2 := `
	UPDATE users
	SET priority = $2,
	    is_active = CASE WHEN $3 THEN false ELSE is_active END,
	    total_request = total_request + 1,
	    decline_request = decline_request + 1,
	    date_updated = now()
	WHERE id = $1 AND is_deleted = false AND priority = $4
	RETURNING` + userColumns

	u, err := scanUser(tx.QueryRow(ctx, q2, driverID, penalty.Priority, penalty.Deactivated, fromPriority))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, findErr := r.FindActive(ctx, driverID); findErr != nil {
				return model.User{}, model.DriverStatus{}, findErr
			}
			return model.User{}, model.DriverStatus{}, myerrors.InvalidState("driver priority changed concurrently")
		}
		return model.User{}, model.DriverStatus{}, dependency(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.User{}, model.DriverStatus{}, dependency(err)
	}
	return u, status, nil
}

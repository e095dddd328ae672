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

type BookingRepo struct {
	db *DB
}

func NewBookingRepo(db *DB) ports.IBookingRepo {
	return &BookingRepo{db: db}
}

const bookingColumns = `
	id, driver_id, search_request_id, status, pick_up_time, drop_off_time,
	check_in_note, check_out_note, is_deleted, date_created, date_updated`

func scanBooking(row pgx.Row) (model.Booking, error) {
	var b model.Booking
	err := row.Scan(
		&b.ID, &b.DriverID, &b.SearchRequestID, &b.Status, &b.PickUpTime, &b.DropOffTime,
		&b.CheckInNote, &b.CheckOutNote, &b.IsDeleted, &b.DateCreated, &b.DateUpdated,
	)
	return b, err
}

func (br *BookingRepo) Create(ctx context.Context, b model.Booking) (model.Booking, error) {
	q := `
	INSERT INTO bookings (
		id, driver_id, search_request_id, status,
		check_in_note, check_out_note, is_deleted, date_created, date_updated
	) VALUES ($1, $2, $3, $4, '', '', false, now(), now())
	RETURNING` + bookingColumns

	created, err := scanBooking(br.db.pool.QueryRow(ctx, q,
		b.ID, b.DriverID, b.SearchRequestID, string(b.Status),
	))
	if err != nil {
		return model.Booking{}, dependency(err)
	}
	return created, nil
}

func (br *BookingRepo) FindByID(ctx context.Context, id uuid.UUID) (model.Booking, error) {
	q := `SELECT` + bookingColumns + `
	FROM bookings
	WHERE id = $1 AND is_deleted = false`

	b, err := scanBooking(br.db.pool.QueryRow(ctx, q, id))
	if err != nil {
		return model.Booking{}, notFoundOr(err, "booking not exists")
	}
	return b, nil
}

// UpdateStatus writes the advanced booking conditioned on the stored status
// still being from; losing the race yields InvalidState, never an overwrite.
func (br *BookingRepo) UpdateStatus(ctx context.Context, b model.Booking, from model.BookingStatus) (model.Booking, error) {
	q := `
	UPDATE bookings
	SET status = $3, pick_up_time = $4, drop_off_time = $5, date_updated = now()
	WHERE id = $1 AND status = $2 AND is_deleted = false
	RETURNING` + bookingColumns

	updated, err := scanBooking(br.db.pool.QueryRow(ctx, q,
		b.ID, string(from), string(b.Status), b.PickUpTime, b.DropOffTime,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, findErr := br.FindByID(ctx, b.ID); findErr != nil {
				return model.Booking{}, findErr
			}
			return model.Booking{}, myerrors.InvalidState("booking status not suitable")
		}
		return model.Booking{}, dependency(err)
	}
	return updated, nil
}

func (br *BookingRepo) SetCheckInNote(ctx context.Context, id uuid.UUID, note string) (model.Booking, error) {
	return br.setNote(ctx, id, "check_in_note", note)
}

func (br *BookingRepo) SetCheckOutNote(ctx context.Context, id uuid.UUID, note string) (model.Booking, error) {
	return br.setNote(ctx, id, "check_out_note", note)
}

func (br *BookingRepo) setNote(ctx context.Context, id uuid.UUID, column, note string) (model.Booking, error) {
	q := `
	UPDATE bookings
	SET ` + column + ` = $2, date_updated = now()
	WHERE id = $1 AND is_deleted = false
	RETURNING` + bookingColumns

	updated, err := scanBooking(br.db.pool.QueryRow(ctx, q, id, note))
	if err != nil {
		return model.Booking{}, notFoundOr(err, "booking not exists")
	}
	return updated, nil
}

func (br *BookingRepo) ExistsNotComplete(ctx context.Context, driverID uuid.UUID) (bool, error) {
	q := `
	SELECT EXISTS(
		SELECT 1 FROM bookings
		WHERE driver_id = $1 AND is_deleted = false AND status NOT IN ($2, $3, $4)
	)`

	var exists bool
	err := br.db.pool.QueryRow(ctx, q, driverID,
		string(model.BookingStatusComplete),
		string(model.BookingStatusDriverCancel),
		string(model.BookingStatusCustomerCancel),
	).Scan(&exists)
	if err != nil {
		return false, dependency(err)
	}
	return exists, nil
}

// CancelWithRefund commits the cancellation terminal, the immutable audit
// record and the refund credit as one transaction. The status write is a
// compare-and-set; a concurrent cancellation makes exactly one of the
// callers win, the other rolls back with AlreadyCancelled.
func (br *BookingRepo) CancelWithRefund(ctx context.Context, b model.Booking, from model.BookingStatus, record model.BookingCancel, credit model.CreditEffect) (model.Booking, model.Wallet, model.WalletTransaction, error) {
	tx, err := br.db.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return model.Booking{}, model.Wallet{}, model.WalletTransaction{}, dependency(err)
	}
	defer tx.Rollback(ctx)

	q := `
	UPDATE bookings
	SET status = $3, date_updated = now()
	WHERE id = $1 AND status = $2 AND is_deleted = false
	RETURNING` + bookingColumns

	committed, err := scanBooking(tx.QueryRow(ctx, q, b.ID, string(from), string(b.Status)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			current, findErr := br.FindByID(ctx, b.ID)
			if findErr != nil {
				return model.Booking{}, model.Wallet{}, model.WalletTransaction{}, findErr
			}
			if current.Status.Cancelled() {
				return model.Booking{}, model.Wallet{}, model.WalletTransaction{}, myerrors.AlreadyCancelled("booking has already been cancelled")
			}
			return model.Booking{}, model.Wallet{}, model.WalletTransaction{}, myerrors.InvalidState("booking status not suitable")
		}
		return model.Booking{}, model.Wallet{}, model.WalletTransaction{}, dependency(err)
	}

	q2 := `
	INSERT INTO booking_cancels (id, booking_id, initiator, reason, date_created)
	VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.Exec(ctx, q2,
		record.ID, record.BookingID, string(record.Initiator), record.Reason, record.DateCreated,
	); err != nil {
		return model.Booking{}, model.Wallet{}, model.WalletTransaction{}, dependency(err)
	}

	wallet, txn, err := creditWallet(ctx, tx, credit)
	if err != nil {
		return model.Booking{}, model.Wallet{}, model.WalletTransaction{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Booking{}, model.Wallet{}, model.WalletTransaction{}, dependency(err)
	}
	return committed, wallet, txn, nil
}

func (br *BookingRepo) FindCancelByBookingID(ctx context.Context, bookingID uuid.UUID) (model.BookingCancel, error) {
	q := `
	SELECT id, booking_id, initiator, reason, date_created
	FROM booking_cancels
	WHERE booking_id = $1
	ORDER BY date_created DESC
	LIMIT 1`

	var c model.BookingCancel
	err := br.db.pool.QueryRow(ctx, q, bookingID).
		Scan(&c.ID, &c.BookingID, &c.Initiator, &c.Reason, &c.DateCreated)
	if err != nil {
		return model.BookingCancel{}, notFoundOr(err, "booking cancel not exists")
	}
	return c, nil
}

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

type SearchRequestRepo struct {
	db *DB
}

func NewSearchRequestRepo(db *DB) ports.ISearchRequestRepo {
	return &SearchRequestRepo{db: db}
}

const searchRequestColumns = `
	id, customer_id, pickup_latitude, pickup_longitude, pickup_address,
	drop_off_latitude, drop_off_longitude, drop_off_address,
	price, distance, note, is_female_driver, payment_method, booking_type,
	status, vehicle_id, on_behalf_id, is_deleted, date_created, date_updated`

func scanSearchRequest(row pgx.Row) (model.SearchRequest, error) {
	var r model.SearchRequest
	err := row.Scan(
		&r.ID, &r.CustomerID, &r.PickupLatitude, &r.PickupLongitude, &r.PickupAddress,
		&r.DropOffLatitude, &r.DropOffLongitude, &r.DropOffAddress,
		&r.Price, &r.Distance, &r.Note, &r.IsFemaleDriver, &r.PaymentMethod, &r.BookingType,
		&r.Status, &r.VehicleID, &r.OnBehalfID, &r.IsDeleted, &r.DateCreated, &r.DateUpdated,
	)
	return r, err
}

// Create persists the vehicle, the optional on-behalf record and the request
// itself in one transaction, so a Someone booking never exists without its
// passenger row.
func (sr *SearchRequestRepo) Create(ctx context.Context, req model.SearchRequest, vehicle model.BookingVehicle, onBehalf *model.CustomerBookedOnBehalf) (model.SearchRequest, error) {
	tx, err := sr.db.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return model.SearchRequest{}, dependency(err)
	}
	defer tx.Rollback(ctx)

	q1 := `
	INSERT INTO booking_vehicles (id, license_plate, brand, model, color, date_created)
	VALUES ($1, $2, $3, $4, $5, now())`
	if _, err := tx.Exec(ctx, q1,
		vehicle.ID, vehicle.LicensePlate, vehicle.Brand, vehicle.Model, vehicle.Color,
	); err != nil {
		return model.SearchRequest{}, dependency(err)
	}

	if onBehalf != nil {
		q2 := `
		INSERT INTO customer_booked_on_behalves (id, name, phone_number, note, date_created)
		VALUES ($1, $2, $3, $4, now())`
		if _, err := tx.Exec(ctx, q2,
			onBehalf.ID, onBehalf.Name, onBehalf.PhoneNumber, onBehalf.Note,
		); err != nil {
			return model.SearchRequest{}, dependency(err)
		}
	}

	q3 := `
	INSERT INTO search_requests (
		id, customer_id, pickup_latitude, pickup_longitude, pickup_address,
		drop_off_latitude, drop_off_longitude, drop_off_address,
		price, distance, note, is_female_driver, payment_method, booking_type,
		status, vehicle_id, on_behalf_id, is_deleted, date_created, date_updated
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, false, now(), now())
	RETURNING` + searchRequestColumns

	created, err := scanSearchRequest(tx.QueryRow(ctx, q3,
		req.ID, req.CustomerID, req.PickupLatitude, req.PickupLongitude, req.PickupAddress,
		req.DropOffLatitude, req.DropOffLongitude, req.DropOffAddress,
		req.Price, req.Distance, req.Note, req.IsFemaleDriver,
		string(req.PaymentMethod), string(req.BookingType),
		string(req.Status), req.VehicleID, req.OnBehalfID,
	))
	if err != nil {
		return model.SearchRequest{}, dependency(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.SearchRequest{}, dependency(err)
	}
	return created, nil
}

func (sr *SearchRequestRepo) FindByID(ctx context.Context, id uuid.UUID) (model.SearchRequest, error) {
	q := `SELECT` + searchRequestColumns + `
	FROM search_requests
	WHERE id = $1 AND is_deleted = false`

	r, err := scanSearchRequest(sr.db.pool.QueryRow(ctx, q, id))
	if err != nil {
		return model.SearchRequest{}, notFoundOr(err, "search request not exists")
	}
	return r, nil
}

func (sr *SearchRequestRepo) FindForCustomer(ctx context.Context, id, customerID uuid.UUID) (model.SearchRequest, error) {
	q := `SELECT` + searchRequestColumns + `
	FROM search_requests
	WHERE id = $1 AND customer_id = $2 AND is_deleted = false`

	r, err := scanSearchRequest(sr.db.pool.QueryRow(ctx, q, id, customerID))
	if err != nil {
		return model.SearchRequest{}, notFoundOr(err, "search request not exists")
	}
	return r, nil
}

func (sr *SearchRequestRepo) LatestProcessing(ctx context.Context, customerID uuid.UUID) (*model.SearchRequest, error) {
	q := `SELECT` + searchRequestColumns + `
	FROM search_requests
	WHERE customer_id = $1 AND status = $2 AND is_deleted = false
	ORDER BY date_created DESC
	LIMIT 1`

	r, err := scanSearchRequest(sr.db.pool.QueryRow(ctx, q, customerID, string(model.SearchRequestStatusProcessing)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, dependency(err)
	}
	return &r, nil
}

// UpdateStatus is the compare-and-set transition write: it succeeds only
// while the stored status still equals from, so a concurrent transition on
// the same request cannot be overwritten.
func (sr *SearchRequestRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.SearchRequestStatus) (model.SearchRequest, error) {
	q := `
	UPDATE search_requests
	SET status = $3, date_updated = now()
	WHERE id = $1 AND status = $2 AND is_deleted = false
	RETURNING` + searchRequestColumns

	r, err := scanSearchRequest(sr.db.pool.QueryRow(ctx, q, id, string(from), string(to)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either gone or raced by another transition.
			if _, findErr := sr.FindByID(ctx, id); findErr != nil {
				return model.SearchRequest{}, findErr
			}
			return model.SearchRequest{}, myerrors.InvalidState("search request status not suitable")
		}
		return model.SearchRequest{}, dependency(err)
	}
	return r, nil
}

// CancelAndRefund commits the Processing→Cancel write and the refund as one
// atomic unit. Losing the status race rolls everything back: no refund
// without its cancellation, no cancellation without its refund.
func (sr *SearchRequestRepo) CancelAndRefund(ctx context.Context, id uuid.UUID, credit model.CreditEffect) (model.SearchRequest, model.Wallet, model.WalletTransaction, error) {
	tx, err := sr.db.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return model.SearchRequest{}, model.Wallet{}, model.WalletTransaction{}, dependency(err)
	}
	defer tx.Rollback(ctx)

	q := `
	UPDATE search_requests
	SET status = $2, date_updated = now()
	WHERE id = $1 AND status = $3 AND is_deleted = false
	RETURNING` + searchRequestColumns

	request, err := scanSearchRequest(tx.QueryRow(ctx, q,
		id, string(model.SearchRequestStatusCancel), string(model.SearchRequestStatusProcessing),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.SearchRequest{}, model.Wallet{}, model.WalletTransaction{}, myerrors.InvalidState("search request status not suitable")
		}
		return model.SearchRequest{}, model.Wallet{}, model.WalletTransaction{}, dependency(err)
	}

	wallet, txn, err := creditWallet(ctx, tx, credit)
	if err != nil {
		return model.SearchRequest{}, model.Wallet{}, model.WalletTransaction{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return model.SearchRequest{}, model.Wallet{}, model.WalletTransaction{}, dependency(err)
	}
	return request, wallet, txn, nil
}

func (sr *SearchRequestRepo) Associations(ctx context.Context, req model.SearchRequest) (model.BookingVehicle, *model.CustomerBookedOnBehalf, error) {
	q1 := `
	SELECT id, license_plate, brand, model, color, date_created
	FROM booking_vehicles
	WHERE id = $1`

	var vehicle model.BookingVehicle
	err := sr.db.pool.QueryRow(ctx, q1, req.VehicleID).
		Scan(&vehicle.ID, &vehicle.LicensePlate, &vehicle.Brand, &vehicle.Model, &vehicle.Color, &vehicle.DateCreated)
	if err != nil {
		return model.BookingVehicle{}, nil, notFoundOr(err, "booking vehicle not exists")
	}

	if req.OnBehalfID == nil {
		return vehicle, nil, nil
	}

	q2 := `
	SELECT id, name, phone_number, note, date_created
	FROM customer_booked_on_behalves
	WHERE id = $1`

	var onBehalf model.CustomerBookedOnBehalf
	err = sr.db.pool.QueryRow(ctx, q2, *req.OnBehalfID).
		Scan(&onBehalf.ID, &onBehalf.Name, &onBehalf.PhoneNumber, &onBehalf.Note, &onBehalf.DateCreated)
	if err != nil {
		return model.BookingVehicle{}, nil, notFoundOr(err, "on behalf record not exists")
	}
	return vehicle, &onBehalf, nil
}

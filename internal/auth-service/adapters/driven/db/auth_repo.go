package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"ride-dispatch/internal/auth-service/core/domain/models"
	"ride-dispatch/internal/auth-service/core/ports"
	"ride-dispatch/internal/auth-service/core/service"
)

type AuthRepo struct {
	db *DB
}

func NewAuthRepo(db *DB) ports.IAuthRepo {
	return &AuthRepo{db: db}
}

const uniqueViolation = "23505"

// Create inserts the account together with its role, wallet and, for
// drivers, the dispatch status row. All or nothing.
func (ar *AuthRepo) Create(ctx context.Context, user models.User) (uuid.UUID, error) {
	tx, err := ar.db.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	q := `
	INSERT INTO users (name, email, phone, password_hash, star, priority, is_active)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id`

	var id uuid.UUID
	err = tx.QueryRow(ctx, q,
		user.Name, user.Email, user.Phone, user.PasswordHash,
		user.Star, user.Priority, user.IsActive,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return uuid.Nil, service.ErrEmailRegistered
		}
		return uuid.Nil, fmt.Errorf("failed to insert user: %v", err)
	}

	if _, err = tx.Exec(ctx,
		`INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, id, user.Role); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert role: %v", err)
	}

	if _, err = tx.Exec(ctx,
		`INSERT INTO wallets (user_id, total_money) VALUES ($1, 0)`, id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert wallet: %v", err)
	}

	if user.Role == "Driver" {
		if _, err = tx.Exec(ctx,
			`INSERT INTO driver_statuses (driver_id, is_online, is_free) VALUES ($1, false, true)`, id); err != nil {
			return uuid.Nil, fmt.Errorf("failed to insert driver status: %v", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit transaction: %v", err)
	}

	return id, nil
}

const userWithRole = `
	SELECT
		u.id,
		u.name,
		u.email,
		u.phone,
		u.password_hash,
		u.star,
		u.priority,
		u.is_active,
		u.date_created,
		u.date_updated,
		r.role
	FROM users u
	JOIN user_roles r ON r.user_id = u.id`

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash,
		&u.Star, &u.Priority, &u.IsActive,
		&u.DateCreated, &u.DateUpdated, &u.Role,
	)
	return u, err
}

func (ar *AuthRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := scanUser(ar.db.pool.QueryRow(ctx, userWithRole+` WHERE u.email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, service.ErrUnknownEmail
		}
		return models.User{}, err
	}
	return u, nil
}

func (ar *AuthRepo) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	u, err := scanUser(ar.db.pool.QueryRow(ctx, userWithRole+` WHERE u.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, errors.New("user not found")
		}
		return models.User{}, err
	}
	return u, nil
}

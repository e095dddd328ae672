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

// WalletRepo is the ledger adapter: every balance change is an atomic
// increment paired with an append-only transaction row in the same database
// transaction.
type WalletRepo struct {
	db *DB
}

func NewWalletRepo(db *DB) ports.ILedgerRepo {
	return &WalletRepo{db: db}
}

func (r *WalletRepo) Credit(ctx context.Context, userID uuid.UUID, amount int64, txnType model.TypeWalletTransaction) (model.Wallet, model.WalletTransaction, error) {
	tx, err := r.db.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return model.Wallet{}, model.WalletTransaction{}, dependency(err)
	}
	defer tx.Rollback(ctx)

	wallet, txn, err := creditWallet(ctx, tx, model.CreditEffect{UserID: userID, Amount: amount, Type: txnType})
	if err != nil {
		return model.Wallet{}, model.WalletTransaction{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Wallet{}, model.WalletTransaction{}, dependency(err)
	}
	return wallet, txn, nil
}

func (r *WalletRepo) FindWallet(ctx context.Context, userID uuid.UUID) (model.Wallet, error) {
	q := `
	SELECT id, user_id, total_money, date_created, date_updated
	FROM wallets
	WHERE user_id = $1`

	var w model.Wallet
	err := r.db.pool.QueryRow(ctx, q, userID).
		Scan(&w.ID, &w.UserID, &w.TotalMoney, &w.DateCreated, &w.DateUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Wallet{}, myerrors.WalletNotFound("wallet not exists")
		}
		return model.Wallet{}, dependency(err)
	}
	return w, nil
}

// creditWallet applies one credit inside the caller's transaction: an atomic
// increment on the balance and the ledger row that explains it. Concurrent
// credits to the same wallet serialize on the row update, so none is lost.
func creditWallet(ctx context.Context, tx pgx.Tx, credit model.CreditEffect) (model.Wallet, model.WalletTransaction, error) {
	q1 := `
	UPDATE wallets
	SET total_money = total_money + $1, date_updated = now()
	WHERE user_id = $2
	RETURNING id, user_id, total_money, date_created, date_updated`

	var wallet model.Wallet
	err := tx.QueryRow(ctx, q1, credit.Amount, credit.UserID).
		Scan(&wallet.ID, &wallet.UserID, &wallet.TotalMoney, &wallet.DateCreated, &wallet.DateUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Wallet{}, model.WalletTransaction{}, myerrors.WalletNotFound("wallet not exists")
		}
		return model.Wallet{}, model.WalletTransaction{}, dependency(err)
	}

	q2 := `
	INSERT INTO wallet_transactions (id, wallet_id, total_money, type, status, date_created)
	VALUES ($1, $2, $3, $4, $5, now())
	RETURNING id, wallet_id, total_money, type, status, date_created`

	var txn model.WalletTransaction
	err = tx.QueryRow(ctx, q2,
		uuid.New(), wallet.ID, credit.Amount, string(credit.Type), string(model.WalletTransactionSuccess),
	).Scan(&txn.ID, &txn.WalletID, &txn.TotalMoney, &txn.Type, &txn.Status, &txn.DateCreated)
	if err != nil {
		return model.Wallet{}, model.WalletTransaction{}, dependency(err)
	}

	return wallet, txn, nil
}

package model

import (
	"time"

	"github.com/google/uuid"
)

type TypeWalletTransaction string

const (
	WalletTransactionRefund   TypeWalletTransaction = "Refund"
	WalletTransactionTopUp    TypeWalletTransaction = "TopUp"
	WalletTransactionWithdraw TypeWalletTransaction = "Withdraw"
	WalletTransactionPay      TypeWalletTransaction = "Pay"
)

type WalletTransactionStatus string

const (
	WalletTransactionWaiting WalletTransactionStatus = "Waiting"
	WalletTransactionSuccess WalletTransactionStatus = "Success"
	WalletTransactionFailure WalletTransactionStatus = "Failure"
)

// Wallet holds the running balance for one user. TotalMoney equals the sum
// of the wallet's successful transactions by construction; it is adjusted
// only together with the transaction that explains the change.
type Wallet struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	TotalMoney  int64
	DateCreated time.Time
	DateUpdated time.Time
}

// WalletTransaction is one append-only ledger entry. Immutable once written;
// corrections are new entries, not edits.
type WalletTransaction struct {
	ID              uuid.UUID
	WalletID        uuid.UUID
	TotalMoney      int64
	Type            TypeWalletTransaction
	Status          WalletTransactionStatus
	LinkedAccountID *uuid.UUID
	DateCreated     time.Time
}

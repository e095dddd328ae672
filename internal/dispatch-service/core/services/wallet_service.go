package services

import (
	"context"

	"github.com/google/uuid"

	"ride-dispatch/internal/dispatch-service/core/domain/dto"
	"ride-dispatch/internal/dispatch-service/core/domain/model"
	"ride-dispatch/internal/dispatch-service/core/myerrors"
	"ride-dispatch/internal/dispatch-service/core/ports"
	"ride-dispatch/internal/mylogger"
)

// WalletService owns the balance operations that stand on their own, outside
// a lifecycle transition: top-ups and balance reads.
type WalletService struct {
	mylog  mylogger.Logger
	users  ports.IUserRepo
	ledger ports.ILedgerRepo
}

func NewWalletService(log mylogger.Logger, users ports.IUserRepo, ledger ports.ILedgerRepo) ports.IWalletService {
	return &WalletService{
		mylog:  log,
		users:  users,
		ledger: ledger,
	}
}

// TopUp credits the user's wallet and appends the TopUp transaction that
// explains the change.
func (s *WalletService) TopUp(ctx context.Context, userID uuid.UUID, req dto.WalletTopUpDto) (dto.WalletDto, error) {
	log := s.mylog.Action("TopUpWallet")

	if req.Amount == nil || *req.Amount <= 0 {
		return dto.WalletDto{}, myerrors.InvalidInput("invalid amount", ErrInvalidPrice)
	}
	if _, err := s.users.FindActive(ctx, userID); err != nil {
		return dto.WalletDto{}, err
	}

	wallet, txn, err := s.ledger.Credit(ctx, userID, *req.Amount, model.WalletTransactionTopUp)
	if err != nil {
		log.Error("cannot top up wallet", err, "user_id", userID)
		return dto.WalletDto{}, err
	}

	log.Info("wallet topped up", "user_id", userID, "amount", txn.TotalMoney, "wallet_id", wallet.ID)
	return dto.NewWalletDto(wallet), nil
}

func (s *WalletService) Balance(ctx context.Context, userID uuid.UUID) (dto.WalletDto, error) {
	wallet, err := s.ledger.FindWallet(ctx, userID)
	if err != nil {
		return dto.WalletDto{}, err
	}
	return dto.NewWalletDto(wallet), nil
}

package ports

import (
	"context"

	"github.com/google/uuid"

	"ride-dispatch/internal/auth-service/core/domain/models"
)

// IAuthRepo persists accounts. Create also provisions the wallet and, for
// drivers, the driver status row, in one transaction.
type IAuthRepo interface {
	Create(ctx context.Context, user models.User) (uuid.UUID, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.User, error)
}

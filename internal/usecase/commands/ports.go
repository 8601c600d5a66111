package commands

import (
	"context"
	"time"

	"github.com/desidobreva/CinemaReservations/internal/domain/user"

	"github.com/google/uuid"
)

// AvailabilityInvalidator drops cached availability once a ledger change for
// the screening has committed.
type AvailabilityInvalidator interface {
	Invalidate(ctx context.Context, screeningID uuid.UUID)
}

type TokenIssuer interface {
	GenerateToken(userID uuid.UUID, role user.Role) (string, error)
	TokenDuration() time.Duration
}

package scheduler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

const PendingExpiryJobName = "expire_pending_bookings"

// PendingExpirer cancels pending bookings whose hold has lapsed.
type PendingExpirer interface {
	ExpirePending(ctx context.Context) (int64, error)
}

// RegisterPendingExpiry schedules expirer on cronExpr.
func RegisterPendingExpiry(s *Service, cronExpr string, expirer PendingExpirer) error {
	if expirer == nil {
		return fmt.Errorf("pending expiry job requires a booking service")
	}
	_, err := s.AddJob(PendingExpiryJobName, cronExpr, expirePendingTask(expirer))
	return err
}

func expirePendingTask(expirer PendingExpirer) Task {
	return func(ctx context.Context) error {
		n, err := expirer.ExpirePending(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Ctx(ctx).Info().Int64("expired", n).Msg("Expired pending bookings")
		}
		return nil
	}
}

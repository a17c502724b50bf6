package service

import (
	"context"

	"github.com/marzy-142/geocasa-bohol-sub001/internal/inquiries/domain"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/apperr"
)

// checkRateLimits evaluates the per-IP and per-email rolling windows against
// persisted inquiry history. Both limits are independent; either breach
// blocks the submission. Counting from history keeps the limiter consistent
// across instances without a separate counter store.
func (s *Service) checkRateLimits(ctx context.Context, ip, email string) (*domain.IntakeError, error) {
	if s.policy.BusinessHoursEnabled {
		hour := s.clock.Now().Hour()
		if hour < s.policy.BusinessHoursStart || hour >= s.policy.BusinessHoursEnd {
			s.log.RateLimitExceeded(ip, email, "outside_business_hours")
			return domain.NewIntakeError(domain.FailureRateLimit, domain.ReasonOutsideHours), nil
		}
	}

	since := s.clock.Now().Add(-s.policy.RateWindow)

	if ip != "" {
		count, err := s.repo.CountByIPSince(ctx, ip, since)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindUnavailable, "Could not check your inquiry. Please try again.", err)
		}
		if count >= s.policy.IPLimit {
			s.log.RateLimitExceeded(ip, email, "ip_limit")
			return domain.NewIntakeError(domain.FailureRateLimit, domain.ReasonIPLimit), nil
		}
	}

	count, err := s.repo.CountByEmailSince(ctx, email, since)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "Could not check your inquiry. Please try again.", err)
	}
	if count >= s.policy.EmailLimit {
		s.log.RateLimitExceeded(ip, email, "email_limit")
		return domain.NewIntakeError(domain.FailureRateLimit, domain.ReasonEmailLimit), nil
	}

	return nil, nil
}

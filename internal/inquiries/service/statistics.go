package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/marzy-142/geocasa-bohol-sub001/internal/inquiries/domain"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/inquiries/repository"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/inquiries/transport"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/apperr"
)

// Statistics aggregates inquiry activity over the trailing window. Pure
// read; conversion rate is completed over total, response time is the mean
// hours to first contact. The four aggregate queries run concurrently.
func (s *Service) Statistics(ctx context.Context, windowDays int) (transport.StatisticsResponse, error) {
	if windowDays <= 0 {
		windowDays = defaultStatisticsWindowDays
	}
	since := s.clock.Now().Add(-time.Duration(windowDays) * 24 * time.Hour)

	var (
		counts   []repository.StatusCount
		avgHours float64
		top      []repository.PropertyCount
		perf     []repository.BrokerPerformance
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		counts, err = s.repo.CountByStatusSince(gctx, since)
		return err
	})
	g.Go(func() (err error) {
		avgHours, err = s.repo.AverageResponseHours(gctx, since)
		return err
	})
	g.Go(func() (err error) {
		top, err = s.repo.TopPropertiesSince(gctx, since, topPropertiesLimit)
		return err
	})
	g.Go(func() (err error) {
		perf, err = s.repo.BrokerPerformanceSince(gctx, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return transport.StatisticsResponse{}, apperr.Wrap(apperr.KindUnavailable, "Could not load statistics. Please try again.", err)
	}

	byStatus := make(map[string]int, len(domain.AllStatuses))
	for _, status := range domain.AllStatuses {
		byStatus[string(status)] = 0
	}
	total := 0
	for _, c := range counts {
		byStatus[c.Status] = c.Count
		total += c.Count
	}

	conversionRate := 0.0
	if total > 0 {
		conversionRate = float64(byStatus[string(domain.StatusCompleted)]) / float64(total)
	}

	topProperties := make([]transport.PropertyCountResponse, 0, len(top))
	for _, p := range top {
		topProperties = append(topProperties, transport.PropertyCountResponse{
			PropertyID: p.PropertyID,
			Title:      p.Title,
			Count:      p.Count,
		})
	}

	brokerPerformance := make([]transport.BrokerPerformanceResponse, 0, len(perf))
	for _, b := range perf {
		rate := 0.0
		if b.Total > 0 {
			rate = float64(b.Completed) / float64(b.Total)
		}
		brokerPerformance = append(brokerPerformance, transport.BrokerPerformanceResponse{
			BrokerID:       b.BrokerID,
			Name:           b.Name,
			Total:          b.Total,
			Completed:      b.Completed,
			ConversionRate: rate,
		})
	}

	return transport.StatisticsResponse{
		WindowDays:          windowDays,
		Total:               total,
		ByStatus:            byStatus,
		ConversionRate:      conversionRate,
		AverageResponseTime: avgHours,
		TopProperties:       topProperties,
		BrokerPerformance:   brokerPerformance,
	}, nil
}

// Overdue lists inquiries still in the new status past the overdue
// threshold, oldest first. Used by the reminder job and dashboards.
func (s *Service) Overdue(ctx context.Context) ([]transport.OverdueInquiryResponse, error) {
	now := s.clock.Now()
	before := now.Add(-s.policy.OverdueThreshold)

	items, err := s.repo.FindOverdue(ctx, before, overdueScanLimit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "Could not load overdue inquiries. Please try again.", err)
	}

	out := make([]transport.OverdueInquiryResponse, 0, len(items))
	for _, item := range items {
		out = append(out, transport.OverdueInquiryResponse{
			ID:         item.ID,
			PropertyID: item.PropertyID,
			BrokerID:   item.BrokerID,
			Name:       item.Name,
			Email:      item.Email,
			CreatedAt:  item.CreatedAt,
			AgeHours:   int(now.Sub(item.CreatedAt).Hours()),
		})
	}
	return out, nil
}

package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marzy-142/geocasa-bohol-sub001/internal/events"
	inquiryrepo "github.com/marzy-142/geocasa-bohol-sub001/internal/inquiries/repository"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/notification"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/config"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/logger"
)

const (
	defaultOverdueScanInterval = 12 * time.Hour
	overdueScanBatchLimit      = 500
)

// OverdueScan periodically finds inquiries still awaiting first contact past
// the threshold, publishes an event per inquiry and queues one reminder
// digest per broker.
type OverdueScan struct {
	repo          *inquiryrepo.Repository
	notifications *notification.Module
	bus           events.Bus
	threshold     time.Duration
	interval      time.Duration
	log           *logger.Logger
}

func NewOverdueScan(pool *pgxpool.Pool, notifications *notification.Module, bus events.Bus, cfg config.IntakeConfig, interval time.Duration, log *logger.Logger) *OverdueScan {
	if interval <= 0 {
		interval = defaultOverdueScanInterval
	}

	return &OverdueScan{
		repo:          inquiryrepo.New(pool),
		notifications: notifications,
		bus:           bus,
		threshold:     cfg.GetOverdueThreshold(),
		interval:      interval,
		log:           log,
	}
}

func (s *OverdueScan) Run(ctx context.Context) {
	if s == nil || s.repo == nil {
		return
	}

	s.scan(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

func (s *OverdueScan) scan(ctx context.Context) {
	now := time.Now().UTC()
	before := now.Add(-s.threshold)

	items, err := s.repo.FindOverdue(ctx, before, overdueScanBatchLimit)
	if err != nil {
		s.log.Warn("overdue scan failed", "error", err)
		return
	}
	if len(items) == 0 {
		return
	}

	perBroker := make(map[uuid.UUID]int)
	unassigned := 0
	for _, item := range items {
		s.bus.Publish(ctx, events.InquiryOverdue{
			BaseEvent:  events.NewBaseEvent(),
			InquiryID:  item.ID,
			PropertyID: item.PropertyID,
			BrokerID:   item.BrokerID,
			Email:      item.Email,
			AgeHours:   int(now.Sub(item.CreatedAt).Hours()),
		})

		if item.BrokerID != nil {
			perBroker[*item.BrokerID]++
		} else {
			unassigned++
		}
	}

	for brokerID, count := range perBroker {
		id := brokerID
		if err := s.notifications.EnqueueOverdueDigest(ctx, &id, count); err != nil {
			s.log.Warn("overdue digest enqueue failed", "brokerId", id, "error", err)
		}
	}
	if unassigned > 0 {
		if err := s.notifications.EnqueueOverdueDigest(ctx, nil, unassigned); err != nil {
			s.log.Warn("overdue digest enqueue failed", "brokerId", "none", "error", err)
		}
	}

	s.log.Info("overdue scan completed", "overdue", len(items), "brokers", len(perBroker), "unassigned", unassigned)
}

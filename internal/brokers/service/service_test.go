package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/marzy-142/geocasa-bohol-sub001/internal/brokers/repository"
	platformevents "github.com/marzy-142/geocasa-bohol-sub001/platform/events"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/logger"
)

type fakeBrokerRepo struct {
	brokers    map[uuid.UUID]repository.Broker
	candidates []repository.Workload
}

func (f *fakeBrokerRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Broker, error) {
	if b, ok := f.brokers[id]; ok {
		return b, nil
	}
	return repository.Broker{}, repository.ErrNotFound
}

func (f *fakeBrokerRepo) EligibleWithWorkload(_ context.Context) ([]repository.Workload, error) {
	return f.candidates, nil
}

type fakeAssigner struct {
	assigned map[uuid.UUID]uuid.UUID
	taken    map[uuid.UUID]bool
}

func newFakeAssigner() *fakeAssigner {
	return &fakeAssigner{assigned: map[uuid.UUID]uuid.UUID{}, taken: map[uuid.UUID]bool{}}
}

func (f *fakeAssigner) AssignBroker(_ context.Context, id, brokerID uuid.UUID) (bool, error) {
	if f.taken[id] {
		return false, nil
	}
	f.assigned[id] = brokerID
	f.taken[id] = true
	return true, nil
}

func newTestService(repo *fakeBrokerRepo) (*Service, *fakeAssigner, *fakeAssigner) {
	log := &logger.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	properties := newFakeAssigner()
	clients := newFakeAssigner()
	return New(repo, properties, clients, platformevents.NewInMemoryBus(log), log), properties, clients
}

func workload(name string, active, total int) repository.Workload {
	return repository.Workload{ID: uuid.New(), Name: name, Email: name + "@geocasa.ph", ActiveWorkload: active, TotalAssigned: total}
}

func TestPickLowestActiveWorkload(t *testing.T) {
	b1 := workload("b1", 2, 10)
	b2 := workload("b2", 5, 3)

	got := Pick([]repository.Workload{b2, b1})
	if got == nil || got.ID != b1.ID {
		t.Fatalf("expected b1 (2 active), got %+v", got)
	}
}

func TestPickTieBrokenByTotalAssigned(t *testing.T) {
	fresh := workload("fresh", 3, 4)
	veteran := workload("veteran", 3, 40)

	got := Pick([]repository.Workload{veteran, fresh})
	if got == nil || got.ID != fresh.ID {
		t.Fatalf("expected the broker with fewer total assignments, got %+v", got)
	}
}

func TestPickDeterministicOnFullTie(t *testing.T) {
	a := workload("ana", 1, 1)
	b := workload("bea", 1, 1)

	first := Pick([]repository.Workload{b, a})
	second := Pick([]repository.Workload{a, b})
	if first == nil || second == nil || first.ID != second.ID {
		t.Fatal("full tie must resolve the same way regardless of input order")
	}
	if first.ID != a.ID {
		t.Errorf("expected name order to break the tie, got %s", first.Name)
	}
}

func TestPickEmpty(t *testing.T) {
	if got := Pick(nil); got != nil {
		t.Fatalf("expected nil for no candidates, got %+v", got)
	}
}

func TestAssignForInquiryPicksAndRecords(t *testing.T) {
	b1 := workload("b1", 2, 10)
	b2 := workload("b2", 5, 3)
	repo := &fakeBrokerRepo{candidates: []repository.Workload{b1, b2}}
	svc, properties, clients := newTestService(repo)

	propertyID := uuid.New()
	clientID := uuid.New()
	got, err := svc.AssignForInquiry(context.Background(), AssignmentRequest{
		PropertyID: propertyID,
		ClientID:   clientID,
	})
	if err != nil {
		t.Fatalf("AssignForInquiry returned error: %v", err)
	}
	if got == nil || got.ID != b1.ID {
		t.Fatalf("expected b1 to win, got %+v", got)
	}
	if properties.assigned[propertyID] != b1.ID {
		t.Errorf("property not assigned to b1")
	}
	if clients.assigned[clientID] != b1.ID {
		t.Errorf("client should inherit the property broker")
	}
}

func TestAssignForInquiryNoEligibleBroker(t *testing.T) {
	svc, properties, _ := newTestService(&fakeBrokerRepo{})

	got, err := svc.AssignForInquiry(context.Background(), AssignmentRequest{PropertyID: uuid.New()})
	if err != nil {
		t.Fatalf("AssignForInquiry returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no assignment, got %+v", got)
	}
	if len(properties.assigned) != 0 {
		t.Error("nothing should have been written")
	}
}

func TestAssignForInquiryKeepsExistingPropertyBroker(t *testing.T) {
	existing := repository.Broker{ID: uuid.New(), Name: "Ana", Email: "ana@geocasa.ph", Approved: true, Active: true}
	repo := &fakeBrokerRepo{brokers: map[uuid.UUID]repository.Broker{existing.ID: existing}}
	svc, properties, clients := newTestService(repo)

	propertyID := uuid.New()
	clientID := uuid.New()
	got, err := svc.AssignForInquiry(context.Background(), AssignmentRequest{
		PropertyID:       propertyID,
		PropertyBrokerID: &existing.ID,
		ClientID:         clientID,
	})
	if err != nil {
		t.Fatalf("AssignForInquiry returned error: %v", err)
	}
	if got == nil || got.ID != existing.ID {
		t.Fatalf("expected the existing broker, got %+v", got)
	}
	if len(properties.assigned) != 0 {
		t.Error("an assigned property must not be reassigned")
	}
	if clients.assigned[clientID] != existing.ID {
		t.Error("client should inherit the existing property broker")
	}
}

func TestAssignForInquiryLostRaceReturnsNoBroker(t *testing.T) {
	b1 := workload("b1", 0, 0)
	repo := &fakeBrokerRepo{candidates: []repository.Workload{b1}}
	svc, properties, _ := newTestService(repo)

	propertyID := uuid.New()
	properties.taken[propertyID] = true

	got, err := svc.AssignForInquiry(context.Background(), AssignmentRequest{PropertyID: propertyID})
	if err != nil {
		t.Fatalf("AssignForInquiry returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("a lost assignment race must not report a broker, got %+v", got)
	}
}

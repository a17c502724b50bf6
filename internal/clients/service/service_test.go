package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/marzy-142/geocasa-bohol-sub001/internal/clients/repository"
	platformevents "github.com/marzy-142/geocasa-bohol-sub001/platform/events"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/logger"
)

type fakeClientRepo struct {
	clients map[uuid.UUID]*repository.Client
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: map[uuid.UUID]*repository.Client{}}
}

func (f *fakeClientRepo) add(email string, userID *uuid.UUID) uuid.UUID {
	id := uuid.New()
	f.clients[id] = &repository.Client{ID: id, Email: strings.ToLower(email), UserID: userID, Status: "active"}
	return id
}

func (f *fakeClientRepo) FindByEmail(_ context.Context, email string) (repository.Client, error) {
	for _, c := range f.clients {
		if strings.EqualFold(c.Email, email) {
			return *c, nil
		}
	}
	return repository.Client{}, repository.ErrNotFound
}

func (f *fakeClientRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Client, error) {
	if c, ok := f.clients[id]; ok {
		return *c, nil
	}
	return repository.Client{}, repository.ErrNotFound
}

func (f *fakeClientRepo) FindOrCreate(ctx context.Context, params repository.CreateClientParams) (repository.Client, error) {
	if c, err := f.FindByEmail(ctx, params.Email); err == nil {
		return c, nil
	}
	id := f.add(params.Email, nil)
	f.clients[id].Name = params.Name
	f.clients[id].Phone = params.Phone
	return *f.clients[id], nil
}

func (f *fakeClientRepo) AttachUser(_ context.Context, clientID, userID uuid.UUID) error {
	c, ok := f.clients[clientID]
	if !ok {
		return repository.ErrNotFound
	}
	c.UserID = &userID
	return nil
}

func (f *fakeClientRepo) LinkUserByEmail(_ context.Context, email string, userID uuid.UUID) (int, error) {
	linked := 0
	for _, c := range f.clients {
		if strings.EqualFold(c.Email, email) && c.UserID == nil {
			c.UserID = &userID
			linked++
		}
	}
	return linked, nil
}

func (f *fakeClientRepo) CountUnlinkedByEmail(_ context.Context, email string) (int, error) {
	count := 0
	for _, c := range f.clients {
		if strings.EqualFold(c.Email, email) && c.UserID == nil {
			count++
		}
	}
	return count, nil
}

func (f *fakeClientRepo) List(_ context.Context, _, _ int) ([]repository.Client, error) {
	items := make([]repository.Client, 0, len(f.clients))
	for _, c := range f.clients {
		items = append(items, *c)
	}
	return items, nil
}

type fakeInquiryLinks struct {
	unlinked int
}

func (f *fakeInquiryLinks) LinkUserByEmail(_ context.Context, _ string, _ uuid.UUID) (int, error) {
	linked := f.unlinked
	f.unlinked = 0
	return linked, nil
}

func (f *fakeInquiryLinks) CountUnlinkedByEmail(_ context.Context, _ string) (int, error) {
	return f.unlinked, nil
}

func newTestService(repo *fakeClientRepo, links *fakeInquiryLinks) *Service {
	log := &logger.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	return New(repo, links, platformevents.NewInMemoryBus(log), log)
}

func TestResolveReusesExistingClient(t *testing.T) {
	repo := newFakeClientRepo()
	existing := repo.add("john@example.com", nil)
	svc := newTestService(repo, &fakeInquiryLinks{})

	c, err := svc.Resolve(context.Background(), repository.CreateClientParams{Name: "John Doe", Email: "John@Example.com"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if c.ID != existing {
		t.Errorf("expected existing client %s, got %s", existing, c.ID)
	}
	if len(repo.clients) != 1 {
		t.Errorf("no new client should be created, have %d", len(repo.clients))
	}
}

func TestResolveCreatesMissingClient(t *testing.T) {
	repo := newFakeClientRepo()
	svc := newTestService(repo, &fakeInquiryLinks{})

	c, err := svc.Resolve(context.Background(), repository.CreateClientParams{Name: "Maria Cruz", Email: "maria@example.com"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if c.Email != "maria@example.com" {
		t.Errorf("email = %s", c.Email)
	}
	if c.UserID != nil || c.BrokerID != nil {
		t.Errorf("new client should be unlinked and unassigned: %+v", c)
	}
}

func TestLinkAccountIdempotent(t *testing.T) {
	repo := newFakeClientRepo()
	repo.add("john@example.com", nil)
	links := &fakeInquiryLinks{unlinked: 2}
	svc := newTestService(repo, links)
	userID := uuid.New()

	first, err := svc.LinkAccount(context.Background(), "john@example.com", userID)
	if err != nil {
		t.Fatalf("LinkAccount returned error: %v", err)
	}
	if first.LinkedClients != 1 || first.LinkedInquiries != 2 {
		t.Fatalf("first run linked %+v, want 1 client and 2 inquiries", first)
	}

	second, err := svc.LinkAccount(context.Background(), "john@example.com", userID)
	if err != nil {
		t.Fatalf("second LinkAccount returned error: %v", err)
	}
	if second.LinkedClients != 0 || second.LinkedInquiries != 0 {
		t.Errorf("second run must link nothing, got %+v", second)
	}
}

func TestLinkAccountUnknownEmail(t *testing.T) {
	svc := newTestService(newFakeClientRepo(), &fakeInquiryLinks{})

	result, err := svc.LinkAccount(context.Background(), "nobody@example.com", uuid.New())
	if err != nil {
		t.Fatalf("unknown email must not be an error, got %v", err)
	}
	if result.LinkedClients != 0 || result.LinkedInquiries != 0 {
		t.Errorf("expected zero counts, got %+v", result)
	}
}

func TestCheckLinkDoesNotMutate(t *testing.T) {
	repo := newFakeClientRepo()
	id := repo.add("john@example.com", nil)
	links := &fakeInquiryLinks{unlinked: 3}
	svc := newTestService(repo, links)

	result, err := svc.CheckLink(context.Background(), "john@example.com")
	if err != nil {
		t.Fatalf("CheckLink returned error: %v", err)
	}
	if result.LinkedClients != 1 || result.LinkedInquiries != 3 {
		t.Errorf("unexpected counts: %+v", result)
	}
	if repo.clients[id].UserID != nil {
		t.Error("CheckLink must not link anything")
	}
	if links.unlinked != 3 {
		t.Error("CheckLink must not consume inquiry links")
	}
}

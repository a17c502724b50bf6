package adapters

import (
	"context"

	"github.com/google/uuid"

	clientservice "github.com/marzy-142/geocasa-bohol-sub001/internal/clients/service"
	inquiryrepo "github.com/marzy-142/geocasa-bohol-sub001/internal/inquiries/repository"
)

// InquiryLinksAdapter adapts the inquiries repository to the clients
// domain's InquiryLinks interface used by the retroactive account linker.
type InquiryLinksAdapter struct {
	repo *inquiryrepo.Repository
}

// NewInquiryLinksAdapter creates a new adapter wrapping the inquiries repository.
func NewInquiryLinksAdapter(repo *inquiryrepo.Repository) *InquiryLinksAdapter {
	return &InquiryLinksAdapter{repo: repo}
}

// LinkUserByEmail stamps the user on all unlinked inquiries for the email.
func (a *InquiryLinksAdapter) LinkUserByEmail(ctx context.Context, email string, userID uuid.UUID) (int, error) {
	return a.repo.LinkUserByEmail(ctx, email, userID)
}

// CountUnlinkedByEmail counts the inquiries LinkUserByEmail would touch.
func (a *InquiryLinksAdapter) CountUnlinkedByEmail(ctx context.Context, email string) (int, error) {
	return a.repo.CountUnlinkedByEmail(ctx, email)
}

// Compile-time check
var _ clientservice.InquiryLinks = (*InquiryLinksAdapter)(nil)

package transport

import (
	"time"

	"github.com/google/uuid"
)

// InquiryType classifies what the submitter wants.
type InquiryType string

const (
	InquiryTypeGeneral InquiryType = "general"
	InquiryTypeViewing InquiryType = "viewing"
	InquiryTypePricing InquiryType = "pricing"
	InquiryTypeOffer   InquiryType = "offer"
)

// Request DTOs

// CreateInquiryRequest is a public inquiry submission. Message bounds and
// email grammar are enforced here; property eligibility, rate limits and
// duplicate suppression are enforced by the service.
type CreateInquiryRequest struct {
	Name        string      `json:"name" validate:"required,min=1,max=100"`
	Email       string      `json:"email" validate:"required,email"`
	Phone       *string     `json:"phone,omitempty" validate:"omitempty,max=20"`
	Message     string      `json:"message" validate:"required"`
	InquiryType InquiryType `json:"inquiryType,omitempty" validate:"omitempty,oneof=general viewing pricing offer"`
	PropertyID  uuid.UUID   `json:"propertyId" validate:"required"`

	// SubmitterIP is set by the transport layer, never by the submitter.
	SubmitterIP string `json:"-"`
}

type UpdateInquiryStatusRequest struct {
	Status   string  `json:"status" validate:"required,oneof=new contacted scheduled completed closed"`
	Response *string `json:"response,omitempty" validate:"omitempty,max=2000"`
}

type StatisticsRequest struct {
	WindowDays int `form:"windowDays" validate:"omitempty,min=1,max=365"`
}

// Response DTOs

type InquiryResponse struct {
	ID          uuid.UUID   `json:"id"`
	PropertyID  uuid.UUID   `json:"propertyId"`
	ClientID    *uuid.UUID  `json:"clientId,omitempty"`
	UserID      *uuid.UUID  `json:"userId,omitempty"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Phone       *string     `json:"phone,omitempty"`
	Message     string      `json:"message"`
	InquiryType InquiryType `json:"inquiryType"`
	Status      string      `json:"status"`
	Response    *string     `json:"response,omitempty"`
	RespondedAt *time.Time  `json:"respondedAt,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type BrokerResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// CreateInquiryResponse is the discriminated result of an intake attempt.
// On rejection, Type carries the failure class and Error the user-facing
// reason; both are empty on success.
type CreateInquiryResponse struct {
	Success bool             `json:"success"`
	Type    string           `json:"type,omitempty"`
	Error   string           `json:"error,omitempty"`
	Field   string           `json:"field,omitempty"`
	Inquiry *InquiryResponse `json:"inquiry,omitempty"`
	Broker  *BrokerResponse  `json:"broker,omitempty"`
}

type PropertyCountResponse struct {
	PropertyID uuid.UUID `json:"propertyId"`
	Title      string    `json:"title"`
	Count      int       `json:"count"`
}

type BrokerPerformanceResponse struct {
	BrokerID       uuid.UUID `json:"brokerId"`
	Name           string    `json:"name"`
	Total          int       `json:"total"`
	Completed      int       `json:"completed"`
	ConversionRate float64   `json:"conversionRate"`
}

type StatisticsResponse struct {
	WindowDays          int                         `json:"windowDays"`
	Total               int                         `json:"total"`
	ByStatus            map[string]int              `json:"byStatus"`
	ConversionRate      float64                     `json:"conversionRate"`
	AverageResponseTime float64                     `json:"averageResponseHours"`
	TopProperties       []PropertyCountResponse     `json:"topProperties"`
	BrokerPerformance   []BrokerPerformanceResponse `json:"brokerPerformance"`
}

type OverdueInquiryResponse struct {
	ID         uuid.UUID  `json:"id"`
	PropertyID uuid.UUID  `json:"propertyId"`
	BrokerID   *uuid.UUID `json:"brokerId,omitempty"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	CreatedAt  time.Time  `json:"createdAt"`
	AgeHours   int        `json:"ageHours"`
}

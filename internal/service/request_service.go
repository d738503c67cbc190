package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"memorial-platform/internal/apperr"
	"memorial-platform/internal/lifecycle"
	"memorial-platform/internal/models"
	"memorial-platform/internal/pricing"
	"memorial-platform/internal/repository"
)

// Stores required by the services (interfaces to allow mocking).

type RequestStore interface {
	Insert(ctx context.Context, req *models.MemorialRequest) error
	GetByID(ctx context.Context, id string) (*models.MemorialRequest, error)
	List(ctx context.Context, filter repository.ListFilter) ([]models.MemorialRequest, error)
	UpdateStatus(ctx context.Context, id, status string, adminNotes *string, version int) (*models.MemorialRequest, error)
	RecordPayment(ctx context.Context, id, paymentRef, paymentStatus, requestStatus string) (*models.MemorialRequest, error)
	MarkPublished(ctx context.Context, tx *sqlx.Tx, id string) error
}

type Notifier interface {
	RequestCreated(req *models.MemorialRequest) error
}

// RequestService owns the memorial-request lifecycle: creation with a
// one-time price computation, the payment callback cascade, and the
// admin-driven status transitions.
type RequestService struct {
	requests RequestStore
	notifier Notifier
}

func NewRequestService(requests RequestStore, notifier Notifier) *RequestService {
	return &RequestService{requests: requests, notifier: notifier}
}

// CreateRequestInput carries a family's submission.
type CreateRequestInput struct {
	RequesterName            string
	RequesterEmail           string
	LovedOneName             string
	BirthDate                *string
	DeathDate                *string
	StoryNotes               string
	MediaUploads             []string
	LocationInfo             *string
	Latitude                 *float64
	Longitude                *float64
	Country                  *string
	TierSelected             string
	PreservationAddon        bool
	PreservationBillingCycle *string
	DiscountRequested        bool
	DiscountType             *string
	DocumentationUpload      *string
}

func (in *CreateRequestInput) validate() error {
	if in.RequesterName == "" {
		return fmt.Errorf("%w: requester_name is required", apperr.ErrValidation)
	}
	if in.RequesterEmail == "" {
		return fmt.Errorf("%w: requester_email is required", apperr.ErrValidation)
	}
	if in.LovedOneName == "" {
		return fmt.Errorf("%w: loved_one_name is required", apperr.ErrValidation)
	}
	if in.StoryNotes == "" {
		return fmt.Errorf("%w: story_notes is required", apperr.ErrValidation)
	}
	if !models.ValidTier(in.TierSelected) {
		return fmt.Errorf("%w: unknown tier %q", apperr.ErrValidation, in.TierSelected)
	}
	for _, d := range []*string{in.BirthDate, in.DeathDate} {
		if d == nil || *d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", *d); err != nil {
			return fmt.Errorf("%w: dates must be YYYY-MM-DD, got %q", apperr.ErrValidation, *d)
		}
	}
	return nil
}

// Create validates the submission, computes the payment amount exactly once,
// persists the request in the submitted state, and fires the admin
// notification without blocking the caller.
func (s *RequestService) Create(ctx context.Context, in CreateRequestInput) (*models.MemorialRequest, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	cycle := ""
	if in.PreservationBillingCycle != nil {
		cycle = *in.PreservationBillingCycle
	}
	amount, err := pricing.Compute(in.TierSelected, in.PreservationAddon, cycle, in.DiscountRequested)
	if err != nil {
		return nil, err
	}

	// The billing cycle is only meaningful alongside the add-on.
	var billingCycle *string
	if in.PreservationAddon {
		billingCycle = in.PreservationBillingCycle
	}

	media := in.MediaUploads
	if media == nil {
		media = []string{}
	}

	req := &models.MemorialRequest{
		ID:                       uuid.NewString(),
		RequesterName:            in.RequesterName,
		RequesterEmail:           in.RequesterEmail,
		LovedOneName:             in.LovedOneName,
		BirthDate:                emptyToNil(in.BirthDate),
		DeathDate:                emptyToNil(in.DeathDate),
		StoryNotes:               in.StoryNotes,
		MediaUploads:             media,
		LocationInfo:             in.LocationInfo,
		Latitude:                 in.Latitude,
		Longitude:                in.Longitude,
		Country:                  in.Country,
		TierSelected:             in.TierSelected,
		PreservationAddon:        in.PreservationAddon,
		PreservationBillingCycle: billingCycle,
		DiscountRequested:        in.DiscountRequested,
		DiscountType:             in.DiscountType,
		DocumentationUpload:      in.DocumentationUpload,
		PaymentAmountCents:       amount,
		PaymentStatus:            models.PaymentPending,
		RequestStatus:            models.StatusSubmitted,
		Version:                  1,
	}

	if err := s.requests.Insert(ctx, req); err != nil {
		return nil, err
	}

	// Fire and forget: one attempt, errors logged, never propagated to the
	// submitting caller.
	go func(req models.MemorialRequest) {
		if err := s.notifier.RequestCreated(&req); err != nil {
			log.Println("Failed to send request notification (continuing anyway):", err)
		}
	}(*req)

	return req, nil
}

// RecordPayment stores a payment result from the provider callback and
// cascades the request status: completed advances to under_review, anything
// else resets to submitted. No admin session is involved on this path.
func (s *RequestService) RecordPayment(ctx context.Context, id, paymentRef, paymentStatus string) (*models.MemorialRequest, error) {
	if paymentStatus != models.PaymentCompleted && paymentStatus != models.PaymentFailed {
		return nil, fmt.Errorf("%w: payment_status must be completed or failed, got %q", apperr.ErrValidation, paymentStatus)
	}
	if paymentRef == "" {
		return nil, fmt.Errorf("%w: payment_ref is required", apperr.ErrValidation)
	}

	next := lifecycle.PaymentCascade(paymentStatus)
	return s.requests.RecordPayment(ctx, id, paymentRef, paymentStatus, next)
}

// List returns requests for admin triage.
func (s *RequestService) List(ctx context.Context, filter repository.ListFilter) ([]models.MemorialRequest, error) {
	return s.requests.List(ctx, filter)
}

// Get returns a single request.
func (s *RequestService) Get(ctx context.Context, id string) (*models.MemorialRequest, error) {
	return s.requests.GetByID(ctx, id)
}

// UpdateStatus moves a request through the workflow. The transition is
// checked against the state machine before anything is written, and the
// write is conditional on the version read here, so a concurrent admin's
// change fails with a conflict instead of being overwritten. Publication is
// not reachable through this path; it runs the publish workflow instead.
func (s *RequestService) UpdateStatus(ctx context.Context, id, newStatus string, adminNotes *string) (*models.MemorialRequest, error) {
	if newStatus == models.StatusPublished {
		return nil, fmt.Errorf("%w: publishing goes through the memorial publish operation", apperr.ErrValidation)
	}

	current, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckTransition(current.RequestStatus, newStatus); err != nil {
		return nil, err
	}

	return s.requests.UpdateStatus(ctx, id, newStatus, adminNotes, current.Version)
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

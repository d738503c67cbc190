package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"memorial-platform/internal/apperr"
	"memorial-platform/internal/models"
)

// RequestRepo persists memorial requests.
type RequestRepo struct {
	DB *sqlx.DB
}

func NewRequestRepo(db *sqlx.DB) *RequestRepo {
	return &RequestRepo{DB: db}
}

const requestColumns = `id, requester_name, requester_email, loved_one_name, birth_date, death_date,
	story_notes, media_uploads, location_info, latitude, longitude, country,
	tier_selected, preservation_addon, preservation_billing_cycle,
	discount_requested, discount_type, documentation_upload,
	payment_amount_cents, payment_status, payment_ref, request_status,
	admin_notes, version, created_at, updated_at`

// Insert stores a new request and fills in the generated timestamps.
func (r *RequestRepo) Insert(ctx context.Context, req *models.MemorialRequest) error {
	query := `
		INSERT INTO memorial_requests
		  (id, requester_name, requester_email, loved_one_name, birth_date, death_date,
		   story_notes, media_uploads, location_info, latitude, longitude, country,
		   tier_selected, preservation_addon, preservation_billing_cycle,
		   discount_requested, discount_type, documentation_upload,
		   payment_amount_cents, payment_status, request_status, version)
		VALUES
		  ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		   $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		RETURNING created_at, updated_at`

	row := r.DB.QueryRowxContext(ctx, query,
		req.ID, req.RequesterName, req.RequesterEmail, req.LovedOneName, req.BirthDate, req.DeathDate,
		req.StoryNotes, req.MediaUploads, req.LocationInfo, req.Latitude, req.Longitude, req.Country,
		req.TierSelected, req.PreservationAddon, req.PreservationBillingCycle,
		req.DiscountRequested, req.DiscountType, req.DocumentationUpload,
		req.PaymentAmountCents, req.PaymentStatus, req.RequestStatus, req.Version,
	)
	if err := row.Scan(&req.CreatedAt, &req.UpdatedAt); err != nil {
		return fmt.Errorf("insert memorial request: %w", err)
	}
	return nil
}

// GetByID fetches a single request.
func (r *RequestRepo) GetByID(ctx context.Context, id string) (*models.MemorialRequest, error) {
	var req models.MemorialRequest
	query := `SELECT ` + requestColumns + ` FROM memorial_requests WHERE id = $1`
	if err := r.DB.GetContext(ctx, &req, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: memorial request %s", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get memorial request: %w", err)
	}
	return &req, nil
}

// ListFilter narrows the admin triage listing.
type ListFilter struct {
	Status            *string
	DiscountRequested *bool
}

// List returns requests newest first, optionally filtered by status and
// discount flag.
func (r *RequestRepo) List(ctx context.Context, filter ListFilter) ([]models.MemorialRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM memorial_requests WHERE 1=1`
	args := []interface{}{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND request_status = $%d", len(args))
	}
	if filter.DiscountRequested != nil {
		args = append(args, *filter.DiscountRequested)
		query += fmt.Sprintf(" AND discount_requested = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	requests := []models.MemorialRequest{}
	if err := r.DB.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("list memorial requests: %w", err)
	}
	return requests, nil
}

// UpdateStatus writes a new request status conditional on the version the
// caller read. A stale version fails with a conflict rather than clobbering
// a concurrent admin's write.
func (r *RequestRepo) UpdateStatus(ctx context.Context, id, status string, adminNotes *string, version int) (*models.MemorialRequest, error) {
	var req models.MemorialRequest
	query := `
		UPDATE memorial_requests
		SET request_status = $1,
		    admin_notes = COALESCE($2, admin_notes),
		    version = version + 1,
		    updated_at = now()
		WHERE id = $3 AND version = $4
		RETURNING ` + requestColumns

	err := r.DB.GetContext(ctx, &req, query, status, adminNotes, id, version)
	if err == nil {
		return &req, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update request status: %w", err)
	}

	// No row matched: either the id is unknown or the version is stale.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, fmt.Errorf("%w: memorial request %s was modified concurrently", apperr.ErrConflict, id)
}

// MarkPublished flips the request to published inside the publish
// transaction.
func (r *RequestRepo) MarkPublished(ctx context.Context, tx *sqlx.Tx, id string) error {
	query := `
		UPDATE memorial_requests
		SET request_status = $1, version = version + 1, updated_at = now()
		WHERE id = $2`

	res, err := tx.ExecContext(ctx, query, models.StatusPublished, id)
	if err != nil {
		return fmt.Errorf("mark request published: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark request published: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: memorial request %s", apperr.ErrNotFound, id)
	}
	return nil
}

// RecordPayment stores a payment result and the request status it cascades
// to. This path is driven by the payment-provider callback and does not go
// through the admin transition table.
func (r *RequestRepo) RecordPayment(ctx context.Context, id, paymentRef, paymentStatus, requestStatus string) (*models.MemorialRequest, error) {
	var req models.MemorialRequest
	query := `
		UPDATE memorial_requests
		SET payment_ref = $1,
		    payment_status = $2,
		    request_status = $3,
		    version = version + 1,
		    updated_at = now()
		WHERE id = $4
		RETURNING ` + requestColumns

	err := r.DB.GetContext(ctx, &req, query, paymentRef, paymentStatus, requestStatus, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: memorial request %s", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("record payment: %w", err)
	}
	return &req, nil
}

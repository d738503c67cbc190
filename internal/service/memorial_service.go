package service

import (
	"context"
	"fmt"
	"log"
	"net/url"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"memorial-platform/internal/apperr"
	"memorial-platform/internal/lifecycle"
	"memorial-platform/internal/models"
	"memorial-platform/internal/repository"
	"memorial-platform/internal/slug"
)

// Two concurrent publishes of similarly-named subjects can both pass the
// slug lookup and collide on insert; the loser regenerates and retries up
// to this many times.
const maxPublishAttempts = 5

type MemorialStore interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
	InsertTx(ctx context.Context, tx *sqlx.Tx, m *models.Memorial) error
	GetByID(ctx context.Context, id string) (*models.Memorial, error)
	GetBySlug(ctx context.Context, publicURL string) (*models.Memorial, error)
	Update(ctx context.Context, id string, u repository.MemorialUpdate) (*models.Memorial, error)
	SoftDelete(ctx context.Context, id string) error
	ListMap(ctx context.Context) ([]models.MapMemorial, error)
}

// MemorialService owns publication and the public read surface. Publishing
// converts an approved request into a memorial: slug resolution, QR URL
// derivation, memorial insert, and the request's move to published, the last
// two inside one transaction.
type MemorialService struct {
	db            *sqlx.DB
	memorials     MemorialStore
	requests      RequestStore
	publicBaseURL string
}

func NewMemorialService(db *sqlx.DB, memorials MemorialStore, requests RequestStore, publicBaseURL string) *MemorialService {
	return &MemorialService{
		db:            db,
		memorials:     memorials,
		requests:      requests,
		publicBaseURL: publicBaseURL,
	}
}

// PublishInput carries the admin-reviewed display fields for a new memorial.
type PublishInput struct {
	RequestID          string
	FullName           string
	BirthDate          *string
	DeathDate          *string
	StoryText          string
	Photos             []string
	VideoLink          *string
	AudioNarrationLink *string
	Latitude           *float64
	Longitude          *float64
	LocationVisibility string
	PublicURL          string // optional explicit slug, bypasses generation
}

func (in *PublishInput) validate() error {
	if in.RequestID == "" {
		return fmt.Errorf("%w: request_id is required", apperr.ErrValidation)
	}
	if in.FullName == "" {
		return fmt.Errorf("%w: full_name is required", apperr.ErrValidation)
	}
	if in.StoryText == "" {
		return fmt.Errorf("%w: story_text is required", apperr.ErrValidation)
	}
	if !models.ValidVisibility(in.LocationVisibility) {
		return fmt.Errorf("%w: location_visibility must be exact, approximate or hidden", apperr.ErrValidation)
	}
	return nil
}

// QRCodeURL derives the rendering-service URL for a slug. No QR binary is
// stored; the image is rendered on demand from the encoded public link.
func (s *MemorialService) QRCodeURL(publicURL string) string {
	memorialURL := s.publicBaseURL + "/memorial/" + publicURL
	return "https://api.qrserver.com/v1/create-qr-code/?size=500x500&data=" + url.QueryEscape(memorialURL)
}

// Publish creates a memorial from an approved request. The memorial insert
// and the request's status change commit together or not at all. A slug
// collision from a concurrent publish rolls the attempt back and retries
// with a freshly probed candidate.
func (s *MemorialService) Publish(ctx context.Context, in PublishInput) (*models.Memorial, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	req, err := s.requests.GetByID(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckTransition(req.RequestStatus, models.StatusPublished); err != nil {
		return nil, err
	}

	photos := in.Photos
	if photos == nil {
		photos = []string{}
	}

	for attempt := 1; attempt <= maxPublishAttempts; attempt++ {
		publicURL := in.PublicURL
		if publicURL == "" {
			publicURL, err = slug.PublicURL(ctx, s.memorials, in.FullName, emptyToNil(in.BirthDate))
			if err != nil {
				return nil, err
			}
		}

		m := &models.Memorial{
			ID:                 uuid.NewString(),
			RequestID:          &in.RequestID,
			FullName:           in.FullName,
			BirthDate:          emptyToNil(in.BirthDate),
			DeathDate:          emptyToNil(in.DeathDate),
			StoryText:          in.StoryText,
			Photos:             photos,
			VideoLink:          in.VideoLink,
			AudioNarrationLink: in.AudioNarrationLink,
			Latitude:           in.Latitude,
			Longitude:          in.Longitude,
			LocationVisibility: in.LocationVisibility,
			QRCodeURL:          s.QRCodeURL(publicURL),
			PublicURL:          publicURL,
			PublishedStatus:    true,
		}

		created, err := s.publishTx(ctx, m)
		if err == nil {
			return created, nil
		}
		if apperr.IsConflict(err) && in.PublicURL == "" {
			// Another publish won the slug between our lookup and insert.
			// The next probe will see the winner's row and step the counter.
			log.Printf("Slug %q taken concurrently, retrying (attempt %d)", publicURL, attempt)
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("%w: could not allocate a unique public URL for %q", apperr.ErrConflict, in.FullName)
}

func (s *MemorialService) publishTx(ctx context.Context, m *models.Memorial) (*models.Memorial, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin publish tx: %w", err)
	}

	// Ensure the transaction is rolled back unless committed.
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := s.memorials.InsertTx(ctx, tx, m); err != nil {
		return nil, err
	}
	if err := s.requests.MarkPublished(ctx, tx, *m.RequestID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit publish tx: %w", err)
	}
	committed = true

	return m, nil
}

// Update applies admin edits to an existing memorial.
func (s *MemorialService) Update(ctx context.Context, id string, u repository.MemorialUpdate) (*models.Memorial, error) {
	if u.LocationVisibility != nil && !models.ValidVisibility(*u.LocationVisibility) {
		return nil, fmt.Errorf("%w: location_visibility must be exact, approximate or hidden", apperr.ErrValidation)
	}
	return s.memorials.Update(ctx, id, u)
}

// SoftDelete retires a memorial from public view.
func (s *MemorialService) SoftDelete(ctx context.Context, id string) error {
	return s.memorials.SoftDelete(ctx, id)
}

// Get returns a published memorial by id.
func (s *MemorialService) Get(ctx context.Context, id string) (*models.Memorial, error) {
	return s.memorials.GetByID(ctx, id)
}

// GetBySlug returns a published memorial by its public URL slug. Serves
// both the by-url route and the /go?m=<slug> universal-link resolution.
func (s *MemorialService) GetBySlug(ctx context.Context, publicURL string) (*models.Memorial, error) {
	return s.memorials.GetBySlug(ctx, publicURL)
}

// MapList returns map-eligible memorials: published, visibility exact or
// approximate.
func (s *MemorialService) MapList(ctx context.Context) ([]models.MapMemorial, error) {
	return s.memorials.ListMap(ctx)
}

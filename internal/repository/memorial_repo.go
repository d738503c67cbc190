package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"memorial-platform/internal/apperr"
	"memorial-platform/internal/models"
)

// MemorialRepo persists published memorials. The public_url column carries a
// unique constraint; violations surface as apperr.ErrConflict so the publish
// workflow can retry with the next slug candidate.
type MemorialRepo struct {
	DB *sqlx.DB
}

func NewMemorialRepo(db *sqlx.DB) *MemorialRepo {
	return &MemorialRepo{DB: db}
}

const memorialColumns = `id, request_id, full_name, birth_date, death_date, story_text, photos,
	video_link, audio_narration_link, latitude, longitude, location_visibility,
	qr_code_url, public_url, published_status, created_at`

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// SlugExists reports whether any memorial, published or not, already owns
// the slug. Slugs are never reused, so soft-deleted memorials still count.
func (r *MemorialRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM memorials WHERE public_url = $1)`
	if err := r.DB.GetContext(ctx, &exists, query, slug); err != nil {
		return false, fmt.Errorf("check slug exists: %w", err)
	}
	return exists, nil
}

// InsertTx stores a new memorial inside the publish transaction.
func (r *MemorialRepo) InsertTx(ctx context.Context, tx *sqlx.Tx, m *models.Memorial) error {
	query := `
		INSERT INTO memorials
		  (id, request_id, full_name, birth_date, death_date, story_text, photos,
		   video_link, audio_narration_link, latitude, longitude, location_visibility,
		   qr_code_url, public_url, published_status)
		VALUES
		  ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at`

	row := tx.QueryRowxContext(ctx, query,
		m.ID, m.RequestID, m.FullName, m.BirthDate, m.DeathDate, m.StoryText, m.Photos,
		m.VideoLink, m.AudioNarrationLink, m.Latitude, m.Longitude, m.LocationVisibility,
		m.QRCodeURL, m.PublicURL, m.PublishedStatus,
	)
	if err := row.Scan(&m.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: public_url %q already taken", apperr.ErrConflict, m.PublicURL)
		}
		return fmt.Errorf("insert memorial: %w", err)
	}
	return nil
}

// GetByID fetches a published memorial. Unpublished rows behave as not
// found on this public read path.
func (r *MemorialRepo) GetByID(ctx context.Context, id string) (*models.Memorial, error) {
	var m models.Memorial
	query := `SELECT ` + memorialColumns + ` FROM memorials WHERE id = $1 AND published_status = true`
	if err := r.DB.GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: memorial %s", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get memorial: %w", err)
	}
	return &m, nil
}

// GetBySlug fetches a published memorial by its public URL slug.
func (r *MemorialRepo) GetBySlug(ctx context.Context, publicURL string) (*models.Memorial, error) {
	var m models.Memorial
	query := `SELECT ` + memorialColumns + ` FROM memorials WHERE public_url = $1 AND published_status = true`
	if err := r.DB.GetContext(ctx, &m, query, publicURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: memorial %q", apperr.ErrNotFound, publicURL)
		}
		return nil, fmt.Errorf("get memorial by slug: %w", err)
	}
	return &m, nil
}

// MemorialUpdate carries the optional field-level edits an admin may apply.
// Nil fields are left untouched.
type MemorialUpdate struct {
	FullName           *string
	BirthDate          *string
	DeathDate          *string
	StoryText          *string
	Photos             *models.StringList
	VideoLink          *string
	AudioNarrationLink *string
	Latitude           *float64
	Longitude          *float64
	LocationVisibility *string
	PublishedStatus    *bool
}

// Update applies field-level edits to an existing memorial and returns the
// updated row.
func (r *MemorialRepo) Update(ctx context.Context, id string, u MemorialUpdate) (*models.Memorial, error) {
	var m models.Memorial
	query := `
		UPDATE memorials
		SET full_name = COALESCE($1, full_name),
		    birth_date = COALESCE($2, birth_date),
		    death_date = COALESCE($3, death_date),
		    story_text = COALESCE($4, story_text),
		    photos = COALESCE($5, photos),
		    video_link = COALESCE($6, video_link),
		    audio_narration_link = COALESCE($7, audio_narration_link),
		    latitude = COALESCE($8, latitude),
		    longitude = COALESCE($9, longitude),
		    location_visibility = COALESCE($10, location_visibility),
		    published_status = COALESCE($11, published_status)
		WHERE id = $12
		RETURNING ` + memorialColumns

	err := r.DB.GetContext(ctx, &m, query,
		u.FullName, u.BirthDate, u.DeathDate, u.StoryText, u.Photos,
		u.VideoLink, u.AudioNarrationLink, u.Latitude, u.Longitude,
		u.LocationVisibility, u.PublishedStatus, id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: memorial %s", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("update memorial: %w", err)
	}
	return &m, nil
}

// SoftDelete retires a memorial from public view. The row is never removed;
// its slug stays reserved.
func (r *MemorialRepo) SoftDelete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE memorials SET published_status = false WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("soft delete memorial: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete memorial: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: memorial %s", apperr.ErrNotFound, id)
	}
	return nil
}

// ListMap returns the published memorials eligible for the public map:
// visibility exact or approximate, hidden rows excluded.
func (r *MemorialRepo) ListMap(ctx context.Context) ([]models.MapMemorial, error) {
	memorials := []models.MapMemorial{}
	query := `
		SELECT id, full_name, latitude, longitude, location_visibility, public_url
		FROM memorials
		WHERE published_status = true
		  AND location_visibility IN ($1, $2)
		ORDER BY created_at DESC`

	err := r.DB.SelectContext(ctx, &memorials, query, models.VisibilityExact, models.VisibilityApproximate)
	if err != nil {
		return nil, fmt.Errorf("list map memorials: %w", err)
	}
	return memorials, nil
}

package handlers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"memorial-platform/internal/apperr"
	"memorial-platform/internal/middleware"
	"memorial-platform/internal/models"
	"memorial-platform/internal/repository"
	"memorial-platform/internal/service"
)

const (
	testJwtSecret = "test-secret"
	testBaseURL   = "https://memorials.example.com"
)

// In-memory stores backing the handler tests.

type memRequests struct {
	rows map[string]*models.MemorialRequest
}

func newMemRequests() *memRequests {
	return &memRequests{rows: map[string]*models.MemorialRequest{}}
}

func (s *memRequests) Insert(_ context.Context, req *models.MemorialRequest) error {
	now := time.Now()
	req.CreatedAt, req.UpdatedAt = now, now
	s.rows[req.ID] = req
	return nil
}

func (s *memRequests) GetByID(_ context.Context, id string) (*models.MemorialRequest, error) {
	req, ok := s.rows[id]
	if !ok {
		return nil, fmt.Errorf("%w: memorial request %s", apperr.ErrNotFound, id)
	}
	copied := *req
	return &copied, nil
}

func (s *memRequests) List(_ context.Context, filter repository.ListFilter) ([]models.MemorialRequest, error) {
	out := []models.MemorialRequest{}
	for _, req := range s.rows {
		if filter.Status != nil && req.RequestStatus != *filter.Status {
			continue
		}
		if filter.DiscountRequested != nil && req.DiscountRequested != *filter.DiscountRequested {
			continue
		}
		out = append(out, *req)
	}
	return out, nil
}

func (s *memRequests) UpdateStatus(_ context.Context, id, status string, adminNotes *string, version int) (*models.MemorialRequest, error) {
	req, ok := s.rows[id]
	if !ok {
		return nil, fmt.Errorf("%w: memorial request %s", apperr.ErrNotFound, id)
	}
	if req.Version != version {
		return nil, fmt.Errorf("%w: memorial request %s was modified concurrently", apperr.ErrConflict, id)
	}
	req.RequestStatus = status
	if adminNotes != nil {
		req.AdminNotes = adminNotes
	}
	req.Version++
	req.UpdatedAt = time.Now()
	copied := *req
	return &copied, nil
}

func (s *memRequests) RecordPayment(_ context.Context, id, paymentRef, paymentStatus, requestStatus string) (*models.MemorialRequest, error) {
	req, ok := s.rows[id]
	if !ok {
		return nil, fmt.Errorf("%w: memorial request %s", apperr.ErrNotFound, id)
	}
	req.PaymentRef = &paymentRef
	req.PaymentStatus = paymentStatus
	req.RequestStatus = requestStatus
	copied := *req
	return &copied, nil
}

func (s *memRequests) MarkPublished(_ context.Context, _ *sqlx.Tx, id string) error {
	req, ok := s.rows[id]
	if !ok {
		return fmt.Errorf("%w: memorial request %s", apperr.ErrNotFound, id)
	}
	req.RequestStatus = models.StatusPublished
	return nil
}

type memMemorials struct {
	rows   map[string]*models.Memorial
	bySlug map[string]*models.Memorial
}

func newMemMemorials() *memMemorials {
	return &memMemorials{rows: map[string]*models.Memorial{}, bySlug: map[string]*models.Memorial{}}
}

func (s *memMemorials) SlugExists(_ context.Context, slug string) (bool, error) {
	_, ok := s.bySlug[slug]
	return ok, nil
}

func (s *memMemorials) InsertTx(_ context.Context, _ *sqlx.Tx, m *models.Memorial) error {
	if _, taken := s.bySlug[m.PublicURL]; taken {
		return fmt.Errorf("%w: public_url %q already taken", apperr.ErrConflict, m.PublicURL)
	}
	m.CreatedAt = time.Now()
	s.rows[m.ID] = m
	s.bySlug[m.PublicURL] = m
	return nil
}

func (s *memMemorials) GetByID(_ context.Context, id string) (*models.Memorial, error) {
	m, ok := s.rows[id]
	if !ok || !m.PublishedStatus {
		return nil, fmt.Errorf("%w: memorial %s", apperr.ErrNotFound, id)
	}
	return m, nil
}

func (s *memMemorials) GetBySlug(_ context.Context, slug string) (*models.Memorial, error) {
	m, ok := s.bySlug[slug]
	if !ok || !m.PublishedStatus {
		return nil, fmt.Errorf("%w: memorial %q", apperr.ErrNotFound, slug)
	}
	return m, nil
}

func (s *memMemorials) Update(_ context.Context, id string, u repository.MemorialUpdate) (*models.Memorial, error) {
	m, ok := s.rows[id]
	if !ok {
		return nil, fmt.Errorf("%w: memorial %s", apperr.ErrNotFound, id)
	}
	if u.FullName != nil {
		m.FullName = *u.FullName
	}
	if u.StoryText != nil {
		m.StoryText = *u.StoryText
	}
	if u.LocationVisibility != nil {
		m.LocationVisibility = *u.LocationVisibility
	}
	if u.PublishedStatus != nil {
		m.PublishedStatus = *u.PublishedStatus
	}
	return m, nil
}

func (s *memMemorials) SoftDelete(_ context.Context, id string) error {
	m, ok := s.rows[id]
	if !ok {
		return fmt.Errorf("%w: memorial %s", apperr.ErrNotFound, id)
	}
	m.PublishedStatus = false
	return nil
}

func (s *memMemorials) ListMap(_ context.Context) ([]models.MapMemorial, error) {
	out := []models.MapMemorial{}
	for _, m := range s.rows {
		if !m.PublishedStatus {
			continue
		}
		if m.LocationVisibility != models.VisibilityExact && m.LocationVisibility != models.VisibilityApproximate {
			continue
		}
		out = append(out, models.MapMemorial{
			ID:                 m.ID,
			FullName:           m.FullName,
			Latitude:           m.Latitude,
			Longitude:          m.Longitude,
			LocationVisibility: m.LocationVisibility,
			PublicURL:          m.PublicURL,
		})
	}
	return out, nil
}

type noopNotifier struct{}

func (noopNotifier) RequestCreated(*models.MemorialRequest) error { return nil }

// newTestRouter wires the route surface exactly as cmd/api/main.go does,
// backed by in-memory stores and a sqlmock transaction source.
func newTestRouter(t *testing.T) (*gin.Engine, *memRequests, *memMemorials, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	db := sqlx.NewDb(mockDB, "sqlmock")

	requests := newMemRequests()
	memorials := newMemMemorials()

	requestService := service.NewRequestService(requests, noopNotifier{})
	memorialService := service.NewMemorialService(db, memorials, requests, testBaseURL)

	requestHandler := NewRequestHandler(requestService)
	memorialHandler := NewMemorialHandler(memorialService)

	r := gin.New()
	api := r.Group("/api")
	{
		api.POST("/memorial-requests", requestHandler.Create)
		api.POST("/memorial-requests/:id/payment", requestHandler.RecordPayment)

		api.GET("/memorials/map", memorialHandler.MapList)
		api.GET("/memorials/resolve/:slug", memorialHandler.Resolve)
		api.GET("/memorials/by-url/:publicUrl", memorialHandler.GetBySlug)
		api.GET("/memorials/:id", memorialHandler.GetByID)

		admin := api.Group("/admin")
		admin.Use(middleware.RequireAdmin(testJwtSecret))
		{
			admin.GET("/memorial-requests", requestHandler.List)
			admin.PUT("/memorial-requests/:id/status", requestHandler.UpdateStatus)
			admin.POST("/memorials", memorialHandler.Publish)
			admin.PUT("/memorials/:id", memorialHandler.Update)
			admin.DELETE("/memorials/:id", memorialHandler.Delete)
		}
	}

	return r, requests, memorials, mock
}

func adminToken(t *testing.T) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": 1,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJwtSecret))
	require.NoError(t, err)
	return token
}

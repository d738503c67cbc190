package service

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"memorial-platform/internal/apperr"
	"memorial-platform/internal/models"
	"memorial-platform/internal/repository"
)

// Hand-rolled fakes for the store interfaces.

type fakeRequestStore struct {
	requests map[string]*models.MemorialRequest

	inserted       []*models.MemorialRequest
	insertErr      error
	updateCalls    []updateCall
	markPublished  []string
	markPubErr     error
	recordedStatus string
}

type updateCall struct {
	id      string
	status  string
	version int
}

func newFakeRequestStore() *fakeRequestStore {
	return &fakeRequestStore{requests: map[string]*models.MemorialRequest{}}
}

func (f *fakeRequestStore) Insert(_ context.Context, req *models.MemorialRequest) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, req)
	f.requests[req.ID] = req
	return nil
}

func (f *fakeRequestStore) GetByID(_ context.Context, id string) (*models.MemorialRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return nil, fmt.Errorf("%w: memorial request %s", apperr.ErrNotFound, id)
	}
	copied := *req
	return &copied, nil
}

func (f *fakeRequestStore) List(_ context.Context, filter repository.ListFilter) ([]models.MemorialRequest, error) {
	out := []models.MemorialRequest{}
	for _, req := range f.requests {
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

func (f *fakeRequestStore) UpdateStatus(_ context.Context, id, status string, adminNotes *string, version int) (*models.MemorialRequest, error) {
	f.updateCalls = append(f.updateCalls, updateCall{id: id, status: status, version: version})
	req, ok := f.requests[id]
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
	copied := *req
	return &copied, nil
}

func (f *fakeRequestStore) RecordPayment(_ context.Context, id, paymentRef, paymentStatus, requestStatus string) (*models.MemorialRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return nil, fmt.Errorf("%w: memorial request %s", apperr.ErrNotFound, id)
	}
	req.PaymentRef = &paymentRef
	req.PaymentStatus = paymentStatus
	req.RequestStatus = requestStatus
	f.recordedStatus = requestStatus
	copied := *req
	return &copied, nil
}

func (f *fakeRequestStore) MarkPublished(_ context.Context, _ *sqlx.Tx, id string) error {
	if f.markPubErr != nil {
		return f.markPubErr
	}
	f.markPublished = append(f.markPublished, id)
	if req, ok := f.requests[id]; ok {
		req.RequestStatus = models.StatusPublished
	}
	return nil
}

type fakeNotifier struct {
	notified chan *models.MemorialRequest
	err      error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{notified: make(chan *models.MemorialRequest, 1)}
}

func (f *fakeNotifier) RequestCreated(req *models.MemorialRequest) error {
	f.notified <- req
	return f.err
}

type fakeMemorialStore struct {
	taken      map[string]bool
	memorials  map[string]*models.Memorial
	bySlug     map[string]*models.Memorial
	insertErrs []error // consumed per InsertTx call; nil means success
	inserted   []*models.Memorial
	deleted    []string
	mapRows    []models.MapMemorial
}

func newFakeMemorialStore() *fakeMemorialStore {
	return &fakeMemorialStore{
		taken:     map[string]bool{},
		memorials: map[string]*models.Memorial{},
		bySlug:    map[string]*models.Memorial{},
	}
}

func (f *fakeMemorialStore) SlugExists(_ context.Context, slug string) (bool, error) {
	return f.taken[slug], nil
}

func (f *fakeMemorialStore) InsertTx(_ context.Context, _ *sqlx.Tx, m *models.Memorial) error {
	if len(f.insertErrs) > 0 {
		err := f.insertErrs[0]
		f.insertErrs = f.insertErrs[1:]
		if err != nil {
			// Model the concurrent winner: its row now owns the slug.
			f.taken[m.PublicURL] = true
			return err
		}
	}
	if f.taken[m.PublicURL] {
		return fmt.Errorf("%w: public_url %q already taken", apperr.ErrConflict, m.PublicURL)
	}
	f.taken[m.PublicURL] = true
	f.inserted = append(f.inserted, m)
	f.memorials[m.ID] = m
	f.bySlug[m.PublicURL] = m
	return nil
}

func (f *fakeMemorialStore) GetByID(_ context.Context, id string) (*models.Memorial, error) {
	m, ok := f.memorials[id]
	if !ok || !m.PublishedStatus {
		return nil, fmt.Errorf("%w: memorial %s", apperr.ErrNotFound, id)
	}
	return m, nil
}

func (f *fakeMemorialStore) GetBySlug(_ context.Context, publicURL string) (*models.Memorial, error) {
	m, ok := f.bySlug[publicURL]
	if !ok || !m.PublishedStatus {
		return nil, fmt.Errorf("%w: memorial %q", apperr.ErrNotFound, publicURL)
	}
	return m, nil
}

func (f *fakeMemorialStore) Update(_ context.Context, id string, u repository.MemorialUpdate) (*models.Memorial, error) {
	m, ok := f.memorials[id]
	if !ok {
		return nil, fmt.Errorf("%w: memorial %s", apperr.ErrNotFound, id)
	}
	if u.FullName != nil {
		m.FullName = *u.FullName
	}
	if u.LocationVisibility != nil {
		m.LocationVisibility = *u.LocationVisibility
	}
	if u.PublishedStatus != nil {
		m.PublishedStatus = *u.PublishedStatus
	}
	return m, nil
}

func (f *fakeMemorialStore) SoftDelete(_ context.Context, id string) error {
	m, ok := f.memorials[id]
	if !ok {
		return fmt.Errorf("%w: memorial %s", apperr.ErrNotFound, id)
	}
	m.PublishedStatus = false
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeMemorialStore) ListMap(_ context.Context) ([]models.MapMemorial, error) {
	return f.mapRows, nil
}

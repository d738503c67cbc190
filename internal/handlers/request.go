package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"memorial-platform/internal/repository"
	"memorial-platform/internal/service"
)

// RequestHandler serves the memorial-request surface: public submission and
// payment callback, admin triage and status transitions.
type RequestHandler struct {
	Requests *service.RequestService
}

func NewRequestHandler(requests *service.RequestService) *RequestHandler {
	return &RequestHandler{Requests: requests}
}

type CreateRequestBody struct {
	RequesterName            string   `json:"requester_name" binding:"required"`
	RequesterEmail           string   `json:"requester_email" binding:"required"`
	LovedOneName             string   `json:"loved_one_name" binding:"required"`
	BirthDate                *string  `json:"birth_date"`
	DeathDate                *string  `json:"death_date"`
	StoryNotes               string   `json:"story_notes" binding:"required"`
	MediaUploads             []string `json:"media_uploads"`
	LocationInfo             *string  `json:"location_info"`
	Latitude                 *float64 `json:"latitude"`
	Longitude                *float64 `json:"longitude"`
	Country                  *string  `json:"country"`
	TierSelected             string   `json:"tier_selected" binding:"required"`
	PreservationAddon        bool     `json:"preservation_addon"`
	PreservationBillingCycle *string  `json:"preservation_billing_cycle"`
	DiscountRequested        bool     `json:"discount_requested"`
	DiscountType             *string  `json:"discount_type"`
	DocumentationUpload      *string  `json:"documentation_upload"`
}

// Create handles POST /api/memorial-requests.
func (h *RequestHandler) Create(c *gin.Context) {
	var body CreateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	req, err := h.Requests.Create(c.Request.Context(), service.CreateRequestInput{
		RequesterName:            body.RequesterName,
		RequesterEmail:           body.RequesterEmail,
		LovedOneName:             body.LovedOneName,
		BirthDate:                body.BirthDate,
		DeathDate:                body.DeathDate,
		StoryNotes:               body.StoryNotes,
		MediaUploads:             body.MediaUploads,
		LocationInfo:             body.LocationInfo,
		Latitude:                 body.Latitude,
		Longitude:                body.Longitude,
		Country:                  body.Country,
		TierSelected:             body.TierSelected,
		PreservationAddon:        body.PreservationAddon,
		PreservationBillingCycle: body.PreservationBillingCycle,
		DiscountRequested:        body.DiscountRequested,
		DiscountType:             body.DiscountType,
		DocumentationUpload:      body.DocumentationUpload,
	})
	if err != nil {
		log.Println("Failed to create memorial request:", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":                   req.ID,
		"payment_amount_cents": req.PaymentAmountCents,
		"request_status":       req.RequestStatus,
		"created_at":           req.CreatedAt,
	})
}

type PaymentResultBody struct {
	PaymentRef    string `json:"payment_ref" binding:"required"`
	PaymentStatus string `json:"payment_status" binding:"required"`
}

// RecordPayment handles POST /api/memorial-requests/:id/payment. This is the
// payment-provider callback; no admin session is required.
func (h *RequestHandler) RecordPayment(c *gin.Context) {
	id := c.Param("id")

	var body PaymentResultBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	req, err := h.Requests.RecordPayment(c.Request.Context(), id, body.PaymentRef, body.PaymentStatus)
	if err != nil {
		log.Println("Failed to record payment for request", id+":", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"request_status": req.RequestStatus,
	})
}

// List handles GET /api/admin/memorial-requests with optional status and
// discount_requested filters.
func (h *RequestHandler) List(c *gin.Context) {
	filter := repository.ListFilter{}

	if status := c.Query("status"); status != "" {
		filter.Status = &status
	}
	if discount := c.Query("discount_requested"); discount != "" {
		parsed, err := strconv.ParseBool(discount)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "discount_requested must be true or false"})
			return
		}
		filter.DiscountRequested = &parsed
	}

	requests, err := h.Requests.List(c.Request.Context(), filter)
	if err != nil {
		log.Println("Failed to list memorial requests:", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, requests)
}

type UpdateStatusBody struct {
	RequestStatus string  `json:"request_status" binding:"required"`
	AdminNotes    *string `json:"admin_notes"`
}

// UpdateStatus handles PUT /api/admin/memorial-requests/:id/status.
func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")

	var body UpdateStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	req, err := h.Requests.UpdateStatus(c.Request.Context(), id, body.RequestStatus, body.AdminNotes)
	if err != nil {
		log.Println("Failed to update status for request", id+":", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, req)
}

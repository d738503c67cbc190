package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"memorial-platform/internal/models"
	"memorial-platform/internal/repository"
	"memorial-platform/internal/service"
)

// MemorialHandler serves publication and the public memorial reads.
type MemorialHandler struct {
	Memorials *service.MemorialService
}

func NewMemorialHandler(memorials *service.MemorialService) *MemorialHandler {
	return &MemorialHandler{Memorials: memorials}
}

type PublishBody struct {
	RequestID          string   `json:"request_id" binding:"required"`
	FullName           string   `json:"full_name" binding:"required"`
	BirthDate          *string  `json:"birth_date"`
	DeathDate          *string  `json:"death_date"`
	StoryText          string   `json:"story_text" binding:"required"`
	Photos             []string `json:"photos"`
	VideoLink          *string  `json:"video_link"`
	AudioNarrationLink *string  `json:"audio_narration_link"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
	LocationVisibility string   `json:"location_visibility" binding:"required"`
	PublicURL          string   `json:"public_url"`
}

// Publish handles POST /api/admin/memorials: create and publish a memorial
// from an approved request.
func (h *MemorialHandler) Publish(c *gin.Context) {
	var body PublishBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	memorial, err := h.Memorials.Publish(c.Request.Context(), service.PublishInput{
		RequestID:          body.RequestID,
		FullName:           body.FullName,
		BirthDate:          body.BirthDate,
		DeathDate:          body.DeathDate,
		StoryText:          body.StoryText,
		Photos:             body.Photos,
		VideoLink:          body.VideoLink,
		AudioNarrationLink: body.AudioNarrationLink,
		Latitude:           body.Latitude,
		Longitude:          body.Longitude,
		LocationVisibility: body.LocationVisibility,
		PublicURL:          body.PublicURL,
	})
	if err != nil {
		log.Println("Failed to publish memorial from request", body.RequestID+":", err)
		writeError(c, err)
		return
	}

	log.Printf("Published memorial %s at /%s from request %s", memorial.ID, memorial.PublicURL, body.RequestID)
	c.JSON(http.StatusCreated, memorial)
}

type UpdateMemorialBody struct {
	FullName           *string   `json:"full_name"`
	BirthDate          *string   `json:"birth_date"`
	DeathDate          *string   `json:"death_date"`
	StoryText          *string   `json:"story_text"`
	Photos             *[]string `json:"photos"`
	VideoLink          *string   `json:"video_link"`
	AudioNarrationLink *string   `json:"audio_narration_link"`
	Latitude           *float64  `json:"latitude"`
	Longitude          *float64  `json:"longitude"`
	LocationVisibility *string   `json:"location_visibility"`
	PublishedStatus    *bool     `json:"published_status"`
}

// Update handles PUT /api/admin/memorials/:id.
func (h *MemorialHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var body UpdateMemorialBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	update := repository.MemorialUpdate{
		FullName:           body.FullName,
		BirthDate:          body.BirthDate,
		DeathDate:          body.DeathDate,
		StoryText:          body.StoryText,
		VideoLink:          body.VideoLink,
		AudioNarrationLink: body.AudioNarrationLink,
		Latitude:           body.Latitude,
		Longitude:          body.Longitude,
		LocationVisibility: body.LocationVisibility,
		PublishedStatus:    body.PublishedStatus,
	}
	if body.Photos != nil {
		photos := models.StringList(*body.Photos)
		update.Photos = &photos
	}

	memorial, err := h.Memorials.Update(c.Request.Context(), id, update)
	if err != nil {
		log.Println("Failed to update memorial", id+":", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, memorial)
}

// Delete handles DELETE /api/admin/memorials/:id. Delete is always soft.
func (h *MemorialHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.Memorials.SoftDelete(c.Request.Context(), id); err != nil {
		log.Println("Failed to delete memorial", id+":", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetByID handles GET /api/memorials/:id.
func (h *MemorialHandler) GetByID(c *gin.Context) {
	memorial, err := h.Memorials.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, memorial)
}

// GetBySlug handles GET /api/memorials/by-url/:publicUrl.
func (h *MemorialHandler) GetBySlug(c *gin.Context) {
	memorial, err := h.Memorials.GetBySlug(c.Request.Context(), c.Param("publicUrl"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, memorial)
}

// Resolve handles GET /api/memorials/resolve/:slug, backing the universal
// /go?m=<slug> landing link used by QR codes.
func (h *MemorialHandler) Resolve(c *gin.Context) {
	memorial, err := h.Memorials.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, memorial)
}

// MapList handles GET /api/memorials/map.
func (h *MemorialHandler) MapList(c *gin.Context) {
	memorials, err := h.Memorials.MapList(c.Request.Context())
	if err != nil {
		log.Println("Failed to list map memorials:", err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, memorials)
}

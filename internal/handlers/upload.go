package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"memorial-platform/internal/storage"
)

// Uploads are capped well above what a phone camera produces.
const maxUploadBytes = 50 << 20

// UploadHandler accepts media files ahead of request submission and returns
// the signed URL the client then includes in media_uploads.
type UploadHandler struct {
	Store *storage.MediaStore
}

func NewUploadHandler(store *storage.MediaStore) *UploadHandler {
	return &UploadHandler{Store: store}
}

// Media handles POST /api/upload/media (multipart, field "file").
func (h *UploadHandler) Media(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Println("Failed to open uploaded file:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Println("Failed to read uploaded file:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("uploads/memorials/%d-%s", time.Now().UnixMilli(), fileHeader.Filename)

	url, err := h.Store.Upload(key, data, contentType)
	if err != nil {
		log.Println("Failed to upload media file:", err)
		writeError(c, err)
		return
	}

	log.Printf("Uploaded media file %s (%d bytes)", key, len(data))
	c.JSON(http.StatusOK, gin.H{
		"url":      url,
		"filename": fileHeader.Filename,
	})
}

// Package storage wraps the Supabase storage bucket that holds memorial
// media. Clients upload before submitting a request; the request then
// carries the returned URLs.
package storage

import (
	"bytes"
	"fmt"

	storage_go "github.com/supabase-community/storage-go"

	"memorial-platform/internal/apperr"
)

// Signed URLs stay valid for one year; memorial pages are long-lived.
const signedURLExpirySeconds = 60 * 60 * 24 * 365

// MediaStore uploads media files and hands back signed URLs.
type MediaStore struct {
	client *storage_go.Client
	bucket string
}

func NewMediaStore(projectURL, serviceKey, bucket string) *MediaStore {
	client := storage_go.NewClient(projectURL+"/storage/v1", serviceKey, nil)
	return &MediaStore{client: client, bucket: bucket}
}

// Upload stores the file under key and returns a signed URL for it.
func (s *MediaStore) Upload(key string, data []byte, contentType string) (string, error) {
	_, err := s.client.UploadFile(s.bucket, key, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("%w: upload %s: %v", apperr.ErrUpstream, key, err)
	}

	signed, err := s.client.CreateSignedUrl(s.bucket, key, signedURLExpirySeconds)
	if err != nil {
		return "", fmt.Errorf("%w: sign %s: %v", apperr.ErrUpstream, key, err)
	}
	return signed.SignedURL, nil
}

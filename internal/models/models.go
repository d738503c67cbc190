package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// We use 'db' tags for sqlx to automatically map
// the database column names (snake_case) to our Go fields (CamelCase).

// Tier identifiers for the three fixed-price service levels.
const (
	TierMarked     = "tier_1_marked"
	TierRemembered = "tier_2_remembered"
	TierEnduring   = "tier_3_enduring"
)

// Billing cycles for the preservation add-on.
const (
	CycleMonthly = "monthly"
	CycleYearly  = "yearly"
)

// Request statuses.
const (
	StatusSubmitted   = "submitted"
	StatusUnderReview = "under_review"
	StatusApproved    = "approved"
	StatusPublished   = "published"
	StatusRejected    = "rejected"
)

// Payment statuses.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Location visibility for the public map.
const (
	VisibilityExact       = "exact"
	VisibilityApproximate = "approximate"
	VisibilityHidden      = "hidden"
)

// StringList maps a jsonb array column to a Go slice.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = StringList{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
	return json.Unmarshal(data, l)
}

// MemorialRequest is a family's submission moving through the admin workflow.
type MemorialRequest struct {
	ID                       string     `db:"id" json:"id"`
	RequesterName            string     `db:"requester_name" json:"requester_name"`
	RequesterEmail           string     `db:"requester_email" json:"requester_email"`
	LovedOneName             string     `db:"loved_one_name" json:"loved_one_name"`
	BirthDate                *string    `db:"birth_date" json:"birth_date"`
	DeathDate                *string    `db:"death_date" json:"death_date"`
	StoryNotes               string     `db:"story_notes" json:"story_notes"`
	MediaUploads             StringList `db:"media_uploads" json:"media_uploads"`
	LocationInfo             *string    `db:"location_info" json:"location_info"`
	Latitude                 *float64   `db:"latitude" json:"latitude"`
	Longitude                *float64   `db:"longitude" json:"longitude"`
	Country                  *string    `db:"country" json:"country"`
	TierSelected             string     `db:"tier_selected" json:"tier_selected"`
	PreservationAddon        bool       `db:"preservation_addon" json:"preservation_addon"`
	PreservationBillingCycle *string    `db:"preservation_billing_cycle" json:"preservation_billing_cycle"`
	DiscountRequested        bool       `db:"discount_requested" json:"discount_requested"`
	DiscountType             *string    `db:"discount_type" json:"discount_type"`
	DocumentationUpload      *string    `db:"documentation_upload" json:"documentation_upload"`
	PaymentAmountCents       int        `db:"payment_amount_cents" json:"payment_amount_cents"`
	PaymentStatus            string     `db:"payment_status" json:"payment_status"`
	PaymentRef               *string    `db:"payment_ref" json:"payment_ref"`
	RequestStatus            string     `db:"request_status" json:"request_status"`
	AdminNotes               *string    `db:"admin_notes" json:"admin_notes"`
	Version                  int        `db:"version" json:"version"`
	CreatedAt                time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt                time.Time  `db:"updated_at" json:"updated_at"`
}

// Memorial is a published, publicly addressable memorial page.
type Memorial struct {
	ID                 string     `db:"id" json:"id"`
	RequestID          *string    `db:"request_id" json:"request_id"`
	FullName           string     `db:"full_name" json:"full_name"`
	BirthDate          *string    `db:"birth_date" json:"birth_date"`
	DeathDate          *string    `db:"death_date" json:"death_date"`
	StoryText          string     `db:"story_text" json:"story_text"`
	Photos             StringList `db:"photos" json:"photos"`
	VideoLink          *string    `db:"video_link" json:"video_link"`
	AudioNarrationLink *string    `db:"audio_narration_link" json:"audio_narration_link"`
	Latitude           *float64   `db:"latitude" json:"latitude"`
	Longitude          *float64   `db:"longitude" json:"longitude"`
	LocationVisibility string     `db:"location_visibility" json:"location_visibility"`
	QRCodeURL          string     `db:"qr_code_url" json:"qr_code_url"`
	PublicURL          string     `db:"public_url" json:"public_url"`
	PublishedStatus    bool       `db:"published_status" json:"published_status"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
}

// MapMemorial is the trimmed projection served to the public map view.
type MapMemorial struct {
	ID                 string   `db:"id" json:"id"`
	FullName           string   `db:"full_name" json:"full_name"`
	Latitude           *float64 `db:"latitude" json:"latitude"`
	Longitude          *float64 `db:"longitude" json:"longitude"`
	LocationVisibility string   `db:"location_visibility" json:"location_visibility"`
	PublicURL          string   `db:"public_url" json:"public_url"`
}

// Admin represents an admin account's authentication details.
type Admin struct {
	ID           int       `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// ValidTier reports whether t names one of the three service tiers.
func ValidTier(t string) bool {
	return t == TierMarked || t == TierRemembered || t == TierEnduring
}

// ValidVisibility reports whether v is a recognized map visibility value.
func ValidVisibility(v string) bool {
	return v == VisibilityExact || v == VisibilityApproximate || v == VisibilityHidden
}

package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultSeverityScore is assigned to reports whose severity has not been
// assessed yet. Matches the column default in the reports table.
const DefaultSeverityScore = 0.5

// Hazard categories are open strings; these are the well-known values.
const (
	HazardFlood            = "flood"
	HazardInfrastructure   = "infrastructure"
	HazardWeather          = "weather"
	HazardOther            = "other"
	HazardSocialMediaAlert = "social_media_alert"
)

// Report provenance values.
const (
	SourceCitizenApp        = "citizen_app"
	SourceTwitter           = "twitter"
	SourceTwitterSimulation = "twitter_simulation"
)

// HazardReport is the durable report record. The id is assigned by the store
// at insert time and the trust score is always the aggregator's output; neither
// is ever client-supplied.
type HazardReport struct {
	ID            int64     `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	Description   string    `json:"description" db:"description"`
	HazardType    string    `json:"hazard_type" db:"hazard_type"`
	SeverityScore float64   `json:"severity_score" db:"severity_score"`
	TrustScore    float64   `json:"trust_score" db:"trust_score"`
	Latitude      float64   `json:"latitude" db:"latitude"`
	Longitude     float64   `json:"longitude" db:"longitude"`
	Location      string    `json:"location" db:"location"`
	Address       string    `json:"address" db:"address"`
	ReporterID    string    `json:"reporter_id,omitempty" db:"reporter_id"`
	ReportSource  string    `json:"report_source" db:"report_source"`
	IsVerified    bool      `json:"is_verified" db:"is_verified"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// ReportDraft carries everything needed for an insert except the fields the
// store assigns (id, timestamps, geometry).
type ReportDraft struct {
	Title         string
	Description   string
	HazardType    string
	SeverityScore float64
	TrustScore    float64
	Latitude      float64
	Longitude     float64
	Address       string
	ReporterID    string
	ReportSource  string
}

// SocialMediaPost is the auxiliary record of an ingested external post. It is
// decoupled from HazardReport; social-sourced reports are ordinary reports
// tagged with a provenance value.
type SocialMediaPost struct {
	ID                string    `json:"id" db:"id"`
	Platform          string    `json:"platform" db:"platform"`
	PostID            string    `json:"post_id" db:"post_id"`
	Content           string    `json:"content" db:"content"`
	Author            string    `json:"author" db:"author"`
	SentimentScore    float64   `json:"sentiment_score" db:"sentiment_score"`
	HazardKeywords    string    `json:"hazard_keywords" db:"hazard_keywords"`
	LocationExtracted string    `json:"location_extracted" db:"location_extracted"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// NewSocialMediaPost creates a post record with a generated id.
func NewSocialMediaPost(platform, postID, content, author string) *SocialMediaPost {
	return &SocialMediaPost{
		ID:        uuid.New().String(),
		Platform:  platform,
		PostID:    postID,
		Content:   content,
		Author:    author,
		CreatedAt: time.Now(),
	}
}

// PointWKT derives the stored point geometry from a coordinate pair. WKT
// points are (lon lat) ordered.
func PointWKT(longitude, latitude float64) string {
	return fmt.Sprintf("POINT(%v %v)", longitude, latitude)
}

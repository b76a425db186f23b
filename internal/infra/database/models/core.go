package models

import (
	"time"

	"github.com/lib/pq"
)

type Report struct {
	ID          string `json:"id" gorm:"primaryKey;type:text"`
	Title       string `json:"title" gorm:"type:text;not null"`
	Description string `json:"description" gorm:"type:text"`
	Category    string `json:"category" gorm:"type:text;index"`
	Status      string `json:"status" gorm:"type:text;index"`

	LocationName string   `json:"location_name" gorm:"type:text"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`

	Language       string         `json:"language" gorm:"type:text"`
	Transcript     string         `json:"transcript" gorm:"type:text"`
	TranslatedText string         `json:"translated_text" gorm:"type:text"`
	PhotoURLs      pq.StringArray `json:"photo_urls" gorm:"type:text[]"`
	AudioURLs      pq.StringArray `json:"audio_urls" gorm:"type:text[]"`

	// VoteCount is only ever mutated by the vote ledger, via an
	// in-database increment.
	VoteCount     int    `json:"vote_count" gorm:"not null;default:0"`
	IntegrityHash string `json:"integrity_hash" gorm:"->;<-:create;type:text"`

	// The four override columns move together in a single UPDATE; no
	// other writer touches them.
	SeverityOverride *string    `json:"severity_override" gorm:"type:text"`
	OverrideReason   *string    `json:"override_reason" gorm:"type:text"`
	OverrideBy       *string    `json:"override_by" gorm:"type:text"`
	OverrideAt       *time.Time `json:"override_at"`

	CreatedAt  time.Time  `json:"created_at" gorm:"->;<-:create;not null"`
	ResolvedAt *time.Time `json:"resolved_at"`
	ResolvedBy *string    `json:"resolved_by" gorm:"type:text"`
}

// Vote rows are immutable. The composite primary key is the uniqueness
// invariant: at most one vote per (report, fingerprint) pair, enforced
// by the store, not by convention.
type Vote struct {
	ReportID         string    `json:"report_id" gorm:"primaryKey;type:text"`
	Report           Report    `json:"-" gorm:"foreignKey:ReportID;references:ID;constraint:OnDelete:CASCADE;"`
	VoterFingerprint string    `json:"voter_fingerprint" gorm:"primaryKey;type:text"`
	IntegrityHash    string    `json:"integrity_hash" gorm:"->;<-:create;type:text;not null"`
	CreatedAt        time.Time `json:"created_at" gorm:"->;<-:create;not null"`
}

type Administrator struct {
	ID           string    `json:"id" gorm:"primaryKey;type:text"`
	Username     string    `json:"username" gorm:"type:text;uniqueIndex;not null"`
	DisplayName  string    `json:"display_name" gorm:"type:text"`
	PasswordHash string    `json:"-" gorm:"type:text;not null"`
	Role         string    `json:"role" gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"->;<-:create;not null"`
}

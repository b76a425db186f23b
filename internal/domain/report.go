package domain

import (
	"time"

	"github.com/opencivic/civicpulse"
)

// Report is the domain-level view of a submitted community problem.
// Vote count and the override fields have exactly one writer each: the
// vote ledger owns VoteCount, the override controller owns the four
// Override* fields.
type Report struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Category    civicpulse.Category  `json:"category"`
	Status      civicpulse.Status    `json:"status"`

	LocationName string   `json:"locationName"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`

	Language       string   `json:"language,omitempty"`
	Transcript     string   `json:"transcript,omitempty"`
	TranslatedText string   `json:"translatedText,omitempty"`
	PhotoURLs      []string `json:"photoUrls,omitempty"`
	AudioURLs      []string `json:"audioUrls,omitempty"`

	VoteCount     int    `json:"voteCount"`
	IntegrityHash string `json:"integrityHash"`

	SeverityOverride *civicpulse.SeverityLevel `json:"severityOverride,omitempty"`
	OverrideReason   *string                   `json:"overrideReason,omitempty"`
	OverrideBy       *string                   `json:"overrideBy,omitempty"`
	OverrideAt       *time.Time                `json:"overrideAt,omitempty"`

	CreatedAt  time.Time  `json:"createdAt"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
	ResolvedBy *string    `json:"resolvedBy,omitempty"`
}

// Override returns the active severity override, or nil when severity
// derives from the vote count.
func (r Report) Override() *civicpulse.Override {
	if r.SeverityOverride == nil {
		return nil
	}
	ov := civicpulse.Override{
		Level:  *r.SeverityOverride,
		Reason: r.OverrideReason,
	}
	if r.OverrideBy != nil {
		ov.By = *r.OverrideBy
	}
	if r.OverrideAt != nil {
		ov.At = *r.OverrideAt
	}
	return &ov
}

// Vote is one fingerprint's upvote on one report. Immutable once
// created; at most one exists per (report, fingerprint) pair.
type Vote struct {
	ReportID         string    `json:"reportId"`
	VoterFingerprint string    `json:"voterFingerprint"`
	IntegrityHash    string    `json:"integrityHash"`
	CreatedAt        time.Time `json:"createdAt"`
}

// VoteReceipt is returned for an accepted vote.
type VoteReceipt struct {
	ReportID      string `json:"reportId"`
	IntegrityHash string `json:"integrityHash"`
	NewVoteCount  int    `json:"newVoteCount"`
}

// VoteEvent is published after each accepted vote for realtime feeds.
type VoteEvent struct {
	ReportID  string                  `json:"reportId"`
	VoteCount int                     `json:"voteCount"`
	Severity  civicpulse.SeverityInfo `json:"severity"`
}

// Administrator is the authenticated actor record behind admin
// mutations.
type Administrator struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"displayName"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ReportFilter narrows and orders report listings.
type ReportFilter struct {
	Category string
	Status   string
	Search   string
	SortBy   string // "recent" (default) or "votes"
	Limit    int
}

// Stats is the public counters panel.
type Stats struct {
	TotalReports     int64 `json:"totalReports"`
	ResolvedIssues   int64 `json:"resolvedIssues"`
	TotalVotes       int64 `json:"totalVotes"`
	ActiveCategories int64 `json:"activeCategories"`
}

// AdminStats is the triage dashboard summary.
type AdminStats struct {
	TotalReports    int64 `json:"totalReports"`
	OpenReports     int64 `json:"openReports"`
	ResolvedReports int64 `json:"resolvedReports"`
	ResolutionRate  int   `json:"resolutionRate"`
}

// TranscriptionResult is what the transcription collaborator yields for
// an audio submission.
type TranscriptionResult struct {
	OriginalLanguage string  `json:"originalLanguage"`
	TranscribedText  string  `json:"transcribedText"`
	TranslatedText   string  `json:"translatedText"`
	Confidence       float64 `json:"confidence"`
}

package presenter

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/opencivic/civicpulse"
	"github.com/opencivic/civicpulse/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

func BadRequest(c echo.Context, err error) error {
	fmt.Println("Bad request:", err)
	return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func BadRequestMessage(c echo.Context, msg string) error {
	fmt.Println("Bad request:", msg)
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

func NotFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, errorResponse{Error: msg})
}

func Unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{Error: "authentication required"})
}

func Forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, errorResponse{Error: "admin access required"})
}

func InternalError(c echo.Context, err error) error {
	fmt.Println("Internal error:", err)
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

// PublicReport is the citizen-facing report view. Language metadata,
// transcripts and the override audit trail are admin-only and never
// appear here.
type PublicReport struct {
	ID           string                  `json:"id"`
	Title        string                  `json:"title"`
	Description  string                  `json:"description"`
	Category     civicpulse.Category     `json:"category"`
	Status       civicpulse.Status       `json:"status"`
	LocationName string                  `json:"locationName"`
	Latitude     *float64                `json:"latitude,omitempty"`
	Longitude    *float64                `json:"longitude,omitempty"`
	PhotoURLs    []string                `json:"photoUrls,omitempty"`
	VoteCount    int                     `json:"voteCount"`
	Severity     civicpulse.SeverityInfo `json:"severity"`
	CreatedAt    time.Time               `json:"createdAt"`
	ResolvedAt   *time.Time              `json:"resolvedAt,omitempty"`
}

func NewPublicReport(report domain.Report, severity civicpulse.SeverityInfo) PublicReport {
	return PublicReport{
		ID:           report.ID,
		Title:        report.Title,
		Description:  report.Description,
		Category:     report.Category,
		Status:       report.Status,
		LocationName: report.LocationName,
		Latitude:     report.Latitude,
		Longitude:    report.Longitude,
		PhotoURLs:    report.PhotoURLs,
		VoteCount:    report.VoteCount,
		Severity:     severity,
		CreatedAt:    report.CreatedAt,
		ResolvedAt:   report.ResolvedAt,
	}
}

// AdminReport includes everything: transcript, translation, integrity
// hash and the full override audit trail.
type AdminReport struct {
	PublicReport

	Language       string     `json:"language,omitempty"`
	Transcript     string     `json:"transcript,omitempty"`
	TranslatedText string     `json:"translatedText,omitempty"`
	AudioURLs      []string   `json:"audioUrls,omitempty"`
	IntegrityHash  string     `json:"integrityHash"`
	OverrideReason *string    `json:"overrideReason,omitempty"`
	OverrideBy     *string    `json:"overrideBy,omitempty"`
	OverrideAt     *time.Time `json:"overrideAt,omitempty"`
	ResolvedBy     *string    `json:"resolvedBy,omitempty"`
}

func NewAdminReport(report domain.Report, severity civicpulse.SeverityInfo) AdminReport {
	return AdminReport{
		PublicReport:   NewPublicReport(report, severity),
		Language:       report.Language,
		Transcript:     report.Transcript,
		TranslatedText: report.TranslatedText,
		AudioURLs:      report.AudioURLs,
		IntegrityHash:  report.IntegrityHash,
		OverrideReason: report.OverrideReason,
		OverrideBy:     report.OverrideBy,
		OverrideAt:     report.OverrideAt,
		ResolvedBy:     report.ResolvedBy,
	}
}

// VoteResult is the response to a cast attempt. A repeat vote is not an
// error: the client shows the existing voted state.
type VoteResult struct {
	Accepted      bool                     `json:"accepted"`
	AlreadyVoted  bool                     `json:"alreadyVoted,omitempty"`
	IntegrityHash string                   `json:"integrityHash,omitempty"`
	NewVoteCount  int                      `json:"newVoteCount,omitempty"`
	Severity      *civicpulse.SeverityInfo `json:"severity,omitempty"`
}

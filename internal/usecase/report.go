package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opencivic/civicpulse"
	"github.com/opencivic/civicpulse/internal/domain"
)

// CreateReportInput is the validated input for submitting a report.
type CreateReportInput struct {
	Title        string
	Description  string
	Category     civicpulse.Category
	LocationName string
	Latitude     *float64
	Longitude    *float64
	Language     string
	PhotoURLs    []string
	AudioRef     string
}

type ReportUsecase struct {
	reports     ReportRepository
	transcriber Transcriber
	cache       ViewCache
	guard       *AdminGuard
	thresholds  civicpulse.Thresholds
}

func NewReportUsecase(
	reports ReportRepository,
	transcriber Transcriber,
	cache ViewCache,
	guard *AdminGuard,
	thresholds civicpulse.Thresholds,
) *ReportUsecase {
	return &ReportUsecase{
		reports:     reports,
		transcriber: transcriber,
		cache:       cache,
		guard:       guard,
		thresholds:  thresholds,
	}
}

// Create submits a new report. Transcription failure never blocks
// submission: the report is persisted without a transcript.
func (uc *ReportUsecase) Create(ctx context.Context, input CreateReportInput) (domain.Report, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return domain.Report{}, domain.ValidationError{Field: "title", Detail: "must not be empty"}
	}

	category := input.Category
	if category == "" {
		category = civicpulse.CategoryOther
	}
	if !category.Valid() {
		return domain.Report{}, domain.ValidationError{Field: "category", Detail: "unknown category"}
	}

	now := time.Now().UTC()
	report := domain.Report{
		ID:            uuid.NewString(),
		Title:         title,
		Description:   input.Description,
		Category:      category,
		Status:        civicpulse.StatusReported,
		LocationName:  input.LocationName,
		Latitude:      input.Latitude,
		Longitude:     input.Longitude,
		Language:      input.Language,
		PhotoURLs:     input.PhotoURLs,
		IntegrityHash: civicpulse.ReportStamp(title, now),
		CreatedAt:     now,
	}

	if input.AudioRef != "" {
		report.AudioURLs = []string{input.AudioRef}

		result, err := uc.transcriber.Transcribe(ctx, input.AudioRef, input.Language)
		if err != nil {
			slog.WarnContext(
				ctx, "Transcription failed, submitting without transcript",
				slog.String("error", err.Error()),
				slog.String("module", "report"),
			)
		} else {
			report.Transcript = result.TranscribedText
			report.TranslatedText = result.TranslatedText
		}
	}

	if err := uc.reports.Create(ctx, report); err != nil {
		return domain.Report{}, err
	}

	return report, nil
}

func (uc *ReportUsecase) List(ctx context.Context, filter domain.ReportFilter) ([]domain.Report, error) {
	if filter.SortBy != "" && filter.SortBy != "recent" && filter.SortBy != "votes" {
		return nil, domain.ValidationError{Field: "sort", Detail: "must be recent or votes"}
	}
	return uc.reports.List(ctx, filter)
}

// Get returns one report plus its current classification. Severity is
// recomputed on every read; the snapshot cache only ever holds raw
// report state.
func (uc *ReportUsecase) Get(ctx context.Context, id string) (domain.Report, civicpulse.SeverityInfo, error) {
	if report, found := uc.cache.GetReport(ctx, id); found {
		return report, uc.Classify(report), nil
	}

	report, err := uc.reports.GetByID(ctx, id)
	if err != nil {
		return domain.Report{}, civicpulse.SeverityInfo{}, err
	}

	uc.cache.SetReport(ctx, report)
	return report, uc.Classify(report), nil
}

// Classify derives the display severity for a report.
func (uc *ReportUsecase) Classify(report domain.Report) civicpulse.SeverityInfo {
	return uc.thresholds.Classify(report.VoteCount, report.Override())
}

// UpdateStatus is admin-only; the guard re-checks the role at mutation
// time.
func (uc *ReportUsecase) UpdateStatus(ctx context.Context, id string, status civicpulse.Status, actorID string) (domain.Report, error) {
	admin, err := uc.guard.Require(ctx, actorID)
	if err != nil {
		return domain.Report{}, err
	}

	if !status.Valid() {
		return domain.Report{}, domain.ValidationError{Field: "status", Detail: "unknown status"}
	}

	report, err := uc.reports.UpdateStatus(ctx, id, status, admin.ID, time.Now().UTC())
	if err != nil {
		return domain.Report{}, err
	}

	uc.cache.InvalidateReport(ctx, id)
	return report, nil
}

func (uc *ReportUsecase) Stats(ctx context.Context) (domain.Stats, error) {
	return uc.reports.Stats(ctx)
}

func (uc *ReportUsecase) AdminStats(ctx context.Context, actorID string) (domain.AdminStats, error) {
	if _, err := uc.guard.Require(ctx, actorID); err != nil {
		return domain.AdminStats{}, err
	}
	return uc.reports.AdminStats(ctx)
}

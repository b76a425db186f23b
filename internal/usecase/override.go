package usecase

import (
	"context"
	"time"

	"github.com/opencivic/civicpulse"
	"github.com/opencivic/civicpulse/internal/domain"
)

type OverrideUsecase struct {
	reports    ReportRepository
	guard      *AdminGuard
	cache      ViewCache
	thresholds civicpulse.Thresholds
}

func NewOverrideUsecase(
	reports ReportRepository,
	guard *AdminGuard,
	cache ViewCache,
	thresholds civicpulse.Thresholds,
) *OverrideUsecase {
	return &OverrideUsecase{
		reports:    reports,
		guard:      guard,
		cache:      cache,
		thresholds: thresholds,
	}
}

// Set applies or clears a severity override. A nil level clears all
// four override fields in one atomic update. A reason is accepted but
// not required alongside a level — permitted, though discouraged for
// audit quality; the UI should insist on one.
func (uc *OverrideUsecase) Set(ctx context.Context, reportID, actorID string, level *civicpulse.SeverityLevel, reason *string) (domain.Report, civicpulse.SeverityInfo, error) {
	admin, err := uc.guard.Require(ctx, actorID)
	if err != nil {
		return domain.Report{}, civicpulse.SeverityInfo{}, err
	}

	if level != nil && !level.Valid() {
		return domain.Report{}, civicpulse.SeverityInfo{}, domain.ValidationError{Field: "level", Detail: "unknown severity level"}
	}

	var by *string
	var at *time.Time
	if level != nil {
		now := time.Now().UTC()
		by = &admin.ID
		at = &now
	} else {
		// Clearing drops the reason too; partial clears are forbidden.
		reason = nil
	}

	if err := uc.reports.SetOverride(ctx, reportID, level, reason, by, at); err != nil {
		return domain.Report{}, civicpulse.SeverityInfo{}, err
	}

	// Invalidate before returning so any read after this call observes
	// the new override state.
	uc.cache.InvalidateReport(ctx, reportID)

	report, err := uc.reports.GetByID(ctx, reportID)
	if err != nil {
		return domain.Report{}, civicpulse.SeverityInfo{}, err
	}

	return report, uc.thresholds.Classify(report.VoteCount, report.Override()), nil
}

// Inspect returns the unfiltered report for the admin detail view.
func (uc *OverrideUsecase) Inspect(ctx context.Context, reportID, actorID string) (domain.Report, civicpulse.SeverityInfo, error) {
	if _, err := uc.guard.Require(ctx, actorID); err != nil {
		return domain.Report{}, civicpulse.SeverityInfo{}, err
	}

	report, err := uc.reports.GetByID(ctx, reportID)
	if err != nil {
		return domain.Report{}, civicpulse.SeverityInfo{}, err
	}

	return report, uc.thresholds.Classify(report.VoteCount, report.Override()), nil
}

// Clear removes any active override.
func (uc *OverrideUsecase) Clear(ctx context.Context, reportID, actorID string) (domain.Report, civicpulse.SeverityInfo, error) {
	return uc.Set(ctx, reportID, actorID, nil, nil)
}

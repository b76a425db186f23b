package usecase

import (
	"context"
	"log/slog"

	"github.com/opencivic/civicpulse"
	"github.com/opencivic/civicpulse/internal/domain"
)

type VoteUsecase struct {
	votes      VoteRepository
	reports    ReportRepository
	signal     VotePublisher
	cache      ViewCache
	thresholds civicpulse.Thresholds
}

func NewVoteUsecase(
	votes VoteRepository,
	reports ReportRepository,
	signal VotePublisher,
	cache ViewCache,
	thresholds civicpulse.Thresholds,
) *VoteUsecase {
	return &VoteUsecase{
		votes:      votes,
		reports:    reports,
		signal:     signal,
		cache:      cache,
		thresholds: thresholds,
	}
}

// Cast records a vote for the caller identified by signals. The
// fingerprint is always derived here, server-side — a caller-supplied
// fingerprint is never trusted for uniqueness enforcement.
//
// ErrAlreadyVoted and ErrNotFound pass through to the caller; anything
// else is a store failure eligible for retry (the ledger guarantees the
// failed attempt left no partial write).
func (uc *VoteUsecase) Cast(ctx context.Context, reportID string, signals civicpulse.Signals) (domain.VoteReceipt, civicpulse.SeverityInfo, error) {
	fingerprint := civicpulse.GenerateFingerprint(signals)

	receipt, err := uc.votes.Cast(ctx, reportID, fingerprint)
	if err != nil {
		return domain.VoteReceipt{}, civicpulse.SeverityInfo{}, err
	}

	uc.cache.InvalidateReport(ctx, reportID)

	severity := civicpulse.SeverityInfo{}
	report, err := uc.reports.GetByID(ctx, reportID)
	if err == nil {
		severity = uc.thresholds.Classify(receipt.NewVoteCount, report.Override())
	} else {
		severity = uc.thresholds.Classify(receipt.NewVoteCount, nil)
	}

	if err := uc.signal.Publish(ctx, domain.VoteEvent{
		ReportID:  reportID,
		VoteCount: receipt.NewVoteCount,
		Severity:  severity,
	}); err != nil {
		// Realtime delivery is best effort; the vote is already durable.
		slog.WarnContext(
			ctx, "Vote event publish failed",
			slog.String("error", err.Error()),
			slog.String("module", "vote"),
		)
	}

	return receipt, severity, nil
}

// HasVoted lets a client that timed out on Cast confirm whether its
// vote landed before retrying.
func (uc *VoteUsecase) HasVoted(ctx context.Context, reportID string, signals civicpulse.Signals) (bool, error) {
	fingerprint := civicpulse.GenerateFingerprint(signals)
	return uc.votes.HasVoted(ctx, reportID, fingerprint)
}

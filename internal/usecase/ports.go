package usecase

import (
	"context"
	"time"

	"github.com/opencivic/civicpulse"
	"github.com/opencivic/civicpulse/internal/domain"
)

// ReportRepository defines storage operations for reports. It is the
// only path that mutates status and override columns; vote_count is
// reserved for the VoteRepository.
type ReportRepository interface {
	Create(ctx context.Context, report domain.Report) error
	GetByID(ctx context.Context, id string) (domain.Report, error)
	List(ctx context.Context, filter domain.ReportFilter) ([]domain.Report, error)
	UpdateStatus(ctx context.Context, id string, status civicpulse.Status, actorID string, at time.Time) (domain.Report, error)
	SetOverride(ctx context.Context, id string, level *civicpulse.SeverityLevel, reason *string, by *string, at *time.Time) error
	Stats(ctx context.Context) (domain.Stats, error)
	AdminStats(ctx context.Context) (domain.AdminStats, error)
}

// VoteRepository is the vote ledger: the sole writer of vote rows and
// of a report's vote_count.
type VoteRepository interface {
	Cast(ctx context.Context, reportID, fingerprint string) (domain.VoteReceipt, error)
	HasVoted(ctx context.Context, reportID, fingerprint string) (bool, error)
}

// AdministratorRepository defines lookup of administrator identities.
type AdministratorRepository interface {
	GetByID(ctx context.Context, id string) (domain.Administrator, error)
}

// Transcriber is the external speech-transcription collaborator.
type Transcriber interface {
	Transcribe(ctx context.Context, audioRef, language string) (domain.TranscriptionResult, error)
}

// VotePublisher fans accepted votes out to realtime listeners.
type VotePublisher interface {
	Publish(ctx context.Context, event domain.VoteEvent) error
}

// ViewCache is the best-effort report snapshot cache. Implementations
// never fail a request: a broken cache behaves like a missing one.
type ViewCache interface {
	GetReport(ctx context.Context, id string) (domain.Report, bool)
	SetReport(ctx context.Context, report domain.Report)
	InvalidateReport(ctx context.Context, id string)
}

package usecase

import (
	"context"
	"time"

	"github.com/opencivic/civicpulse"
	"github.com/opencivic/civicpulse/internal/domain"
)

type mockReportRepo struct {
	reports map[string]domain.Report

	setOverrideCalls int
	lastLevel        *civicpulse.SeverityLevel
	lastReason       *string
	lastBy           *string
	lastAt           *time.Time
}

func newMockReportRepo(reports ...domain.Report) *mockReportRepo {
	m := &mockReportRepo{reports: map[string]domain.Report{}}
	for _, r := range reports {
		m.reports[r.ID] = r
	}
	return m
}

func (m *mockReportRepo) Create(ctx context.Context, report domain.Report) error {
	m.reports[report.ID] = report
	return nil
}

func (m *mockReportRepo) GetByID(ctx context.Context, id string) (domain.Report, error) {
	report, ok := m.reports[id]
	if !ok {
		return domain.Report{}, domain.NotFoundError{Resource: "report"}
	}
	return report, nil
}

func (m *mockReportRepo) List(ctx context.Context, filter domain.ReportFilter) ([]domain.Report, error) {
	out := []domain.Report{}
	for _, r := range m.reports {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockReportRepo) UpdateStatus(ctx context.Context, id string, status civicpulse.Status, actorID string, at time.Time) (domain.Report, error) {
	report, ok := m.reports[id]
	if !ok {
		return domain.Report{}, domain.NotFoundError{Resource: "report"}
	}
	report.Status = status
	if status == civicpulse.StatusResolved && report.ResolvedAt == nil {
		report.ResolvedAt = &at
		report.ResolvedBy = &actorID
	}
	m.reports[id] = report
	return report, nil
}

func (m *mockReportRepo) SetOverride(ctx context.Context, id string, level *civicpulse.SeverityLevel, reason *string, by *string, at *time.Time) error {
	report, ok := m.reports[id]
	if !ok {
		return domain.NotFoundError{Resource: "report"}
	}
	m.setOverrideCalls++
	m.lastLevel = level
	m.lastReason = reason
	m.lastBy = by
	m.lastAt = at
	report.SeverityOverride = level
	report.OverrideReason = reason
	report.OverrideBy = by
	report.OverrideAt = at
	m.reports[id] = report
	return nil
}

func (m *mockReportRepo) Stats(ctx context.Context) (domain.Stats, error) {
	return domain.Stats{TotalReports: int64(len(m.reports))}, nil
}

func (m *mockReportRepo) AdminStats(ctx context.Context) (domain.AdminStats, error) {
	return domain.AdminStats{TotalReports: int64(len(m.reports))}, nil
}

type mockVoteRepo struct {
	castFn  func(reportID, fingerprint string) (domain.VoteReceipt, error)
	voted   map[string]bool
	lastFp  string
	castErr error
}

func (m *mockVoteRepo) Cast(ctx context.Context, reportID, fingerprint string) (domain.VoteReceipt, error) {
	m.lastFp = fingerprint
	if m.castFn != nil {
		return m.castFn(reportID, fingerprint)
	}
	if m.castErr != nil {
		return domain.VoteReceipt{}, m.castErr
	}
	return domain.VoteReceipt{ReportID: reportID, IntegrityHash: "hash", NewVoteCount: 1}, nil
}

func (m *mockVoteRepo) HasVoted(ctx context.Context, reportID, fingerprint string) (bool, error) {
	m.lastFp = fingerprint
	return m.voted[reportID+"|"+fingerprint], nil
}

type mockAdminRepo struct {
	admins map[string]domain.Administrator
}

func newMockAdminRepo(admins ...domain.Administrator) *mockAdminRepo {
	m := &mockAdminRepo{admins: map[string]domain.Administrator{}}
	for _, a := range admins {
		m.admins[a.ID] = a
	}
	return m
}

func (m *mockAdminRepo) GetByID(ctx context.Context, id string) (domain.Administrator, error) {
	admin, ok := m.admins[id]
	if !ok {
		return domain.Administrator{}, domain.NotFoundError{Resource: "administrator"}
	}
	return admin, nil
}

type mockTranscriber struct {
	result domain.TranscriptionResult
	err    error
	calls  int
}

func (m *mockTranscriber) Transcribe(ctx context.Context, audioRef, language string) (domain.TranscriptionResult, error) {
	m.calls++
	return m.result, m.err
}

type mockPublisher struct {
	events []domain.VoteEvent
	err    error
}

func (m *mockPublisher) Publish(ctx context.Context, event domain.VoteEvent) error {
	m.events = append(m.events, event)
	return m.err
}

type mockCache struct {
	snapshots   map[string]domain.Report
	invalidated []string
}

func newMockCache() *mockCache {
	return &mockCache{snapshots: map[string]domain.Report{}}
}

func (m *mockCache) GetReport(ctx context.Context, id string) (domain.Report, bool) {
	report, ok := m.snapshots[id]
	return report, ok
}

func (m *mockCache) SetReport(ctx context.Context, report domain.Report) {
	m.snapshots[report.ID] = report
}

func (m *mockCache) InvalidateReport(ctx context.Context, id string) {
	delete(m.snapshots, id)
	m.invalidated = append(m.invalidated, id)
}

package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/opencivic/civicpulse"
	"github.com/opencivic/civicpulse/internal/domain"
)

func reportFixture(transcriber *mockTranscriber) (*ReportUsecase, *mockReportRepo, *mockCache) {
	reports := newMockReportRepo()
	admins := newMockAdminRepo(
		domain.Administrator{ID: "admin-1", Role: domain.RoleAdmin},
	)
	cache := newMockCache()
	uc := NewReportUsecase(reports, transcriber, cache, NewAdminGuard(admins), civicpulse.DefaultThresholds)
	return uc, reports, cache
}

func TestReportCreate(t *testing.T) {
	uc, reports, _ := reportFixture(&mockTranscriber{})

	report, err := uc.Create(context.Background(), CreateReportInput{
		Title:        "  Broken streetlight on Kissy Road  ",
		Description:  "Dark corner, unsafe at night",
		Category:     civicpulse.CategoryInfrastructure,
		LocationName: "Kissy Road",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Title != "Broken streetlight on Kissy Road" {
		t.Errorf("expected trimmed title, got %q", report.Title)
	}
	if report.Status != civicpulse.StatusReported {
		t.Errorf("expected initial status reported, got %s", report.Status)
	}
	if report.ID == "" || report.IntegrityHash == "" {
		t.Errorf("expected id and integrity hash to be assigned")
	}
	if _, err := reports.GetByID(context.Background(), report.ID); err != nil {
		t.Errorf("expected report to be persisted: %v", err)
	}
}

func TestReportCreateValidation(t *testing.T) {
	uc, _, _ := reportFixture(&mockTranscriber{})

	_, err := uc.Create(context.Background(), CreateReportInput{Title: "   "})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for blank title, got %v", err)
	}

	_, err = uc.Create(context.Background(), CreateReportInput{
		Title:    "Something",
		Category: civicpulse.Category("potholes"),
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown category, got %v", err)
	}
}

func TestReportCreateDefaultsCategory(t *testing.T) {
	uc, _, _ := reportFixture(&mockTranscriber{})

	report, err := uc.Create(context.Background(), CreateReportInput{Title: "No category given"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Category != civicpulse.CategoryOther {
		t.Errorf("expected category other, got %s", report.Category)
	}
}

func TestReportCreateWithAudio(t *testing.T) {
	transcriber := &mockTranscriber{
		result: domain.TranscriptionResult{
			OriginalLanguage: "krio",
			TranscribedText:  "Di wata pipe don brok",
			TranslatedText:   "The water pipe is broken",
		},
	}
	uc, _, _ := reportFixture(transcriber)

	report, err := uc.Create(context.Background(), CreateReportInput{
		Title:    "Water pipe",
		Language: "krio",
		AudioRef: "audio/abc123.webm",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transcriber.calls != 1 {
		t.Errorf("expected one transcription call, got %d", transcriber.calls)
	}
	if report.Transcript != "Di wata pipe don brok" {
		t.Errorf("expected transcript to be stored, got %q", report.Transcript)
	}
	if report.TranslatedText != "The water pipe is broken" {
		t.Errorf("expected translation to be stored, got %q", report.TranslatedText)
	}
}

func TestReportCreateTranscriptionFailureIsNonFatal(t *testing.T) {
	transcriber := &mockTranscriber{err: errors.New("service unavailable")}
	uc, reports, _ := reportFixture(transcriber)

	report, err := uc.Create(context.Background(), CreateReportInput{
		Title:    "Voice note report",
		AudioRef: "audio/xyz.webm",
	})
	if err != nil {
		t.Fatalf("transcription failure must not block submission: %v", err)
	}
	if report.Transcript != "" {
		t.Errorf("expected empty transcript, got %q", report.Transcript)
	}
	if _, err := reports.GetByID(context.Background(), report.ID); err != nil {
		t.Errorf("expected report to be persisted anyway: %v", err)
	}
}

func TestReportListRejectsUnknownSort(t *testing.T) {
	uc, _, _ := reportFixture(&mockTranscriber{})

	_, err := uc.List(context.Background(), domain.ReportFilter{SortBy: "controversial"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestReportGetCachesSnapshot(t *testing.T) {
	uc, reports, cache := reportFixture(&mockTranscriber{})
	reports.Create(context.Background(), domain.Report{ID: "r1", Title: "Cached", VoteCount: 150})

	report, severity, err := uc.Get(context.Background(), "r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if severity.Level != civicpulse.SeverityCritical {
		t.Errorf("expected critical at 150 votes, got %s", severity.Level)
	}
	if _, found := cache.GetReport(context.Background(), "r1"); !found {
		t.Errorf("expected snapshot to be cached after read")
	}

	// Severity is recomputed per read even when the snapshot is served
	// from cache.
	delete(reports.reports, "r1")
	report, severity, err = uc.Get(context.Background(), "r1")
	if err != nil {
		t.Fatalf("expected cache hit, got %v", err)
	}
	if report.Title != "Cached" || severity.Level != civicpulse.SeverityCritical {
		t.Errorf("unexpected cached read: %+v %+v", report, severity)
	}
}

func TestReportUpdateStatusRequiresAdmin(t *testing.T) {
	uc, reports, _ := reportFixture(&mockTranscriber{})
	reports.Create(context.Background(), domain.Report{ID: "r1", Status: civicpulse.StatusReported})

	_, err := uc.UpdateStatus(context.Background(), "r1", civicpulse.StatusResolved, "")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	_, err = uc.UpdateStatus(context.Background(), "r1", civicpulse.StatusResolved, "nobody")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestReportUpdateStatus(t *testing.T) {
	uc, reports, cache := reportFixture(&mockTranscriber{})
	reports.Create(context.Background(), domain.Report{ID: "r1", Status: civicpulse.StatusReported})
	cache.SetReport(context.Background(), domain.Report{ID: "r1"})

	report, err := uc.UpdateStatus(context.Background(), "r1", civicpulse.StatusResolved, "admin-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Status != civicpulse.StatusResolved {
		t.Errorf("expected resolved, got %s", report.Status)
	}
	if report.ResolvedAt == nil || report.ResolvedBy == nil || *report.ResolvedBy != "admin-1" {
		t.Errorf("expected resolution audit fields, got %+v", report)
	}
	if _, found := cache.GetReport(context.Background(), "r1"); found {
		t.Errorf("expected cached snapshot to be invalidated")
	}

	_, err = uc.UpdateStatus(context.Background(), "r1", civicpulse.Status("archived"), "admin-1")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown status, got %v", err)
	}
}

func TestAdminStatsRequiresAdmin(t *testing.T) {
	uc, _, _ := reportFixture(&mockTranscriber{})

	_, err := uc.AdminStats(context.Background(), "")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	if _, err := uc.AdminStats(context.Background(), "admin-1"); err != nil {
		t.Fatalf("unexpected error for admin: %v", err)
	}
}

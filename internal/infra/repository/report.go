package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/opencivic/civicpulse"
	"github.com/opencivic/civicpulse/internal/domain"
	"github.com/opencivic/civicpulse/internal/infra/database/models"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, report domain.Report) error {
	ctx, span := tracer.Start(ctx, "Report.Repository.Create")
	defer span.End()

	model := toModel(report)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		span.RecordError(err)
		return domain.StoreError{Op: "report insert", Err: err}
	}
	return nil
}

func (r *ReportRepository) GetByID(ctx context.Context, id string) (domain.Report, error) {
	ctx, span := tracer.Start(ctx, "Report.Repository.GetByID")
	defer span.End()

	var model models.Report
	err := r.db.WithContext(ctx).Take(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Report{}, domain.NotFoundError{Resource: "report"}
	}
	if err != nil {
		span.RecordError(err)
		return domain.Report{}, domain.StoreError{Op: "report lookup", Err: err}
	}

	return toDomain(model), nil
}

func (r *ReportRepository) List(ctx context.Context, filter domain.ReportFilter) ([]domain.Report, error) {
	ctx, span := tracer.Start(ctx, "Report.Repository.List")
	defer span.End()

	query := r.db.WithContext(ctx).Model(&models.Report{})

	if filter.Category != "" && filter.Category != "all" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Status != "" && filter.Status != "all" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		needle := "%" + filter.Search + "%"
		query = query.Where("LOWER(title) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", needle, needle)
	}

	if filter.SortBy == "votes" {
		query = query.Order("vote_count DESC").Order("created_at DESC")
	} else {
		query = query.Order("created_at DESC")
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []models.Report
	if err := query.Find(&rows).Error; err != nil {
		span.RecordError(err)
		return nil, domain.StoreError{Op: "report list", Err: err}
	}

	reports := make([]domain.Report, 0, len(rows))
	for _, row := range rows {
		reports = append(reports, toDomain(row))
	}
	return reports, nil
}

// UpdateStatus moves a report through triage. resolved_at is stamped
// exactly once: a report resolved, reopened and resolved again keeps
// its first resolution timestamp.
func (r *ReportRepository) UpdateStatus(ctx context.Context, id string, status civicpulse.Status, actorID string, at time.Time) (domain.Report, error) {
	ctx, span := tracer.Start(ctx, "Report.Repository.UpdateStatus")
	defer span.End()

	var updated models.Report
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Report
		err := tx.Take(&current, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFoundError{Resource: "report"}
		}
		if err != nil {
			return domain.StoreError{Op: "report lookup", Err: err}
		}

		updates := map[string]any{"status": string(status)}
		if status == civicpulse.StatusResolved && current.ResolvedAt == nil {
			updates["resolved_at"] = at
			updates["resolved_by"] = actorID
		}

		if err := tx.Model(&models.Report{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return domain.StoreError{Op: "status update", Err: err}
		}

		return tx.Take(&updated, "id = ?", id).Error
	})
	if err != nil {
		span.RecordError(err)
		return domain.Report{}, err
	}

	return toDomain(updated), nil
}

// SetOverride writes all four override columns in one UPDATE. A nil
// level clears them together; partial clears cannot happen.
func (r *ReportRepository) SetOverride(ctx context.Context, id string, level *civicpulse.SeverityLevel, reason *string, by *string, at *time.Time) error {
	ctx, span := tracer.Start(ctx, "Report.Repository.SetOverride")
	defer span.End()

	updates := map[string]any{
		"severity_override": nil,
		"override_reason":   nil,
		"override_by":       nil,
		"override_at":       nil,
	}
	if level != nil {
		updates["severity_override"] = string(*level)
		updates["override_reason"] = reason
		updates["override_by"] = by
		updates["override_at"] = at
	}

	res := r.db.WithContext(ctx).Model(&models.Report{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		span.RecordError(res.Error)
		return domain.StoreError{Op: "override update", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "report"}
	}

	return nil
}

func (r *ReportRepository) Stats(ctx context.Context) (domain.Stats, error) {
	ctx, span := tracer.Start(ctx, "Report.Repository.Stats")
	defer span.End()

	db := r.db.WithContext(ctx)
	var stats domain.Stats

	if err := db.Model(&models.Report{}).Count(&stats.TotalReports).Error; err != nil {
		return domain.Stats{}, domain.StoreError{Op: "stats", Err: err}
	}
	if err := db.Model(&models.Report{}).
		Where("status = ?", string(civicpulse.StatusResolved)).
		Count(&stats.ResolvedIssues).Error; err != nil {
		return domain.Stats{}, domain.StoreError{Op: "stats", Err: err}
	}
	if err := db.Model(&models.Vote{}).Count(&stats.TotalVotes).Error; err != nil {
		return domain.Stats{}, domain.StoreError{Op: "stats", Err: err}
	}
	if err := db.Model(&models.Report{}).
		Distinct("category").
		Count(&stats.ActiveCategories).Error; err != nil {
		return domain.Stats{}, domain.StoreError{Op: "stats", Err: err}
	}

	return stats, nil
}

func (r *ReportRepository) AdminStats(ctx context.Context) (domain.AdminStats, error) {
	ctx, span := tracer.Start(ctx, "Report.Repository.AdminStats")
	defer span.End()

	db := r.db.WithContext(ctx)
	var stats domain.AdminStats

	if err := db.Model(&models.Report{}).Count(&stats.TotalReports).Error; err != nil {
		return domain.AdminStats{}, domain.StoreError{Op: "admin stats", Err: err}
	}
	if err := db.Model(&models.Report{}).
		Where("status IN ?", []string{string(civicpulse.StatusReported), string(civicpulse.StatusInProgress)}).
		Count(&stats.OpenReports).Error; err != nil {
		return domain.AdminStats{}, domain.StoreError{Op: "admin stats", Err: err}
	}
	if err := db.Model(&models.Report{}).
		Where("status = ?", string(civicpulse.StatusResolved)).
		Count(&stats.ResolvedReports).Error; err != nil {
		return domain.AdminStats{}, domain.StoreError{Op: "admin stats", Err: err}
	}

	if stats.TotalReports > 0 {
		stats.ResolutionRate = int(float64(stats.ResolvedReports) / float64(stats.TotalReports) * 100)
	}

	return stats, nil
}

func toModel(report domain.Report) models.Report {
	model := models.Report{
		ID:             report.ID,
		Title:          report.Title,
		Description:    report.Description,
		Category:       string(report.Category),
		Status:         string(report.Status),
		LocationName:   report.LocationName,
		Latitude:       report.Latitude,
		Longitude:      report.Longitude,
		Language:       report.Language,
		Transcript:     report.Transcript,
		TranslatedText: report.TranslatedText,
		PhotoURLs:      report.PhotoURLs,
		AudioURLs:      report.AudioURLs,
		VoteCount:      report.VoteCount,
		IntegrityHash:  report.IntegrityHash,
		OverrideReason: report.OverrideReason,
		OverrideBy:     report.OverrideBy,
		OverrideAt:     report.OverrideAt,
		CreatedAt:      report.CreatedAt,
		ResolvedAt:     report.ResolvedAt,
		ResolvedBy:     report.ResolvedBy,
	}
	if report.SeverityOverride != nil {
		level := string(*report.SeverityOverride)
		model.SeverityOverride = &level
	}
	return model
}

func toDomain(model models.Report) domain.Report {
	report := domain.Report{
		ID:             model.ID,
		Title:          model.Title,
		Description:    model.Description,
		Category:       civicpulse.Category(model.Category),
		Status:         civicpulse.Status(model.Status),
		LocationName:   model.LocationName,
		Latitude:       model.Latitude,
		Longitude:      model.Longitude,
		Language:       model.Language,
		Transcript:     model.Transcript,
		TranslatedText: model.TranslatedText,
		PhotoURLs:      model.PhotoURLs,
		AudioURLs:      model.AudioURLs,
		VoteCount:      model.VoteCount,
		IntegrityHash:  model.IntegrityHash,
		OverrideReason: model.OverrideReason,
		OverrideBy:     model.OverrideBy,
		OverrideAt:     model.OverrideAt,
		CreatedAt:      model.CreatedAt,
		ResolvedAt:     model.ResolvedAt,
		ResolvedBy:     model.ResolvedBy,
	}
	if model.SeverityOverride != nil {
		level := civicpulse.SeverityLevel(*model.SeverityOverride)
		report.SeverityOverride = &level
	}
	return report
}

package repository

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/opencivic/civicpulse"
	"github.com/opencivic/civicpulse/internal/domain"
	"github.com/opencivic/civicpulse/internal/infra/database/models"
)

var tracer = otel.Tracer("repository")

type VoteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Cast records one vote and bumps the report counter as a single
// logical transaction. The composite primary key on votes is the
// authoritative uniqueness check: when two casts race with the same
// fingerprint, exactly one insert lands and the loser surfaces as
// ErrAlreadyVoted with its counter increment rolled back.
//
// The counter moves via an in-database increment — never read, add one,
// write back — so N concurrent accepted votes always leave the count at
// initial + N.
func (r *VoteRepository) Cast(ctx context.Context, reportID, fingerprint string) (domain.VoteReceipt, error) {
	ctx, span := tracer.Start(ctx, "Vote.Repository.Cast")
	defer span.End()

	now := time.Now().UTC()
	vote := models.Vote{
		ReportID:         reportID,
		VoterFingerprint: fingerprint,
		IntegrityHash:    civicpulse.VoteStamp(reportID, fingerprint, now),
		CreatedAt:        now,
	}

	var receipt domain.VoteReceipt
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var existing int64
		if err := tx.Model(&models.Vote{}).
			Where("report_id = ? AND voter_fingerprint = ?", reportID, fingerprint).
			Count(&existing).Error; err != nil {
			return domain.StoreError{Op: "vote lookup", Err: err}
		}
		if existing > 0 {
			return domain.AlreadyVotedError{ReportID: reportID}
		}

		// Locks the report row for the rest of the transaction, which
		// also serializes concurrent casts on the same report.
		res := tx.Model(&models.Report{}).
			Where("id = ?", reportID).
			UpdateColumn("vote_count", gorm.Expr("vote_count + ?", 1))
		if res.Error != nil {
			return domain.StoreError{Op: "vote count increment", Err: res.Error}
		}
		if res.RowsAffected == 0 {
			return domain.NotFoundError{Resource: "report"}
		}

		res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&vote)
		if res.Error != nil {
			return domain.StoreError{Op: "vote insert", Err: res.Error}
		}
		if res.RowsAffected == 0 {
			// A concurrent cast with the same fingerprint committed
			// between our lookup and the insert. Returning the error
			// rolls the increment back.
			return domain.AlreadyVotedError{ReportID: reportID}
		}

		var fresh models.Report
		if err := tx.Select("vote_count").Take(&fresh, "id = ?", reportID).Error; err != nil {
			return domain.StoreError{Op: "vote count read", Err: err}
		}

		receipt = domain.VoteReceipt{
			ReportID:      reportID,
			IntegrityHash: vote.IntegrityHash,
			NewVoteCount:  fresh.VoteCount,
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return domain.VoteReceipt{}, err
	}

	return receipt, nil
}

// HasVoted is the idempotent confirmation query: a caller that timed
// out waiting for Cast can check whether its vote landed before
// retrying.
func (r *VoteRepository) HasVoted(ctx context.Context, reportID, fingerprint string) (bool, error) {
	ctx, span := tracer.Start(ctx, "Vote.Repository.HasVoted")
	defer span.End()

	var count int64
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Where("report_id = ? AND voter_fingerprint = ?", reportID, fingerprint).
		Count(&count).Error
	if err != nil {
		span.RecordError(err)
		return false, domain.StoreError{Op: "vote lookup", Err: err}
	}

	return count > 0, nil
}

// CountForReport returns the number of persisted vote rows, independent
// of the report's counter column.
func (r *VoteRepository) CountForReport(ctx context.Context, reportID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Where("report_id = ?", reportID).
		Count(&count).Error
	if err != nil {
		return 0, domain.StoreError{Op: "vote count", Err: err}
	}
	return count, nil
}

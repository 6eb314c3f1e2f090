package repository

import (
	"context"
	"errors"
	"time"

	"livsoul/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Predictions is the store for scoring snapshots.
type Predictions struct {
	db *gorm.DB
}

func NewPredictions(db *gorm.DB) *Predictions {
	return &Predictions{db: db}
}

func (r *Predictions) Create(ctx context.Context, prediction *models.Prediction) error {
	err := r.db.WithContext(ctx).Create(prediction).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrSessionCollision
	}
	return err
}

// GetByID looks a prediction up regardless of the active flag. Soft
// deletion hides rows from listings and statistics, not from a direct
// fetch.
func (r *Predictions) GetByID(ctx context.Context, id uuid.UUID) (*models.Prediction, error) {
	var prediction models.Prediction
	err := r.db.WithContext(ctx).First(&prediction, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPredictionNotFound
	}
	return &prediction, err
}

// GetOwned fetches one active prediction scoped to its owner. Missing
// rows and rows owned by someone else are indistinguishable to the
// caller.
func (r *Predictions) GetOwned(ctx context.Context, id, ownerID uuid.UUID) (*models.Prediction, error) {
	var prediction models.Prediction
	err := r.db.WithContext(ctx).
		First(&prediction, "id = ? AND user_id = ? AND is_active = ?", id, ownerID, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPredictionNotFound
	}
	return &prediction, err
}

// HistoryQuery filters and paginates an owner's prediction history.
type HistoryQuery struct {
	RiskLevel models.RiskLevel // optional
	Page      int
	Limit     int
}

// ListByOwner returns the owner's active predictions newest-first plus
// the total count for the pagination envelope.
func (r *Predictions) ListByOwner(ctx context.Context, ownerID uuid.UUID, q HistoryQuery) ([]models.Prediction, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}

	tx := r.db.WithContext(ctx).Model(&models.Prediction{}).
		Where("user_id = ? AND is_active = ?", ownerID, true)
	if q.RiskLevel != "" {
		tx = tx.Where("result_risk_level = ?", q.RiskLevel)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var predictions []models.Prediction
	err := tx.Order("created_at DESC").
		Limit(q.Limit).
		Offset((q.Page - 1) * q.Limit).
		Find(&predictions).Error
	return predictions, total, err
}

// SoftDelete flips the active flag on an owned prediction. A row that
// does not exist or belongs to someone else reports not-found either way.
func (r *Predictions) SoftDelete(ctx context.Context, id, ownerID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.Prediction{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPredictionNotFound
	}
	return nil
}

// ListNeedingFollowUp returns active high-risk predictions that have
// waited for a doctor review longer than the given age. Only owned
// predictions qualify; anonymous ones were never stored.
func (r *Predictions) ListNeedingFollowUp(ctx context.Context, olderThan time.Time, limit int) ([]models.Prediction, error) {
	var predictions []models.Prediction
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND result_risk_level = ? AND status = ? AND user_id IS NOT NULL AND created_at < ?",
			true, models.RiskHigh, models.StatusCompleted, olderThan).
		Order("created_at ASC").
		Limit(limit).
		Find(&predictions).Error
	return predictions, err
}

// SaveReview attaches a doctor's review and marks the prediction reviewed.
// Review fields are the only part of a prediction that is ever updated
// in place.
func (r *Predictions) SaveReview(ctx context.Context, id uuid.UUID, review *models.DoctorReview) error {
	result := r.db.WithContext(ctx).Model(&models.Prediction{}).
		Where("id = ? AND is_active = ?", id, true).
		Select("DoctorReview", "Status").
		Updates(models.Prediction{DoctorReview: review, Status: models.StatusReviewed})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPredictionNotFound
	}
	return nil
}

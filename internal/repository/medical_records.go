package repository

import (
	"context"
	"errors"
	"strings"

	"livsoul/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MedicalRecords is the store for clinical documents.
type MedicalRecords struct {
	db *gorm.DB
}

func NewMedicalRecords(db *gorm.DB) *MedicalRecords {
	return &MedicalRecords{db: db}
}

// Create inserts one record. A prediction-typed record whose reference
// points at a nonexistent prediction fails the foreign key and is
// reported as a missing prediction.
func (r *MedicalRecords) Create(ctx context.Context, record *models.MedicalRecord) error {
	err := r.db.WithContext(ctx).Create(record).Error
	if err != nil && isForeignKeyViolation(err) {
		return ErrPredictionNotFound
	}
	return err
}

func (r *MedicalRecords) GetByID(ctx context.Context, id uuid.UUID) (*models.MedicalRecord, error) {
	var record models.MedicalRecord
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	return &record, err
}

// Timeline returns a patient's finalized and amended records
// newest-first.
func (r *MedicalRecords) Timeline(ctx context.Context, patientID uuid.UUID, limit int) ([]models.MedicalRecord, error) {
	if limit < 1 {
		limit = 20
	}
	var records []models.MedicalRecord
	err := r.db.WithContext(ctx).
		Where("patient_id = ? AND status IN ?", patientID, []models.RecordStatus{models.RecordFinalized, models.RecordAmended}).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// isForeignKeyViolation matches the postgres error class for referential
// failures (SQLSTATE 23503).
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23503")
}

package models

import (
	"time"

	"github.com/google/uuid"
)

type RecordType string

const (
	RecordPrediction    RecordType = "prediction"
	RecordClinicalVisit RecordType = "clinical_visit"
	RecordLabResult     RecordType = "lab_result"
	RecordImaging       RecordType = "imaging"
	RecordConsultation  RecordType = "consultation"
)

func (t RecordType) IsValid() bool {
	switch t {
	case RecordPrediction, RecordClinicalVisit, RecordLabResult, RecordImaging, RecordConsultation:
		return true
	}
	return false
}

type RecordStatus string

const (
	RecordDraft     RecordStatus = "draft"
	RecordFinalized RecordStatus = "finalized"
	RecordAmended   RecordStatus = "amended"
	RecordDeleted   RecordStatus = "deleted"
)

// Diagnosis summarizes the clinical assessment attached to a record.
type Diagnosis struct {
	Primary   string   `json:"primary,omitempty"`
	Secondary []string `json:"secondary,omitempty"`
}

// MedicalRecord is the broader clinical document. For RecordPrediction it
// is a read-model denormalization of one Prediction: it references the
// prediction by id and carries no risk computation of its own.
type MedicalRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	PatientID uuid.UUID  `gorm:"type:uuid;not null;index:idx_records_timeline,priority:1" json:"patientId"`
	DoctorID  *uuid.UUID `gorm:"type:uuid;index" json:"doctorId,omitempty"`

	RecordType  RecordType `gorm:"type:varchar(30);not null;index" json:"recordType"`
	Title       string     `gorm:"type:varchar(200);not null" json:"title"`
	Description string     `gorm:"type:varchar(2000)" json:"description,omitempty"`

	// Set iff RecordType == RecordPrediction. The foreign key makes a
	// dangling reference a constraint violation rather than silent drift.
	PredictionID *uuid.UUID  `gorm:"type:uuid;index" json:"predictionId,omitempty"`
	Prediction   *Prediction `gorm:"foreignKey:PredictionID" json:"-"`

	Diagnosis *Diagnosis `gorm:"serializer:json" json:"diagnosis,omitempty"`

	Status RecordStatus `gorm:"type:varchar(20);default:'finalized';index" json:"status"`
}

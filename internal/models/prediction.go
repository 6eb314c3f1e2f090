package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

type PredictionStatus string

const (
	StatusPending   PredictionStatus = "pending"
	StatusCompleted PredictionStatus = "completed"
	StatusReviewed  PredictionStatus = "reviewed"
	StatusFlagged   PredictionStatus = "flagged"
)

// PatientInfo is the demographic snapshot taken at prediction time.
// Immutable once the prediction is created.
type PatientInfo struct {
	Age    int    `gorm:"column:patient_age;not null" json:"age"`
	Gender Gender `gorm:"column:patient_gender;type:varchar(10);not null" json:"gender"`
}

// ErgParameters are the eight electroretinography measurements. Flicker
// and oscillatory values of exactly 0 mean "not measured" and are
// excluded from deviation scoring.
type ErgParameters struct {
	AWaveAmplitude        float64 `gorm:"column:erg_a_wave_amplitude;not null" json:"aWaveAmplitude"`
	AWaveLatency          float64 `gorm:"column:erg_a_wave_latency;not null" json:"aWaveLatency"`
	BWaveAmplitude        float64 `gorm:"column:erg_b_wave_amplitude;not null" json:"bWaveAmplitude"`
	BWaveLatency          float64 `gorm:"column:erg_b_wave_latency;not null" json:"bWaveLatency"`
	FlickerAmplitude      float64 `gorm:"column:erg_flicker_amplitude;default:0" json:"flickerAmplitude"`
	FlickerLatency        float64 `gorm:"column:erg_flicker_latency;default:0" json:"flickerLatency"`
	OscillatoryPotentials float64 `gorm:"column:erg_oscillatory_potentials;default:0" json:"oscillatoryPotentials"`
}

// ClinicalData carries the reported symptom and risk-factor sets plus an
// optional free-text note. Both sets are order-insensitive and
// duplicate-free by the time they are stored.
type ClinicalData struct {
	Symptoms        pq.StringArray `gorm:"column:symptoms;type:text[]" json:"symptoms"`
	RiskFactors     pq.StringArray `gorm:"column:risk_factors;type:text[]" json:"riskFactors"`
	AdditionalNotes string         `gorm:"column:additional_notes;type:text" json:"additionalNotes,omitempty"`
}

// PredictionResult is the scorer's output as persisted.
type PredictionResult struct {
	Probability     float64        `gorm:"column:result_probability;not null" json:"probability"`
	RiskLevel       RiskLevel      `gorm:"column:result_risk_level;type:varchar(10);not null;index" json:"riskLevel"`
	Interpretation  string         `gorm:"column:result_interpretation;type:varchar(500);not null" json:"interpretation"`
	Recommendations pq.StringArray `gorm:"column:result_recommendations;type:text[]" json:"recommendations"`
	ModelType       string         `gorm:"column:result_model_type;type:varchar(50)" json:"modelType"`
	ConfidenceScore float64        `gorm:"column:result_confidence_score" json:"confidenceScore"`
}

// DoctorReview is an optional sub-object a doctor attaches after the fact.
type DoctorReview struct {
	ReviewedBy uuid.UUID `json:"reviewedBy"`
	ReviewDate time.Time `json:"reviewDate"`
	Comments   string    `json:"comments,omitempty"`
	Approved   bool      `json:"approved"`
}

// Prediction is the persisted snapshot of one scoring invocation:
// inputs, outputs, ownership and review state. Apart from the review
// fields and the active flag it is never updated in place.
type Prediction struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	// Nullable: the column exists for ownership, but anonymous
	// predictions are never persisted at all.
	UserID *uuid.UUID `gorm:"type:uuid;index:idx_predictions_history,priority:1" json:"userId,omitempty"`

	SessionID string `gorm:"type:varchar(64);uniqueIndex;not null" json:"sessionId"`

	PatientInfo      PatientInfo      `gorm:"embedded" json:"patientInfo"`
	ErgParameters    ErgParameters    `gorm:"embedded" json:"ergParameters"`
	ClinicalData     ClinicalData     `gorm:"embedded" json:"clinicalData"`
	PredictionResult PredictionResult `gorm:"embedded" json:"predictionResult"`

	DoctorReview *DoctorReview `gorm:"serializer:json" json:"doctorReview,omitempty"`

	Status   PredictionStatus `gorm:"type:varchar(20);default:'completed'" json:"status"`
	IsActive bool             `gorm:"default:true" json:"isActive"`
}

// NewSessionID builds the unique per-prediction identifier. The random
// suffix makes collisions astronomically unlikely; the unique index
// catches the rest.
func NewSessionID() string {
	return fmt.Sprintf("pred_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

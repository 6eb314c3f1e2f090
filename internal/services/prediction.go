package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"livsoul/internal/models"
	"livsoul/internal/repository"
	"livsoul/internal/scoring"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// PredictionStore is the persistence surface for scoring snapshots.
type PredictionStore interface {
	Create(ctx context.Context, prediction *models.Prediction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Prediction, error)
	GetOwned(ctx context.Context, id, ownerID uuid.UUID) (*models.Prediction, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, q repository.HistoryQuery) ([]models.Prediction, int64, error)
	SoftDelete(ctx context.Context, id, ownerID uuid.UUID) error
	SaveReview(ctx context.Context, id uuid.UUID, review *models.DoctorReview) error
	Statistics(ctx context.Context) (*repository.Statistics, error)
}

// RecordStore is the persistence surface for medical records.
type RecordStore interface {
	Create(ctx context.Context, record *models.MedicalRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.MedicalRecord, error)
	Timeline(ctx context.Context, patientID uuid.UUID, limit int) ([]models.MedicalRecord, error)
}

// EvaluateInput is a validated, fully-numeric scoring request. The
// handler layer is responsible for field presence and coercion.
type EvaluateInput struct {
	Patient       models.PatientInfo
	ErgParameters models.ErgParameters
	Symptoms      []string
	RiskFactors   []string
	Notes         string
}

// Evaluation is what a submission returns: the scorer output plus the
// persistence outcome. Record is nil for anonymous callers and when
// either write failed.
type Evaluation struct {
	Prediction *models.Prediction
	Record     *models.MedicalRecord
	Result     scoring.Result
	Saved      bool
}

// Recorder is the subset of the metrics collector the service reports to.
type Recorder interface {
	PredictionScored(level models.RiskLevel)
	PredictionSaved()
}

type PredictionService struct {
	predictions PredictionStore
	records     RecordStore
	vocabulary  *models.Vocabulary
	metrics     Recorder
	log         *zap.Logger
}

func NewPredictionService(
	predictions PredictionStore,
	records RecordStore,
	vocabulary *models.Vocabulary,
	metrics Recorder,
	log *zap.Logger,
) *PredictionService {
	return &PredictionService{
		predictions: predictions,
		records:     records,
		vocabulary:  vocabulary,
		metrics:     metrics,
		log:         log,
	}
}

// Evaluate scores the submission and, when the caller is authenticated,
// persists a prediction row and its medical-record entry. Scoring never
// fails; persistence failures degrade to an unsaved result.
func (s *PredictionService) Evaluate(ctx context.Context, userID *uuid.UUID, in EvaluateInput) (*Evaluation, error) {
	if verr := s.validateClinical(in); verr != nil {
		return nil, verr
	}

	symptoms := models.NormalizeSet(in.Symptoms)
	riskFactors := models.NormalizeSet(in.RiskFactors)

	result := scoring.Calculate(scoring.Input{
		Age:                   in.Patient.Age,
		Gender:                string(in.Patient.Gender),
		AWaveAmplitude:        in.ErgParameters.AWaveAmplitude,
		AWaveLatency:          in.ErgParameters.AWaveLatency,
		BWaveAmplitude:        in.ErgParameters.BWaveAmplitude,
		BWaveLatency:          in.ErgParameters.BWaveLatency,
		FlickerAmplitude:      in.ErgParameters.FlickerAmplitude,
		FlickerLatency:        in.ErgParameters.FlickerLatency,
		OscillatoryPotentials: in.ErgParameters.OscillatoryPotentials,
		Symptoms:              symptoms,
		RiskFactors:           riskFactors,
	})
	if s.metrics != nil {
		s.metrics.PredictionScored(result.RiskLevel)
	}

	prediction := &models.Prediction{
		UserID:        userID,
		SessionID:     models.NewSessionID(),
		PatientInfo:   in.Patient,
		ErgParameters: in.ErgParameters,
		ClinicalData: models.ClinicalData{
			Symptoms:        pq.StringArray(symptoms),
			RiskFactors:     pq.StringArray(riskFactors),
			AdditionalNotes: in.Notes,
		},
		PredictionResult: models.PredictionResult{
			Probability:     result.Probability,
			RiskLevel:       result.RiskLevel,
			Interpretation:  result.Interpretation,
			Recommendations: pq.StringArray(result.Recommendations),
			ModelType:       result.ModelType,
			ConfidenceScore: result.ConfidenceScore,
		},
		Status:   models.StatusCompleted,
		IsActive: true,
	}

	eval := &Evaluation{Prediction: prediction, Result: result}

	// Anonymous submissions get a result but leave no trace.
	if userID == nil {
		return eval, nil
	}

	if err := s.predictions.Create(ctx, prediction); err != nil {
		s.log.Error("failed to persist prediction",
			zap.String("user_id", userID.String()),
			zap.String("session_id", prediction.SessionID),
			zap.Error(err))
		return eval, nil
	}
	eval.Saved = true
	if s.metrics != nil {
		s.metrics.PredictionSaved()
	}

	// The medical record is a second, independent write. If it fails the
	// prediction stays; the timeline can be backfilled later.
	diagnosis := &models.Diagnosis{
		Primary: fmt.Sprintf("Cirrhosis risk: %s (%d%%)",
			result.RiskLevel, int(math.Round(result.Probability*100))),
	}
	if len(symptoms) > 0 {
		diagnosis.Secondary = symptoms
	}
	record := &models.MedicalRecord{
		PatientID:    *userID,
		RecordType:   models.RecordPrediction,
		Title:        "ERG-Based Cirrhosis Risk Assessment",
		Description:  fmt.Sprintf("Automated prediction analysis with %s risk level", result.RiskLevel),
		PredictionID: &prediction.ID,
		Diagnosis:    diagnosis,
		Status:       models.RecordFinalized,
	}
	if err := s.records.Create(ctx, record); err != nil {
		s.log.Error("failed to persist medical record for prediction",
			zap.String("prediction_id", prediction.ID.String()),
			zap.Error(err))
		return eval, nil
	}
	eval.Record = record

	return eval, nil
}

// History pages through the caller's active predictions, newest first.
func (s *PredictionService) History(ctx context.Context, userID uuid.UUID, q repository.HistoryQuery) ([]models.Prediction, int64, error) {
	if q.RiskLevel != "" && !q.RiskLevel.IsValid() {
		return nil, 0, NewValidationError("riskLevel", "must be one of Low, Medium, High")
	}
	return s.predictions.ListByOwner(ctx, userID, q)
}

// Get returns one prediction. Patients only see their own active
// predictions; doctors fetch any prediction directly, deactivated ones
// included, so a review trail stays readable after the patient hides
// the row. Foreign and missing ids are indistinguishable to patients.
func (s *PredictionService) Get(ctx context.Context, id uuid.UUID, caller *models.User) (*models.Prediction, error) {
	var (
		prediction *models.Prediction
		err        error
	)
	if caller.IsDoctor() {
		prediction, err = s.predictions.GetByID(ctx, id)
	} else {
		prediction, err = s.predictions.GetOwned(ctx, id, caller.ID)
	}
	if err != nil {
		if errors.Is(err, repository.ErrPredictionNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return prediction, nil
}

// Record returns one medical record. Patients only see their own;
// doctors see all of them.
func (s *PredictionService) Record(ctx context.Context, id uuid.UUID, caller *models.User) (*models.MedicalRecord, error) {
	record, err := s.records.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !caller.IsDoctor() && record.PatientID != caller.ID {
		return nil, ErrNotFound
	}
	return record, nil
}

// Delete soft-deletes one of the caller's predictions.
func (s *PredictionService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.predictions.SoftDelete(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrPredictionNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.log.Info("prediction deactivated",
		zap.String("prediction_id", id.String()),
		zap.String("user_id", userID.String()))
	return nil
}

// Review attaches a doctor's assessment to a prediction. Only doctor
// accounts may review.
func (s *PredictionService) Review(ctx context.Context, predictionID uuid.UUID, reviewer *models.User, comments string, approved bool) error {
	if !reviewer.IsDoctor() {
		return ErrForbidden
	}
	review := &models.DoctorReview{
		ReviewedBy: reviewer.ID,
		ReviewDate: time.Now().UTC(),
		Comments:   comments,
		Approved:   approved,
	}
	if err := s.predictions.SaveReview(ctx, predictionID, review); err != nil {
		if errors.Is(err, repository.ErrPredictionNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Statistics aggregates active predictions across all users.
func (s *PredictionService) Statistics(ctx context.Context) (*repository.Statistics, error) {
	return s.predictions.Statistics(ctx)
}

// Timeline returns the caller's finalized medical records, newest first.
func (s *PredictionService) Timeline(ctx context.Context, patientID uuid.UUID, limit int) ([]models.MedicalRecord, error) {
	return s.records.Timeline(ctx, patientID, limit)
}

func (s *PredictionService) validateClinical(in EvaluateInput) *ValidationError {
	fields := map[string]string{}

	if in.Patient.Age < 0 || in.Patient.Age > 150 {
		fields["age"] = "must be between 0 and 150"
	}
	if !in.Patient.Gender.IsValid() {
		fields["gender"] = "must be one of male, female, other"
	}
	for field, value := range map[string]float64{
		"aWaveAmplitude":        in.ErgParameters.AWaveAmplitude,
		"aWaveLatency":          in.ErgParameters.AWaveLatency,
		"bWaveAmplitude":        in.ErgParameters.BWaveAmplitude,
		"bWaveLatency":          in.ErgParameters.BWaveLatency,
		"flickerAmplitude":      in.ErgParameters.FlickerAmplitude,
		"flickerLatency":        in.ErgParameters.FlickerLatency,
		"oscillatoryPotentials": in.ErgParameters.OscillatoryPotentials,
	} {
		if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
			fields[field] = "must be a non-negative number"
		}
	}
	if unknown := s.vocabulary.InvalidSymptoms(in.Symptoms); len(unknown) > 0 {
		fields["symptoms"] = "unknown symptoms: " + strings.Join(unknown, ", ")
	}
	if unknown := s.vocabulary.InvalidRiskFactors(in.RiskFactors); len(unknown) > 0 {
		fields["riskFactors"] = "unknown risk factors: " + strings.Join(unknown, ", ")
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

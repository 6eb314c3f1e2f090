package services

import (
	"context"
	"testing"
	"time"

	"livsoul/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type followUpStoreStub struct {
	pending []models.Prediction
	calls   int
}

func (s *followUpStoreStub) ListNeedingFollowUp(_ context.Context, _ time.Time, _ int) ([]models.Prediction, error) {
	s.calls++
	return s.pending, nil
}

func TestFollowUpCheckNotifiesOncePerPrediction(t *testing.T) {
	users := newFakeUserStore()
	owner := &models.User{Email: "patient@example.com", Name: "Test Patient"}
	require.NoError(t, users.Create(context.Background(), owner))

	prediction := models.Prediction{
		ID:        uuid.New(),
		UserID:    &owner.ID,
		CreatedAt: time.Now().Add(-48 * time.Hour),
		PredictionResult: models.PredictionResult{
			RiskLevel: models.RiskHigh,
		},
		Status:   models.StatusCompleted,
		IsActive: true,
	}
	store := &followUpStoreStub{pending: []models.Prediction{prediction}}

	scheduler := NewScheduler(zap.NewNop(), NewEmailService(zap.NewNop()), store, users)

	scheduler.runFollowUpCheck(context.Background())
	require.Len(t, scheduler.notified, 1)

	// A second sweep sees the same row but does not notify again.
	scheduler.runFollowUpCheck(context.Background())
	require.Len(t, scheduler.notified, 1)
	require.Equal(t, 2, store.calls)
}

func TestFollowUpCheckSkipsDeletedOwners(t *testing.T) {
	users := newFakeUserStore()
	ghost := uuid.New()

	prediction := models.Prediction{
		ID:     uuid.New(),
		UserID: &ghost,
		PredictionResult: models.PredictionResult{
			RiskLevel: models.RiskHigh,
		},
		Status:   models.StatusCompleted,
		IsActive: true,
	}
	store := &followUpStoreStub{pending: []models.Prediction{prediction}}

	scheduler := NewScheduler(zap.NewNop(), NewEmailService(zap.NewNop()), store, users)
	scheduler.runFollowUpCheck(context.Background())

	require.Empty(t, scheduler.notified)
}
